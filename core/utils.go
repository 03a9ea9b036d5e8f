package core

import "strings"

// CleanString trims surrounding whitespace from free-form input such as
// emails and device tokens, optionally lowering it. Emails are always stored
// and compared lowercase.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}
