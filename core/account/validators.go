package account

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/littleoaks/backend/core"
)

var (
	regRoleTag  = "regrole"
	regRoleText = "role must be one of parent, staff or admin"

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdComplexityTag  = "pwdcplx"
	pwdComplexityText = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	specialRegex      = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to the email address"

	pwdNoCommonTag  = "pwdnocommon"
	pwdNoCommonText = "password is too common"
	commonPasswords = []string{
		"11111111", "12345678", "123456789", "1234567890", "aa123456",
		"asdfghjkl", "baseball1", "butterfly", "computer", "football1",
		"iloveyou", "letmein123", "liverpool", "password", "password1",
		"password123", "princess1", "qwerty123", "qwertyuiop", "sunshine1",
		"superman1", "trustno1", "welcome1", "whatever1",
	}
)

func init() {
	sort.Strings(commonPasswords)

	// register validators
	_ = core.Validate.RegisterValidation(regRoleTag, regRoleValidation)
	core.RegisterCustomTranslation(regRoleTag, regRoleText)

	core.Validate.RegisterStructValidation(registrationStructValidation, Registration{})
	core.RegisterCustomTranslation(pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(pwdComplexityTag, pwdComplexityText)
	core.RegisterCustomTranslation(pwdAttrSimTag, pwdAttrSimText)
	core.RegisterCustomTranslation(pwdNoCommonTag, pwdNoCommonText)
}

// regRoleValidation checks that the requested role is a registrable one.
func regRoleValidation(fl validator.FieldLevel) bool {
	switch Role(fl.Field().String()) {
	case RoleParent, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

func registrationStructValidation(sl validator.StructLevel) {
	if reg, ok := sl.Current().Interface().(Registration); ok && reg.Password != "" {
		validatePassword(reg.Password, reg.Email, sl)
	}
}

// validatePassword applies the password policy to the provided password:
// - minLen: 8
// - no whitespace
// - no all numeric
// - complexity: 1 upper, 1 lower, 1 digit, 1 special
// - no email similarity
// - no common password
func validatePassword(pwd, email string, sl validator.StructLevel) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	var (
		digitCount                             int
		hasUpper, hasLower, hasDig, hasSpecial bool
	)

	pwdLen := len(pwd)
	if pwdLen < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}
	for _, char := range []rune(pwd) {
		if unicode.IsSpace(char) {
			reportErr(pwdNoSpaceTag)
			return
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
		if !hasUpper && unicode.IsUpper(char) {
			hasUpper = true
		}
		if !hasLower && unicode.IsLower(char) {
			hasLower = true
		}
	}

	if digitCount == pwdLen {
		reportErr(pwdNotAllNumTag)
		return
	}

	hasDig = digitCount > 0
	hasSpecial = specialRegex.MatchString(pwd)
	if !(hasUpper && hasLower && hasDig && hasSpecial) {
		reportErr(pwdComplexityTag)
		return
	}

	if email != "" {
		sim := difflib.NewMatcher(strings.Split(pwd, ""), strings.Split(email, "")).QuickRatio()
		if sim >= pwdMaxSim {
			reportErr(pwdAttrSimTag)
			return
		}
	}

	lpwd := strings.ToLower(pwd)
	if idx := sort.SearchStrings(commonPasswords, lpwd); idx < len(commonPasswords) {
		if match := commonPasswords[idx]; lpwd == match {
			reportErr(pwdNoCommonTag)
			return
		}
	}
}
