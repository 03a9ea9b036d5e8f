package account

import (
	"testing"

	"github.com/littleoaks/backend/core"
)

func validateRegistration(reg Registration) *core.ValidationError {
	err := core.Validate.Struct(reg)
	if err == nil {
		return nil
	}
	vErr, ok := core.TranslateValidationErrors(err).(*core.ValidationError)
	if !ok {
		return &core.ValidationError{Err: err}
	}
	return vErr
}

func fieldError(vErr *core.ValidationError, field string) string {
	if vErr == nil {
		return ""
	}
	for _, fe := range vErr.Fields {
		if fe.Field == field {
			return fe.Error
		}
	}
	return ""
}

func TestRegistrationValidation(t *testing.T) {
	tests := []struct {
		name    string
		reg     Registration
		wantFld string
		wantErr string
	}{
		{
			name: "valid",
			reg:  Registration{Email: "mom@test.cd", Password: "S3cret!pass", Role: RoleParent},
		},
		{
			name:    "missing email",
			reg:     Registration{Password: "S3cret!pass", Role: RoleParent},
			wantFld: "email",
		},
		{
			name:    "invalid email",
			reg:     Registration{Email: "nope", Password: "S3cret!pass", Role: RoleParent},
			wantFld: "email",
		},
		{
			name:    "unknown role",
			reg:     Registration{Email: "mom@test.cd", Password: "S3cret!pass", Role: Role("boss")},
			wantFld: "role",
			wantErr: regRoleText,
		},
		{
			name:    "too short",
			reg:     Registration{Email: "mom@test.cd", Password: "S3c!r", Role: RoleParent},
			wantFld: "password",
			wantErr: pwdMinLenText,
		},
		{
			name:    "contains whitespace",
			reg:     Registration{Email: "mom@test.cd", Password: "S3cret! pass", Role: RoleParent},
			wantFld: "password",
			wantErr: pwdNoSpaceText,
		},
		{
			name:    "all digits",
			reg:     Registration{Email: "mom@test.cd", Password: "92837465", Role: RoleParent},
			wantFld: "password",
			wantErr: pwdNotAllNumText,
		},
		{
			name:    "no complexity",
			reg:     Registration{Email: "mom@test.cd", Password: "secretpass", Role: RoleParent},
			wantFld: "password",
			wantErr: pwdComplexityText,
		},
		{
			name:    "similar to email",
			reg:     Registration{Email: "S3cret.pas@t.cd", Password: "S3cret.pas@T.cd", Role: RoleParent},
			wantFld: "password",
			wantErr: pwdAttrSimText,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vErr := validateRegistration(tt.reg)
			if tt.wantFld == "" {
				if vErr != nil {
					t.Fatalf("Validate() unexpected error: %v %v", vErr, vErr.Fields)
				}
				return
			}
			if vErr == nil {
				t.Fatal("Validate() expected an error")
			}
			got := fieldError(vErr, tt.wantFld)
			if got == "" {
				t.Fatalf("Validate() no error on field %q; got %v", tt.wantFld, vErr.Fields)
			}
			if tt.wantErr != "" && got != tt.wantErr {
				t.Errorf("Validate() field %q error = %q, want %q", tt.wantFld, got, tt.wantErr)
			}
		})
	}
}
