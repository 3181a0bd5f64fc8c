package usersdk

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/nyaruka/phonenumbers"
)

// Validate checks the registration field rules.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(5, 50)),
		validation.Field(&r.Email, validation.Required, validation.Length(5, 100), is.EmailFormat),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 128)),
		validation.Field(&r.RecoveryEmail, is.EmailFormat),
		validation.Field(
			&r.PhoneNumber,
			validation.Length(5, 15),
			is.Digit,
			validation.By(possibleNumberIn(r.Country)),
		),
		validation.Field(&r.Country, validation.Length(2, 50)),
		validation.Field(&r.State, validation.Length(2, 50)),
		validation.Field(&r.ZipCode, validation.Length(5, 10), is.Digit),
		validation.Field(&r.RoleID, validation.Required, validation.Min(int64(1))),
	)
}

// Validate applies the registration rules to whichever fields are set.
func (r UpdateAccountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Min(int64(0))),
		validation.Field(&r.Username, validation.Length(5, 50)),
		validation.Field(&r.Email, validation.Length(5, 100), is.EmailFormat),
		validation.Field(&r.Password, validation.Length(6, 128)),
		validation.Field(&r.RecoveryEmail, is.EmailFormat),
		validation.Field(
			&r.PhoneNumber,
			validation.Length(5, 15),
			is.Digit,
			validation.By(possibleNumberIn(r.Country)),
		),
		validation.Field(&r.Country, validation.Length(2, 50)),
		validation.Field(&r.State, validation.Length(2, 50)),
		validation.Field(&r.ZipCode, validation.Length(5, 10), is.Digit),
	)
}

// Validate requires both an identifier and a password.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Code, validation.Required, validation.Length(6, 6), is.Digit),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(6, 128)),
	)
}

func (r VerifyEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Code, validation.Required, validation.Length(6, 6), is.Digit),
	)
}

func (r BootstrapRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AdminUsername, validation.Required, validation.Length(5, 50)),
		validation.Field(&r.AdminEmail, validation.Required, validation.Length(5, 100), is.EmailFormat),
		validation.Field(&r.AdminPassword, validation.Length(8, 128)),
	)
}

// Validate checks the role and each of its permissions.
func (r RoleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Description, validation.Length(0, 500)),
		validation.Field(&r.Permissions),
	)
}

func (r PermissionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PermissionID, validation.Min(int64(0))),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Description, validation.Length(0, 500)),
	)
}

func (r AccountStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Description, validation.Length(0, 500)),
	)
}

// possibleNumberIn checks a phone number against the numbering plan of
// country when country is a known ISO 3166 alpha-2 region. Anything else
// is left to the digit and length rules.
func possibleNumberIn(country string) validation.RuleFunc {
	region := strings.ToUpper(strings.TrimSpace(country))
	return func(value any) error {
		s, _ := value.(string)
		if s == "" || len(region) != 2 || phonenumbers.GetCountryCodeForRegion(region) == 0 {
			return nil
		}
		num, err := phonenumbers.Parse(s, region)
		if err != nil || !phonenumbers.IsPossibleNumber(num) {
			return errors.New("is not a possible phone number for " + region)
		}
		return nil
	}
}

// ValidateEmail checks a bare email address, e.g. one taken from a path.
func ValidateEmail(email string) error {
	return validation.Validate(email, validation.Required, validation.Length(5, 100), is.EmailFormat)
}
