package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Custom rules on top of the stock validator:
// - ngphone: Nigerian mobile number in local (080...), 234... or +234... form
// - nameok: letters, numbers, space, hyphen, apostrophe, dot; 1-100 chars
// - pwdmin: admin password of at least 8 characters

var (
	reNGPhone = regexp.MustCompile(`^(\+?234|0)?[789][01][0-9]{8}$`)
	reNameOK  = regexp.MustCompile(`^[\p{L}0-9 \-'.]{1,100}$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("ngphone", func(fl validator.FieldLevel) bool {
			return reNGPhone.MatchString(NormalizePhoneInput(fl.Field().String()))
		})
		_ = v.RegisterValidation("nameok", func(fl validator.FieldLevel) bool {
			return reNameOK.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("pwdmin", func(fl validator.FieldLevel) bool {
			return len(fl.Field().String()) >= 8
		})
		validate = v
	})
	return validate
}

// NormalizePhoneInput strips spaces, dashes and parentheses from a phone number
func NormalizePhoneInput(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(s))
}

// CanonicalPhone normalizes a Nigerian number to its local 0XXXXXXXXXX form so the
// same subscriber always maps to one account, whichever prefix was typed.
func CanonicalPhone(s string) string {
	s = NormalizePhoneInput(s)
	switch {
	case strings.HasPrefix(s, "+234"):
		return "0" + s[4:]
	case strings.HasPrefix(s, "234") && len(s) == 13:
		return "0" + s[3:]
	case len(s) == 10 && !strings.HasPrefix(s, "0"):
		return "0" + s
	}
	return s
}

// ValidateStruct inspects struct tags `validate:"..."` and returns the first error encountered.
func ValidateStruct(s interface{}) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "ngphone":
		return fmt.Errorf("%s must be a valid Nigerian phone number", fe.Field())
	case "nameok":
		return fmt.Errorf("%s contains invalid characters", fe.Field())
	case "pwdmin":
		return fmt.Errorf("%s must be at least 8 characters", fe.Field())
	case "eqfield":
		return fmt.Errorf("%s does not match", fe.Field())
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", fe.Field(), fe.Param())
	case "min", "gte":
		return fmt.Errorf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Errorf("%s must be at most %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Errorf("%s must be greater than %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Errorf("%s must be a valid email address", fe.Field())
	case "uuid":
		return fmt.Errorf("%s must be a valid id", fe.Field())
	}
	return fmt.Errorf("%s is invalid", fe.Field())
}
