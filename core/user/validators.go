package user

import (
	"fmt"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/collegia/collegia/core"
)

var (
	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to your name or email"
)

func registerPasswordValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(newUserStructValidation, NewUser{})
	validate.RegisterStructValidation(updateUserStructValidation, UpdateUser{})
	validate.RegisterStructValidation(resetPasswordStructValidation, ResetUserPassword{})

	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(validate, translator, pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}

func newUserStructValidation(sl validator.StructLevel) {
	nu := sl.Current().Interface().(NewUser)
	validatePassword(sl, nu.Password, "Password", nu.Name, nu.Email)
}

func updateUserStructValidation(sl validator.StructLevel) {
	uu := sl.Current().Interface().(UpdateUser)
	if uu.Password != "" {
		validatePassword(sl, uu.Password, "Password", uu.Name)
	}
}

func resetPasswordStructValidation(sl validator.StructLevel) {
	rp := sl.Current().Interface().(ResetUserPassword)
	validatePassword(sl, rp.Password, "Password")
}

func validatePassword(sl validator.StructLevel, pwd, fieldName string, userAttrs ...string) {
	if pwd == "" {
		return // `required` covers this
	}
	name := strings.ToLower(fieldName) // report the json name
	if len(pwd) < pwdMinLen {
		sl.ReportError(pwd, name, fieldName, pwdMinLenTag, "")
	}
	if strings.ContainsAny(pwd, " \t\n") {
		sl.ReportError(pwd, name, fieldName, pwdNoSpaceTag, "")
	}
	if isAllNumeric(pwd) {
		sl.ReportError(pwd, name, fieldName, pwdNotAllNumTag, "")
	}
	for _, attr := range userAttrs {
		if attr == "" {
			continue
		}
		if similarity(strings.ToLower(pwd), strings.ToLower(attr)) > pwdMaxSim {
			sl.ReportError(pwd, name, fieldName, pwdAttrSimTag, "")
			break
		}
	}
}

func isAllNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// similarity returns a [0,1] ratio of how close two strings are.
func similarity(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}
