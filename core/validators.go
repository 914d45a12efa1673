package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	alphaNumUnderTag   = "alphanum_"
	alphaNumUnderText  = "only alphanumeric characters and underscores are allowed"
	alphaNumUnderRegex = regexp.MustCompile(`^[\w\s]+$`)

	dateStringTag  = "datestr"
	dateStringText = "must be a valid date in YYYY-MM-DD format"
	dateRegex      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	timeStringTag  = "timestr"
	timeStringText = "must be a valid time in HH:MM:SS format"
	timeRegex      = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// NewValidator instantiates the application validator and its translator.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator("en")

	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(alphaNumUnderTag, alphaNumUnderValidation)
	RegisterCustomTranslation(validate, translator, alphaNumUnderTag, alphaNumUnderText)

	_ = validate.RegisterValidation(dateStringTag, dateStringValidation)
	RegisterCustomTranslation(validate, translator, dateStringTag, dateStringText)

	_ = validate.RegisterValidation(timeStringTag, timeStringValidation)
	RegisterCustomTranslation(validate, translator, timeStringTag, timeStringText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)

	return validate, translator
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// alphaNumUnderValidation only allows alphanumeric characters and underscores.
func alphaNumUnderValidation(fl validator.FieldLevel) bool {
	return alphaNumUnderRegex.MatchString(fl.Field().String())
}

// dateStringValidation checks the calendar-date string format slots and
// meetings are stored with.
func dateStringValidation(fl validator.FieldLevel) bool {
	return dateRegex.MatchString(fl.Field().String())
}

func timeStringValidation(fl validator.FieldLevel) bool {
	return timeRegex.MatchString(fl.Field().String())
}
