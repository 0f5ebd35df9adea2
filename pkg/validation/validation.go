package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	appErrors "github.com/noah-isme/sma-attendance-tracker/pkg/errors"
)

// custom validation tags
const (
	NotBlankTag         = "notblank"
	AttendanceStatusTag = "attendance_status"
)

// Validator couples the go-playground validator with an English translator
// so failures can be surfaced as human readable, field-specific messages.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New builds a validator. statusValid backs the attendance_status tag.
func New(statusValid func(string) bool) *Validator {
	validate := validator.New()

	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use the label tag in messages, falling back to the JSON name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return jsonName(fld)
	})

	_ = validate.RegisterValidation(NotBlankTag, notBlank)
	if statusValid != nil {
		_ = validate.RegisterValidation(AttendanceStatusTag, func(fl validator.FieldLevel) bool {
			return statusValid(fl.Field().String())
		})
	}

	v := &Validator{validate: validate, translator: translator}
	v.registerTranslation(NotBlankTag, "{0} cannot be empty", false)
	v.registerTranslation(AttendanceStatusTag, "{0} must be Present or Absent", false)
	v.registerTranslation("required", "{0} is required", true)
	v.registerTranslation("datetime", "{0} must be a date in YYYY-MM-DD format", true)
	return v
}

// Struct validates s and returns the first failure as a validation error, or nil.
func (v *Validator) Struct(s interface{}) *appErrors.Error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	fe := fieldErrs[0]
	return appErrors.Validation(fieldKey(s, fe), fe.Translate(v.translator))
}

func (v *Validator) registerTranslation(tag, text string, override bool) {
	_ = v.validate.RegisterTranslation(
		tag, v.translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// fieldKey resolves the JSON name of the failing top-level field.
func fieldKey(s interface{}, fe validator.FieldError) string {
	name := fe.StructField()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		if fld, ok := t.FieldByName(name); ok {
			if key := jsonName(fld); key != "" {
				return key
			}
		}
	}
	return strings.ToLower(name)
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func notBlank(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}
