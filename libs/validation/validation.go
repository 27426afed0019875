// Package validation wraps go-playground/validator with French messages keyed by JSON field names
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"
	"github.com/madaure/backend/libs/apperrors"
)

// MessageInvalid is the general message of every validation error built here
const MessageInvalid = "Données invalides"

var (
	once       sync.Once
	validate   *validator.Validate
	translator ut.Translator
)

func instance() (*validator.Validate, ut.Translator) {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		_fr := fr.New()
		uni := ut.New(_fr, _fr)
		translator, _ = uni.GetTranslator("fr")
		_ = fr_translations.RegisterDefaultTranslations(validate, translator)

		// Use JSON tag names for errors instead of Go struct names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = validate.RegisterValidation("notblank", validators.NotBlank)
		registerTranslation("notblank", "{0} ne peut pas être vide", false)
		registerTranslation("required", "{0} est obligatoire", true)
	})
	return validate, translator
}

func registerTranslation(tag, text string, override bool) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct validates s against its `validate` tags
//
// Returns nil or an *apperrors.ValidationError whose fields are keyed by JSON path (e.g. "content[0].title").
func Struct(s any) error {
	fields, ok := Fields(s)
	if ok {
		return nil
	}
	return apperrors.Invalid(MessageInvalid, fields)
}

// Fields validates s and returns the translated messages keyed by JSON path
//
// The boolean is true when s is valid. Services that add their own checks merge into the returned map.
func Fields(s any) (map[string]string, bool) {
	v, trans := instance()

	err := v.Struct(s)
	if err == nil {
		return map[string]string{}, true
	}

	fields := map[string]string{}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fields, false
	}

	for _, fe := range fieldErrs {
		key := fieldKey(fe.Namespace())
		if _, exists := fields[key]; !exists {
			fields[key] = fe.Translate(trans)
		}
	}
	return fields, false
}

// Prefixed copies fields into dst with every key prefixed, e.g. "content[2]."
func Prefixed(dst map[string]string, prefix string, fields map[string]string) {
	for k, v := range fields {
		dst[prefix+k] = v
	}
}

// fieldKey drops the root struct name from a validator namespace
func fieldKey(namespace string) string {
	if _, rest, found := strings.Cut(namespace, "."); found {
		return rest
	}
	return namespace
}
