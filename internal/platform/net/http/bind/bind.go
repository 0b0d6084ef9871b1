// Package bind decodes and validates request input, mapping every failure to a project error
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "showroom/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// MaxBody caps a decoded request body
const MaxBody = 1 << 20

var (
	once  sync.Once
	valid *validator.Validate
	trans ut.Translator
)

// setup builds the shared validator: json tag names in messages, english
// translations and the slug tag listing routes use
func setup() (*validator.Validate, ut.Translator) {
	once.Do(func() {
		loc := en.New()
		trans, _ = ut.New(loc, loc).GetTranslator("en")

		valid = validator.New(validator.WithRequiredStructEnabled())
		valid.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = en_translations.RegisterDefaultTranslations(valid, trans)
		_ = valid.RegisterValidation("slug", isSlug)

		translate(valid, "min", "{0} must be at least {1}")
		translate(valid, "max", "{0} must be at most {1}")
		translate(valid, "slug", "{0} must contain only letters, digits, '-' or '_'")
	})
	return valid, trans
}

func translate(v *validator.Validate, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// isSlug accepts path identifiers like "watches" or "sub_42-b"
func isSlug(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// ParseJSON decodes one JSON object into T and validates it. Unknown fields,
// trailing data and bodies over MaxBody are rejected. An empty body is the
// zero T for GET and DELETE and an error otherwise
func ParseJSON[T any](r *http.Request) (T, error) {
	var zero, dst T
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dst); err != nil {
		if errors.Is(err, io.EOF) {
			if r.Method == http.MethodGet || r.Method == http.MethodDelete {
				return zero, nil
			}
			return zero, perr.JSONErrf("empty body")
		}
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}

	v, _ := setup()
	if err := v.Struct(dst); err != nil {
		return zero, validationError(err, "")
	}
	return dst, nil
}

// Var validates one value against tag, reporting failures on field
func Var(field string, value any, tag string) error {
	v, _ := setup()
	if err := v.Var(value, tag); err != nil {
		return validationError(err, field)
	}
	return nil
}

// validationError keeps the first failing field and its translated message.
// Var names the field itself because a bare value has no name of its own
func validationError(err error, field string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return perr.WithField(perr.Wrap(err, perr.ErrorCodeValidation, "invalid "+field), field)
	}
	_, t := setup()
	fe := verrs[0]
	msg := fe.Translate(t)
	if fe.Field() == "" {
		msg = strings.TrimSpace(field + msg)
	} else if field == "" {
		field = fe.Field()
	}
	return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", msg), field)
}
