// Package transform converts between the JSON wire format and the model
// types.
//
// Inbound payloads are decoded into the *Payload structs and checked with
// go-playground/validator; every failure is reported as one
// apperror.Invalid keyed by JSON field name, so a client sees
// {"fields": {"text": ["this field is required"]}} rather than Go struct
// names. Outbound values are built with the New* constructors, which decide
// exactly which fields a client sees.
package transform

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/yatube/internal/apperror"
)

// Message texts shared by the hand-written checks and the validator tags.
const (
	MsgRequired = "this field is required"
	MsgBlank    = "this field may not be blank"
)

var (
	// usernamePattern allows letters, digits and @ . + - _ only.
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	patterns := map[string]*regexp.Regexp{
		"username": usernamePattern,
		"slug":     slugPattern,
	}
	for tag, re := range patterns {
		re := re // per-iteration copy; go 1.21 loop variables are shared
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("transform: registering %s validation: %v", tag, err))
		}
	}

	return v
}

// Validate checks v against its struct tags. It returns nil or an
// *apperror.AppError wrapping apperror.ErrValidation.
func Validate(v any) error {
	fields := fieldErrors(validate.Struct(v))
	if len(fields) == 0 {
		return nil
	}
	return apperror.Invalid(fields)
}

// fieldErrors flattens a validator error into field -> messages. A nil
// error yields an empty, non-nil map so callers can keep adding to it.
func fieldErrors(err error) map[string][]string {
	fields := map[string][]string{}
	if err == nil {
		return fields
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields[apperror.NonFieldErrors] = []string{err.Error()}
		return fields
	}

	for _, fe := range verrs {
		name := fe.Field()
		fields[name] = append(fields[name], message(fe))
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "min":
		if fe.Param() == "1" && fe.Kind() == reflect.String {
			return MsgBlank
		}
		return fmt.Sprintf("ensure this field has at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	case "email":
		return "enter a valid email address"
	case "username":
		return "enter a valid username: letters, digits and @/./+/-/_ only"
	case "slug":
		return "enter a valid slug: letters, numbers, underscores or hyphens"
	default:
		return fmt.Sprintf("failed on the %q rule", fe.Tag())
	}
}

// addField appends msg to the messages of name.
func addField(fields map[string][]string, name, msg string) {
	fields[name] = append(fields[name], msg)
}

func result(fields map[string][]string) error {
	if len(fields) == 0 {
		return nil
	}
	return apperror.Invalid(fields)
}
