package httpx

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"bookstore/internal/apperror"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = validate.RegisterValidation("date", validateDate)
}

// DateLayouts are the accepted textual forms of a calendar date.
var DateLayouts = []string{time.RFC3339, "2006-01-02"}

// ParseDate parses s with the first matching layout of DateLayouts.
func ParseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range DateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}

// ValidateStruct validates s and returns one FieldError per invalid field.
// A field's `msg` tag, when present, replaces the generated message; a tag of
// the form `msg:"required=...;date=..."` selects the message per rule.
func ValidateStruct(s any) []apperror.FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []apperror.FieldError{{Field: "body", Message: "Invalid input"}}
	}

	t := reflect.TypeOf(s)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	var errors []apperror.FieldError
	for _, fe := range validationErrors {
		message := defaultMessage(fe)
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if custom := customMessage(sf.Tag.Get("msg"), fe.Tag()); custom != "" {
				message = custom
			}
		}
		errors = append(errors, apperror.FieldError{
			Field:   fe.Field(),
			Message: message,
		})
	}
	return errors
}

func customMessage(tag, rule string) string {
	if tag == "" {
		return ""
	}
	if !strings.Contains(tag, "=") {
		return tag
	}
	fallback := ""
	for _, part := range strings.Split(tag, ";") {
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		if key == rule {
			return value
		}
		if key == "*" {
			fallback = value
		}
	}
	return fallback
}

func defaultMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "date":
		return fmt.Sprintf("%s must be a valid date", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
