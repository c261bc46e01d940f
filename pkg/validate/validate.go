// Package validate wraps go-playground/validator and flattens its errors into
// a field -> message map keyed by the JSON field name.
//
// Example:
//
//	type Input struct {
//	    Name  string `json:"name"  validate:"required,min=2,max=100"`
//	    Email string `json:"email" validate:"required,email"`
//	    Role  string `json:"role"  validate:"omitempty,oneof=admin user"`
//	}
//
//	if errs := validate.Struct(in); validate.HasErrors(errs) {
//	    fault.Pass(w, r, fault.Validation(errs))
//	    return
//	}
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return val
}

// Struct validates s. The returned map is empty when s is valid.
func Struct(s interface{}) map[string]string {
	errs := make(map[string]string)

	err := v.Struct(s)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs["_"] = err.Error()
		return errs
	}
	for _, fe := range fieldErrs {
		if _, seen := errs[fe.Field()]; !seen {
			errs[fe.Field()] = message(fe)
		}
	}
	return errs
}

// HasErrors reports whether errs has at least one entry.
func HasErrors(errs map[string]string) bool {
	return len(errs) > 0
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s may not be greater than %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s may not be greater than %s.", field, fe.Param())
	case "gte":
		return fmt.Sprintf("The %s must be greater than or equal to %s.", field, fe.Param())
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	default:
		return fmt.Sprintf("The %s field failed the %s rule.", field, fe.Tag())
	}
}
