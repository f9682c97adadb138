// Package validation contains custom validation functions for the application to use for input validation.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"TaskAPI/models"
	"TaskAPI/response"

	"github.com/go-playground/validator/v10"
)

// New returns a validator that reports fields by their JSON names,
// looks inside models.Optional fields and rejects explicit nulls where
// a TaskUpdate field cannot be null.
func New() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(JSONFieldName)
	validate.RegisterCustomTypeFunc(OptionalValuer, models.Optional[string]{}, models.Optional[bool]{})
	validate.RegisterStructValidation(TaskUpdateValidator, models.TaskUpdate{})
	return validate
}

// JSONFieldName names a struct field after its json tag.
func JSONFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// OptionalValuer hands the validator a pointer to the wrapped value, or nil
// when the field was omitted or null so that omitempty skips it.
// A pointer is returned rather than the value so that an explicit empty
// string still reaches the min rule.
func OptionalValuer(field reflect.Value) interface{} {
	switch o := field.Interface().(type) {
	case models.Optional[string]:
		if p := o.Ptr(); p != nil {
			return p
		}
	case models.Optional[bool]:
		if p := o.Ptr(); p != nil {
			return p
		}
	}
	return nil
}

// TaskUpdateValidator rejects explicit nulls for title and completed.
// A null description is allowed and clears the stored description.
func TaskUpdateValidator(sl validator.StructLevel) {
	u := sl.Current().Interface().(models.TaskUpdate)
	if u.Title.Null {
		sl.ReportError(u.Title, "title", "Title", "notnull", "")
	}
	if u.Completed.Null {
		sl.ReportError(u.Completed, "completed", "Completed", "notnull", "")
	}
}

// FieldErrors converts the error returned by Validate.Struct into the
// field-level detail sent back with a 422. Errors that are not validation
// errors are reported against the body as a whole.
func FieldErrors(err error) []response.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []response.FieldError{{
			Loc:  []string{"body"},
			Msg:  err.Error(),
			Type: "invalid",
		}}
	}
	out := make([]response.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, response.FieldError{
			Loc:  []string{"body", fe.Field()},
			Msg:  message(fe),
			Type: fe.Tag(),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "min":
		return fmt.Sprintf("ensure this value has at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("ensure this value has at most %s characters", fe.Param())
	case "notnull":
		return "none is not an allowed value"
	}
	return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
}
