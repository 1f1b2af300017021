package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Issue is a problem found by Lint. Issues are advisory: the resolver falls
// back silently for every one of them.
type Issue struct {
	Field   string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

var (
	validateOnce sync.Once
	validateInst *validator.Validate
)

// validatorInstance returns the shared validator, reporting fields by their JSON names
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		validateInst = v
	})
	return validateInst
}

// Lint checks t strictly without modifying it
func Lint(t ThemeConfig) []Issue {
	var issues []Issue

	if err := validatorInstance().Struct(t); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) {
			for _, fe := range ves {
				issues = append(issues, Issue{
					Field:   lintFieldName(fe),
					Message: lintMessage(fe),
				})
			}
		} else {
			issues = append(issues, Issue{Field: "theme", Message: err.Error()})
		}
	}

	for i, f := range t.Fields {
		if f.Type == FieldDropdown && len(f.Options) == 0 {
			issues = append(issues, Issue{
				Field:   fmt.Sprintf("fields[%d].options", i),
				Message: "dropdown field has no options",
			})
		}
	}

	return issues
}

// lintFieldName drops the root struct name from the namespace
func lintFieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}

func lintMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("%q is not one of [%s]", fmt.Sprint(fe.Value()), fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must not be empty"
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "unique":
		return fmt.Sprintf("%s values must be unique", strings.ToLower(fe.Param()))
	case "hexcolor|rgb|rgba":
		return fmt.Sprintf("%q is not a color", fmt.Sprint(fe.Value()))
	case "datauri":
		return "is not a data URL"
	default:
		return fmt.Sprintf("failed validation for tag '%s'", fe.Tag())
	}
}
