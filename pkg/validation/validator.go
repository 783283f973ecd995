package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Init configures the validator behind gin binding: JSON tag names in
// errors, plus the aliases used by request structs.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register applies the tag name function and aliases to v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterAlias("pwd", "min=6,max=72") // bcrypt reads at most 72 bytes
	v.RegisterAlias("displayname", "min=1,max=80")
	v.RegisterAlias("hhmm", "datetime=15:04")
}

// ToDetails converts binding errors into a field → message map for the
// error envelope.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fieldPath(fe)] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

// fieldPath drops the top-level struct name from the namespace so nested
// fields read as "notifications.reminder_time".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + param + " items"
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		if fe.Kind() == reflect.Slice {
			return "must contain at most " + param + " items"
		}
		return "must be at most " + param + " characters long"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "datetime":
		return "must match datetime format: " + param
	case "json":
		return "must be valid JSON"

	case "pwd":
		return "must be 6 to 72 characters long"
	case "displayname":
		return "must be 1 to 80 characters long"
	case "hhmm":
		return "must be a time like 06:30"

	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
