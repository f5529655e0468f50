package validator

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// ValidatorFunc builds a Rule for a tagged field.
type ValidatorFunc func(field string, value reflect.Value, params []string) Rule

var (
	registryMu sync.RWMutex
	registry   = map[string]ValidatorFunc{
		"required": requiredValidator,
		"min":      minValidator,
		"max":      maxValidator,
		"email":    emailValidator,
		"phone":    phoneValidator,
		"in":       inValidator,
	}
)

// RegisterValidator adds a custom validator function to the registry.
func RegisterValidator(name string, fn ValidatorFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = fn
}

// ValidateStruct validates a struct based on its validate tags.
// Rules are separated by ";" and parameters by ",": `validate:"required;max:255"`.
// Fields are reported by their json name when one is set.
func ValidateStruct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return fmt.Errorf("validator: must pass a pointer to struct")
	}

	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("validator: must pass a pointer to struct")
	}

	var errs ValidationErrors
	validateStructRecursive(rv, "", &errs)

	if errs.IsEmpty() {
		return nil
	}
	return errs
}

func validateStructRecursive(rv reflect.Value, prefix string, errs *ValidationErrors) {
	rt := rv.Type()

	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		structField := rt.Field(i)
		if !structField.IsExported() {
			continue
		}

		tag := structField.Tag.Get("validate")
		if tag == "-" {
			continue
		}

		fieldPath := fieldName(structField)
		if prefix != "" {
			fieldPath = prefix + "." + fieldPath
		}

		if field.Kind() == reflect.Struct && tag == "" {
			validateStructRecursive(field, fieldPath, errs)
			continue
		}

		if field.Kind() == reflect.Pointer {
			switch {
			case field.IsNil():
				// Optional fields: only "required" can fail on nil.
				if strings.Contains(tag, "required") {
					validateField(fieldPath, field, "required", errs)
				}
			case field.Elem().Kind() == reflect.Struct && tag == "":
				validateStructRecursive(field.Elem(), fieldPath, errs)
			case tag != "":
				validateField(fieldPath, field.Elem(), tag, errs)
			}
			continue
		}

		if tag == "" {
			continue
		}
		validateField(fieldPath, field, tag, errs)
	}
}

func fieldName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return sf.Name
	}
	return name
}

func validateField(fieldPath string, field reflect.Value, tag string, errs *ValidationErrors) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, ruleStr := range strings.Split(tag, ";") {
		ruleStr = strings.TrimSpace(ruleStr)
		if ruleStr == "" {
			continue
		}

		name, paramStr, _ := strings.Cut(ruleStr, ":")
		var params []string
		if paramStr = strings.TrimSpace(paramStr); paramStr != "" {
			params = strings.Split(paramStr, ",")
			for i := range params {
				params[i] = strings.TrimSpace(params[i])
			}
		}

		if fn, ok := registry[strings.TrimSpace(name)]; ok {
			rule := fn(fieldPath, field, params)
			if rule.Check != nil && !rule.Check() {
				errs.Add(rule.Error)
			}
		}
	}
}

func pass() Rule {
	return Rule{Check: func() bool { return true }}
}

// Built-in validators

func requiredValidator(field string, value reflect.Value, params []string) Rule {
	return Rule{
		Check: func() bool {
			switch value.Kind() {
			case reflect.String:
				return strings.TrimSpace(value.String()) != ""
			case reflect.Slice, reflect.Map, reflect.Array:
				return value.Len() > 0
			case reflect.Pointer, reflect.Interface:
				return !value.IsNil()
			default:
				return !value.IsZero()
			}
		},
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

func minValidator(field string, value reflect.Value, params []string) Rule {
	if len(params) < 1 {
		return pass()
	}

	switch value.Kind() {
	case reflect.String:
		min, _ := strconv.Atoi(params[0])
		return MinLenString(field, value.String(), min)
	case reflect.Slice, reflect.Array:
		min, _ := strconv.Atoi(params[0])
		return Rule{
			Check: func() bool { return value.Len() >= min },
			Error: ValidationError{Field: field, Message: fmt.Sprintf("must have at least %d items", min)},
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		min, _ := strconv.ParseInt(params[0], 10, 64)
		return Rule{
			Check: func() bool { return value.Int() >= min },
			Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at least %d", min)},
		}
	case reflect.Float32, reflect.Float64:
		min, _ := strconv.ParseFloat(params[0], 64)
		return Rule{
			Check: func() bool { return value.Float() >= min },
			Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at least %g", min)},
		}
	default:
		return pass()
	}
}

func maxValidator(field string, value reflect.Value, params []string) Rule {
	if len(params) < 1 {
		return pass()
	}

	switch value.Kind() {
	case reflect.String:
		max, _ := strconv.Atoi(params[0])
		return MaxLenString(field, value.String(), max)
	case reflect.Slice, reflect.Array:
		max, _ := strconv.Atoi(params[0])
		return Rule{
			Check: func() bool { return value.Len() <= max },
			Error: ValidationError{Field: field, Message: fmt.Sprintf("must have at most %d items", max)},
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		max, _ := strconv.ParseInt(params[0], 10, 64)
		return Rule{
			Check: func() bool { return value.Int() <= max },
			Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d", max)},
		}
	case reflect.Float32, reflect.Float64:
		max, _ := strconv.ParseFloat(params[0], 64)
		return Rule{
			Check: func() bool { return value.Float() <= max },
			Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at most %g", max)},
		}
	default:
		return pass()
	}
}

// String format validators skip empty values; combine with required when needed.

func emailValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() != reflect.String || value.String() == "" {
		return pass()
	}
	return ValidEmail(field, value.String())
}

func phoneValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() != reflect.String || value.String() == "" {
		return pass()
	}
	return ValidPhone(field, value.String())
}

func inValidator(field string, value reflect.Value, params []string) Rule {
	switch value.Kind() {
	case reflect.String:
		if value.String() == "" {
			return pass()
		}
		return InList(field, value.String(), params)
	case reflect.Slice:
		if value.Type().Elem().Kind() != reflect.String {
			return pass()
		}
		var rules []Rule
		for i := 0; i < value.Len(); i++ {
			rules = append(rules, InList(field, value.Index(i).String(), params))
		}
		return Rule{
			Check: func() bool { return Apply(rules...) == nil },
			Error: InList(field, "", params).Error,
		}
	default:
		return pass()
	}
}
