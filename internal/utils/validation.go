package utils

import (
	"fmt"
	"go/token"
	"regexp"
	"strings"
)

// ValidationError names the option that failed and why
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "invalid value: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validator checks one value
type Validator[T any] func(T) error

// All combines validators; the first failure wins
func All[T any](validators ...Validator[T]) Validator[T] {
	return func(value T) error {
		for _, validate := range validators {
			if err := validate(value); err != nil {
				return err
			}
		}
		return nil
	}
}

// ValidateEach applies item to every element, naming the failing index
func ValidateEach[T any](field string, item Validator[T]) Validator[[]T] {
	return func(values []T) error {
		for i, value := range values {
			if err := item(value); err != nil {
				return ValidationError{Field: fmt.Sprintf("%s[%d]", field, i), Value: value, Message: err.Error()}
			}
		}
		return nil
	}
}

func NotEmpty(field string) Validator[string] {
	return func(value string) error {
		if strings.TrimSpace(value) != "" {
			return nil
		}
		return ValidationError{Field: field, Value: value, Message: "must not be empty"}
	}
}

// IsQualifiedName accepts `import/path.Name`
func IsQualifiedName(field string) Validator[string] {
	return func(value string) error {
		dot := strings.LastIndex(value, ".")
		if dot <= 0 || strings.Contains(value[dot:], "/") {
			return ValidationError{Field: field, Value: value, Message: "want a qualified name like example.com/pkg.Name"}
		}
		if name := value[dot+1:]; !token.IsIdentifier(name) {
			return ValidationError{Field: field, Value: value, Message: fmt.Sprintf("%q is not an identifier", name)}
		}
		return nil
	}
}

func IsRegex(field string) Validator[string] {
	return func(value string) error {
		_, err := regexp.Compile(value)
		if err == nil {
			return nil
		}
		return ValidationError{Field: field, Value: value, Message: err.Error()}
	}
}

func NotNegative(field string) Validator[int] {
	return func(value int) error {
		if value >= 0 {
			return nil
		}
		return ValidationError{Field: field, Value: value, Message: "must not be negative"}
	}
}
