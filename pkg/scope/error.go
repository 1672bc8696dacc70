package scope

import (
	"fmt"
	"reflect"
)

// BindingError reports a binding that could not be produced as requested
type BindingError struct {
	Type      reflect.Type
	Qualifier string
	Reason    string
}

// Error implements the error interface
func (e *BindingError) Error() string {
	if e.Qualifier != "" {
		return fmt.Sprintf("binding %v (%s): %s", e.Type, e.Qualifier, e.Reason)
	}
	return fmt.Sprintf("binding %v: %s", e.Type, e.Reason)
}

// DuplicateError reports a second registration for the same type
type DuplicateError struct {
	Kind string
	Type reflect.Type
}

// Error implements the error interface
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s for %v is already registered", e.Kind, e.Type)
}
