// Package scope is the runtime contract generated factories and member
// injectors are written against. It declares what a container must provide
// and keeps a table of the generated artifacts; it does not implement a
// container.
package scope

import (
	"reflect"
)

// Scope is a node in a container's scope tree
type Scope interface {
	// GetInstance returns the binding for t, qualified when qualifier is not empty
	GetInstance(t reflect.Type, qualifier string) (any, error)

	// GetLazy returns a handle that resolves the binding on first use and memoizes it
	GetLazy(t reflect.Type, qualifier string) Handle

	// GetProvider returns a handle that resolves the binding on every use
	GetProvider(t reflect.Type, qualifier string) Handle

	// GetParentScope returns the nearest scope, starting at this one, bound to
	// the scope annotation identity
	GetParentScope(identity string) (Scope, error)

	// RootScope returns the root of the scope tree
	RootScope() Scope
}

// TypeOf returns the lookup key for T
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Instance resolves T from the scope
func Instance[T any](s Scope, qualifier string) (T, error) {
	var zero T
	value, err := s.GetInstance(TypeOf[T](), qualifier)
	if err != nil {
		return zero, err
	}
	return cast[T](value, qualifier)
}

// LazyOf returns a memoizing handle for T
func LazyOf[T any](s Scope, qualifier string) Lazy[T] {
	return NewLazy[T](s.GetLazy(TypeOf[T](), qualifier))
}

// ProviderOf returns a non-memoizing handle for T
func ProviderOf[T any](s Scope, qualifier string) Provider[T] {
	return NewProvider[T](s.GetProvider(TypeOf[T](), qualifier))
}

func cast[T any](value any, qualifier string) (T, error) {
	if value == nil {
		var zero T
		return zero, nil
	}
	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, &BindingError{
			Type:      TypeOf[T](),
			Qualifier: qualifier,
			Reason:    "scope returned " + reflect.TypeOf(value).String(),
		}
	}
	return typed, nil
}
