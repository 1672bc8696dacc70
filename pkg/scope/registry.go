package scope

import (
	"reflect"
	"sort"
	"sync"
)

// Factory creates instances of T. Generated factories are registered from
// the init function of the generated file.
type Factory[T any] interface {
	// CreateInstance builds T in the target scope of s and injects its members
	CreateInstance(s Scope) (T, error)
	// TargetScope selects the scope the instance belongs to
	TargetScope(s Scope) (Scope, error)
	HasScopeAnnotation() bool
	HasSingletonAnnotation() bool
	HasReleasableAnnotation() bool
	HasProvidesSingletonAnnotation() bool
	HasProvidesReleasableAnnotation() bool
}

// MemberInjector populates the injected fields and methods of an existing T
type MemberInjector[T any] interface {
	Inject(target T, s Scope) error
}

// Registry is the table of generated artifacts, keyed by the produced type
type Registry struct {
	factories typeTable
	injectors typeTable
}

// typeTable maps a produced type to its artifact; the first entry wins
type typeTable struct {
	mu      sync.RWMutex
	entries map[reflect.Type]any
}

func (t *typeTable) add(key reflect.Type, value any) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.entries[key]; exists {
		return false
	}
	if t.entries == nil {
		t.entries = make(map[reflect.Type]any)
	}
	t.entries[key] = value
	return true
}

func (t *typeTable) get(key reflect.Type) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	value, ok := t.entries[key]
	return value, ok
}

func (t *typeTable) keys() []reflect.Type {
	t.mu.RLock()
	defer t.mu.RUnlock()
	keys := make([]reflect.Type, 0, len(t.entries))
	for key := range t.entries {
		keys = append(keys, key)
	}
	return keys
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry is the registry generated code registers into
var DefaultRegistry = NewRegistry()

// Factories returns the types with a registered factory, sorted by name
func (r *Registry) Factories() []reflect.Type {
	return sortedTypes(r.factories.keys())
}

// MemberInjectors returns the types with a registered member injector, sorted by name
func (r *Registry) MemberInjectors() []reflect.Type {
	return sortedTypes(r.injectors.keys())
}

func sortedTypes(keys []reflect.Type) []reflect.Type {
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// AddFactory registers f in r
func AddFactory[T any](r *Registry, f Factory[T]) error {
	if !r.factories.add(TypeOf[T](), f) {
		return &DuplicateError{Kind: "factory", Type: TypeOf[T]()}
	}
	return nil
}

// AddMemberInjector registers m in r
func AddMemberInjector[T any](r *Registry, m MemberInjector[T]) error {
	if !r.injectors.add(TypeOf[T](), m) {
		return &DuplicateError{Kind: "member injector", Type: TypeOf[T]()}
	}
	return nil
}

// FindFactory returns the factory registered in r for T
func FindFactory[T any](r *Registry) (Factory[T], bool) {
	value, ok := r.factories.get(TypeOf[T]())
	if !ok {
		return nil, false
	}
	f, ok := value.(Factory[T])
	return f, ok
}

// FindMemberInjector returns the member injector registered in r for T
func FindMemberInjector[T any](r *Registry) (MemberInjector[T], bool) {
	value, ok := r.injectors.get(TypeOf[T]())
	if !ok {
		return nil, false
	}
	m, ok := value.(MemberInjector[T])
	return m, ok
}

// RegisterFactory registers f in the default registry. It panics when a
// factory for T is already registered.
func RegisterFactory[T any](f Factory[T]) {
	if err := AddFactory[T](DefaultRegistry, f); err != nil {
		panic(err)
	}
}

// RegisterMemberInjector registers m in the default registry. It panics when
// a member injector for T is already registered.
func RegisterMemberInjector[T any](m MemberInjector[T]) {
	if err := AddMemberInjector[T](DefaultRegistry, m); err != nil {
		panic(err)
	}
}

// LookupFactory returns the factory for T from the default registry
func LookupFactory[T any]() (Factory[T], bool) {
	return FindFactory[T](DefaultRegistry)
}

// LookupMemberInjector returns the member injector for T from the default registry
func LookupMemberInjector[T any]() (MemberInjector[T], bool) {
	return FindMemberInjector[T](DefaultRegistry)
}
