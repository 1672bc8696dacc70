package scope

// Handle defers the retrieval of one binding
type Handle interface {
	Get() (any, error)
}

// HandleFunc adapts a function to Handle
type HandleFunc func() (any, error)

// Get calls f
func (f HandleFunc) Get() (any, error) {
	return f()
}

// Lazy is a typed handle resolved once, on first use
type Lazy[T any] struct {
	handle Handle
}

// NewLazy wraps a handle obtained from Scope.GetLazy
func NewLazy[T any](h Handle) Lazy[T] {
	return Lazy[T]{handle: h}
}

// Get returns the bound value
func (l Lazy[T]) Get() (T, error) {
	return resolve[T](l.handle)
}

// Provider is a typed handle resolved again on every use
type Provider[T any] struct {
	handle Handle
}

// NewProvider wraps a handle obtained from Scope.GetProvider
func NewProvider[T any](h Handle) Provider[T] {
	return Provider[T]{handle: h}
}

// Get returns a value from the binding
func (p Provider[T]) Get() (T, error) {
	return resolve[T](p.handle)
}

func resolve[T any](h Handle) (T, error) {
	if h == nil {
		var zero T
		return zero, &BindingError{Type: TypeOf[T](), Reason: "handle is not bound to a scope"}
	}
	value, err := h.Get()
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](value, "")
}
