package utils

import (
	"fmt"
	"sort"
	"sync"
)

// RegistryValidator checks an entry against the current contents before it is stored
type RegistryValidator[K comparable, V any] func(key K, value V, existing map[K]V) error

// BaseRegistry is a keyed table guarded by a RWMutex. The directive schema
// table, the runtime factory table and the per-session dedup set use it.
type BaseRegistry[K comparable, V any] struct {
	mu       sync.RWMutex
	entries  map[K]V
	validate RegistryValidator[K, V]
	name     string // registry name, prefixes validation errors
	noun     string // what a key is, used in lookup errors
}

// NewBaseRegistry creates an empty registry
func NewBaseRegistry[K comparable, V any](name, noun string) *BaseRegistry[K, V] {
	return &BaseRegistry[K, V]{entries: map[K]V{}, name: name, noun: noun}
}

// SetValidator installs the check run by Register
func (b *BaseRegistry[K, V]) SetValidator(validate RegistryValidator[K, V]) {
	b.mu.Lock()
	b.validate = validate
	b.mu.Unlock()
}

// Register validates and stores value, replacing any previous entry
func (b *BaseRegistry[K, V]) Register(key K, value V) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.validate != nil {
		if err := b.validate(key, value, b.entries); err != nil {
			return fmt.Errorf("%s registry: %w", b.name, err)
		}
	}
	b.entries[key] = value
	return nil
}

// RegisterIfAbsent stores value unless key is taken and reports whether it
// did. Of several concurrent callers for one key exactly one wins.
func (b *BaseRegistry[K, V]) RegisterIfAbsent(key K, value V) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, taken := b.entries[key]; taken {
		return false
	}
	b.entries[key] = value
	return true
}

func (b *BaseRegistry[K, V]) Get(key K) (V, bool) {
	b.mu.RLock()
	value, ok := b.entries[key]
	b.mu.RUnlock()
	return value, ok
}

// GetOrError is Get with a descriptive error for missing keys
func (b *BaseRegistry[K, V]) GetOrError(key K) (V, error) {
	if value, ok := b.Get(key); ok {
		return value, nil
	}
	var zero V
	return zero, fmt.Errorf("%s '%v' is not registered", b.noun, key)
}

func (b *BaseRegistry[K, V]) Has(key K) bool {
	_, ok := b.Get(key)
	return ok
}

// List returns the keys in no particular order
func (b *BaseRegistry[K, V]) List() []K {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]K, 0, len(b.entries))
	for key := range b.entries {
		keys = append(keys, key)
	}
	return keys
}

func (b *BaseRegistry[K, V]) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// SortedKeys returns the keys of a string-keyed registry in ascending order
func SortedKeys[V any](b *BaseRegistry[string, V]) []string {
	keys := b.List()
	sort.Strings(keys)
	return keys
}

// NotEmptyKeyValidator rejects the empty key
func NotEmptyKeyValidator[V any](noun string) RegistryValidator[string, V] {
	return func(key string, _ V, _ map[string]V) error {
		if key == "" {
			return fmt.Errorf("%s cannot be empty", noun)
		}
		return nil
	}
}

// NoDuplicateValidator rejects keys that are already present
func NoDuplicateValidator[K comparable, V any](noun string) RegistryValidator[K, V] {
	return func(key K, _ V, existing map[K]V) error {
		if _, taken := existing[key]; taken {
			return fmt.Errorf("%s '%v' is already registered", noun, key)
		}
		return nil
	}
}

// ChainValidators runs validators in order and stops at the first error
func ChainValidators[K comparable, V any](validators ...RegistryValidator[K, V]) RegistryValidator[K, V] {
	return func(key K, value V, existing map[K]V) error {
		for _, validate := range validators {
			if validate == nil {
				continue
			}
			if err := validate(key, value, existing); err != nil {
				return err
			}
		}
		return nil
	}
}
