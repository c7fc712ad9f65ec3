package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/arthur-debert/pkgmerge/pkg/errors"
)

// Registry is a generic, thread-safe registry for storing and retrieving items by name
type Registry[T any] interface {
	// Register adds an item to the registry
	Register(name string, item T) error

	// Replace adds or overwrites an item, returning whether one was replaced
	Replace(name string, item T) bool

	// Get retrieves an item from the registry
	Get(name string) (T, error)

	// Remove removes an item from the registry
	Remove(name string) error

	// List returns all registered names in sorted order
	List() []string

	// Has checks if an item is registered
	Has(name string) bool

	// Count returns the number of registered items
	Count() int
}

type registry[T any] struct {
	mu    sync.RWMutex
	kind  string
	items map[string]T
}

// New creates a new Registry. kind names what is stored ("checksum handler",
// "trigger factory") and only appears in error messages.
func New[T any](kind string) Registry[T] {
	if kind == "" {
		kind = "item"
	}
	return &registry[T]{
		kind:  kind,
		items: make(map[string]T),
	}
}

func (r *registry[T]) Register(name string, item T) error {
	if name == "" {
		return errors.Newf(errors.ErrInvalidInput, "%s name cannot be empty", r.kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[name]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "%s '%s' is already registered", r.kind, name).
			WithDetail("name", name)
	}

	r.items[name] = item
	return nil
}

func (r *registry[T]) Replace(name string, item T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, existed := r.items[name]
	r.items[name] = item
	return existed
}

func (r *registry[T]) Get(name string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[name]
	if !exists {
		var zero T
		return zero, errors.Newf(errors.ErrLookup, "%s '%s' not found", r.kind, name).
			WithDetail("name", name)
	}

	return item, nil
}

func (r *registry[T]) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[name]; !exists {
		return errors.Newf(errors.ErrLookup, "%s '%s' not found", r.kind, name).
			WithDetail("name", name)
	}

	delete(r.items, name)
	return nil
}

func (r *registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

func (r *registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.items[name]
	return exists
}

func (r *registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// MustRegister registers an item and panics if registration fails.
// Registration errors in init() functions are programming errors.
func MustRegister[T any](reg Registry[T], name string, item T) {
	if err := reg.Register(name, item); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", name, err))
	}
}
