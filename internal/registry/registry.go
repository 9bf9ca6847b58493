package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/samber/do/v2"

	"github.com/nfrund/zina/internal/config"
)

// Key is a type-safe key for registering and retrieving services. The string
// value should be unique, e.g. "storefront.catalog".
type Key[T any] string

// Registry lets modules share services at runtime. Values live in a do
// injector under the key's name.
type Registry struct {
	injector do.Injector
	cfg      config.Provider

	mu   sync.Mutex
	keys map[string]struct{}
}

// New creates a registry carrying the application's configuration.
func New(cfg config.Provider) *Registry {
	return &Registry{
		injector: do.New(),
		cfg:      cfg,
		keys:     make(map[string]struct{}),
	}
}

// Config returns the configuration provider stored in the registry.
func (r *Registry) Config() config.Provider {
	return r.cfg
}

// Keys lists the registered service names, sorted.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.keys))
	for k := range r.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Set registers value under key. Registering the same key twice replaces the
// earlier value.
func Set[T any](r *Registry, key Key[T], value T) {
	name := string(key)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.keys[name]; ok {
		do.OverrideNamedValue(r.injector, name, value)
		return
	}
	r.keys[name] = struct{}{}
	do.ProvideNamedValue(r.injector, name, value)
}

// Get retrieves the service registered under key.
func Get[T any](r *Registry, key Key[T]) (T, bool) {
	r.mu.Lock()
	_, ok := r.keys[string(key)]
	r.mu.Unlock()
	if !ok {
		var zero T
		return zero, false
	}
	val, err := do.InvokeNamed[T](r.injector, string(key))
	if err != nil {
		var zero T
		return zero, false
	}
	return val, true
}

// MustGet retrieves a service or panics if it is missing. Use it for wiring
// essential dependencies at startup.
func MustGet[T any](r *Registry, key Key[T]) T {
	val, ok := Get(r, key)
	if !ok {
		panic(fmt.Sprintf("service not found for key: %v", key))
	}
	return val
}
