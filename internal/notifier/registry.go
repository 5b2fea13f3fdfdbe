package notifier

import (
	"strings"
	"sync"
)

// Registry maps names to modules. Registration prepends to a lookup chain,
// so a later module shadows an earlier one of the same name without
// replacing it.
type Registry struct {
	mu   sync.RWMutex
	head *entry
}

type entry struct {
	module Module
	next   *entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds m to the front of the chain.
func (r *Registry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head = &entry{module: m, next: r.head}
}

// Lookup returns the first module in the chain whose name matches
// case-insensitively, or nil if name is empty or unknown.
func (r *Registry) Lookup(name string) Module {
	if name == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for e := r.head; e != nil; e = e.next {
		if strings.EqualFold(e.module.Name(), name) {
			return e.module
		}
	}
	return nil
}

// Names returns the module names in lookup order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for e := r.head; e != nil; e = e.next {
		names = append(names, e.module.Name())
	}
	return names
}

// Constructor builds a module from its dependencies.
type Constructor func(deps Deps) Module

// Builtin lists the compiled-in modules in registration order.
var Builtin = []Constructor{
	func(d Deps) Module { return NewNotifySend(d) },
	func(d Deps) Module { return NewSound(d) },
	func(d Deps) Module { return NewLibnotify(d) },
	func(d Deps) Module { return NewNagbar(d) },
}

// NewDefaultRegistry creates a registry holding every Builtin module.
func NewDefaultRegistry(deps Deps) *Registry {
	r := NewRegistry()
	for _, construct := range Builtin {
		r.Register(construct(deps))
	}
	return r
}
