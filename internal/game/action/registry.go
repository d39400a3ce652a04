package action

import (
	"fmt"
	"sync"
)

// Registry provides lookup of action templates by ID. It retains every
// registered version so historical results stay attributable; Lookup
// resolves to the newest version.
//
// All methods are safe for concurrent use. Registered templates must never
// be mutated.
type Registry struct {
	mu       sync.RWMutex
	latest   map[string]*Template
	versions map[string]map[int]*Template
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		latest:   make(map[string]*Template),
		versions: make(map[string]map[int]*Template),
	}
}

// Register adds a template version to the registry.
//
// Precondition: tmpl must be non-nil and pass Validate().
// Postcondition: tmpl is retrievable via Version; Lookup returns it when its
// Version is the highest registered for its ID. Re-registering an existing
// ID+Version pair is an error.
func (r *Registry) Register(tmpl *Template) error {
	if tmpl == nil {
		panic("action: Registry.Register: template must be non-nil")
	}
	if err := tmpl.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byVersion := r.versions[tmpl.ID]
	if byVersion == nil {
		byVersion = make(map[int]*Template)
		r.versions[tmpl.ID] = byVersion
	}
	if _, exists := byVersion[tmpl.Version]; exists {
		return fmt.Errorf("action template %q version %d already registered", tmpl.ID, tmpl.Version)
	}
	byVersion[tmpl.Version] = tmpl

	if cur, ok := r.latest[tmpl.ID]; !ok || tmpl.Version > cur.Version {
		r.latest[tmpl.ID] = tmpl
	}
	return nil
}

// Lookup returns the newest version of the template with the given ID.
//
// Postcondition: Returns the template and true, or nil and false if the ID
// is unknown.
func (r *Registry) Lookup(id string) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.latest[id]
	return t, ok
}

// Version returns a specific registered version of a template.
func (r *Registry) Version(id string, version int) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.versions[id][version]
	return t, ok
}

// Len returns the number of distinct template IDs registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.latest)
}

// LoadRegistry loads all templates under dir into a fresh Registry.
//
// Postcondition: Returns a Registry holding every template in dir, or an
// error if any file fails to parse, validate, or register.
func LoadRegistry(dir string) (*Registry, error) {
	templates, err := LoadTemplates(dir)
	if err != nil {
		return nil, err
	}
	reg := NewRegistry()
	for _, tmpl := range templates {
		if err := reg.Register(tmpl); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
