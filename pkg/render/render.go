package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/arthur-debert/deftsilo/pkg/errors"
	"github.com/arthur-debert/deftsilo/pkg/types"
)

// Backend renders a plan into one artifact format
type Backend interface {
	// Name is the registry key, also accepted by --backend
	Name() string

	// Render writes the complete artifact for plan to w
	Render(w io.Writer, plan *types.Plan) error
}

// Registry is a thread-safe set of backends keyed by name
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

// DefaultRegistry returns a registry holding every built-in backend.
// version is stamped into the artifacts.
func DefaultRegistry(version string) *Registry {
	r := NewRegistry()
	for _, b := range []Backend{NewShell(version), NewTOML(version), NewYAML(version)} {
		r.MustRegister(b)
	}
	return r
}

// MustRegister registers a backend and panics if registration fails
func (r *Registry) MustRegister(b Backend) {
	if err := r.Register(b); err != nil {
		panic(fmt.Sprintf("failed to register backend %q: %v", b.Name(), err))
	}
}

// Register adds a backend
func (r *Registry) Register(b Backend) error {
	name := b.Name()
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "backend name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.backends[name]; exists {
		return errors.Newf(errors.ErrInvalidInput, "backend '%s' is already registered", name)
	}
	r.backends[name] = b
	return nil
}

// Get retrieves a backend by name
func (r *Registry) Get(name string) (Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, exists := r.backends[name]
	if !exists {
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown backend '%s'", name).
			WithDetail("available", r.namesLocked())
	}
	return b, nil
}

// Names returns all registered names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Write renders plan with b into a buffer and copies it to w only when
// rendering succeeded.
func Write(w io.Writer, b Backend, plan *types.Plan) error {
	var buf bytes.Buffer
	if err := b.Render(&buf, plan); err != nil {
		return errors.Classify(err, errors.ErrRender, b.Name()+" backend failed")
	}
	if _, err := buf.WriteTo(w); err != nil {
		return errors.Wrap(err, errors.ErrFilesystem, "cannot write artifact")
	}
	return nil
}
