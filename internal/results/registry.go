package results

import (
	"fmt"
	"sort"
	"sync"

	"github.com/seistore/seistore/internal/models"
	apperrors "github.com/seistore/seistore/pkg/errors"
)

// Provider computes one dataset flavour from raw rows. Implementations must
// be pure: no I/O, deterministic output for identical input.
type Provider interface {
	// ResultType is the base result type the provider serves (no direction suffix).
	ResultType() string
	// Scope selects the cache table datasets land in.
	Scope() Scope
	// Compute derives the dataset. A non-empty direction restricts rows to
	// that direction before grouping.
	Compute(rows []models.RawRow, direction string) (*Dataset, error)
}

// Registry maps base result type names to their providers. Unknown names are
// a hard error, never a silent no-op.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry constructs a registry with all built-in providers registered.
func NewRegistry() *Registry {
	r := &Registry{providers: make(map[string]Provider)}

	for _, p := range []Provider{
		DriftProvider{},
		StoryShearProvider{},
		QuadRotationProvider{},
		PierForceProvider{},
		JointDisplacementProvider{},
	} {
		// built-ins cannot collide
		_ = r.Register(p)
	}

	return r
}

// Register adds a provider, enforcing uniqueness by result type.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.ResultType()
	if name == "" {
		return fmt.Errorf("results: provider with empty result type")
	}
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("results: provider %q already registered", name)
	}

	r.providers[name] = p
	return nil
}

// Lookup resolves a base result type to its provider.
func (r *Registry) Lookup(baseType string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[baseType]
	if !ok {
		return nil, apperrors.ErrUnknownResultType.WithMessage(
			fmt.Sprintf("result type %q is not registered", baseType))
	}
	return p, nil
}

// Types returns all registered base result types, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
