package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Registry is an immutable set of validated profiles keyed by id.
type Registry struct {
	byID  map[string]Profile
	order []string
}

// NewRegistry validates every profile and builds a registry. A later profile
// replaces an earlier one with the same id, keeping the earlier position.
// Construction fails on the first malformed profile.
func NewRegistry(profiles ...Profile) (*Registry, error) {
	r := &Registry{byID: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, exists := r.byID[p.ID]; !exists {
			r.order = append(r.order, p.ID)
		}
		r.byID[p.ID] = p.Clone()
	}
	return r, nil
}

// Lookup returns the profile with the given id.
func (r *Registry) Lookup(id string) (Profile, error) {
	p, ok := r.byID[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, id)
	}
	return p.Clone(), nil
}

// List returns all profiles in registration order.
func (r *Registry) List() []Profile {
	out := make([]Profile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Clone())
	}
	return out
}

// Len returns the number of registered profiles.
func (r *Registry) Len() int {
	return len(r.order)
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadFile reads profiles from a YAML document with a top-level "profiles"
// list. Each profile is validated.
func LoadFile(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles file: %w", err)
	}

	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing profiles file: %w", err)
	}

	for _, p := range pf.Profiles {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return pf.Profiles, nil
}
