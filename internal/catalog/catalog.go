// Package catalog holds the static table of model profiles used by selection and evaluation.
//
// A Catalog is built once at startup and never mutated afterwards, so concurrent reads need
// no locking.
package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrModelNotFound indicates the requested model is not in the catalog.
	ErrModelNotFound = errors.New("model not found")
	// ErrDuplicateModel indicates two profiles share a name.
	ErrDuplicateModel = errors.New("duplicate model name")
	// ErrInvalidProfile indicates a profile violates its invariants.
	ErrInvalidProfile = errors.New("invalid model profile")
)

// Filter narrows List results. Zero-valued fields match everything.
type Filter struct {
	Category Category
	Provider Provider
}

// Catalog is an insertion-ordered, read-only set of model profiles keyed by name.
type Catalog struct {
	profiles []Profile
	index    map[string]int
}

// New validates the given profiles and builds a catalog preserving their order.
func New(profiles []Profile) (*Catalog, error) {
	c := &Catalog{
		profiles: make([]Profile, 0, len(profiles)),
		index:    make(map[string]int, len(profiles)),
	}
	for _, p := range profiles {
		if errValidate := p.Validate(); errValidate != nil {
			return nil, errValidate
		}
		if _, exists := c.index[p.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateModel, p.Name)
		}
		c.index[p.Name] = len(c.profiles)
		c.profiles = append(c.profiles, p)
	}
	return c, nil
}

// NewDefault builds the catalog from DefaultProfiles.
func NewDefault() *Catalog {
	c, err := New(DefaultProfiles())
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid default profiles: %v", err))
	}
	return c
}

// Get returns the profile for name.
func (c *Catalog) Get(name string) (Profile, bool) {
	if c == nil {
		return Profile{}, false
	}
	i, ok := c.index[name]
	if !ok {
		return Profile{}, false
	}
	return c.profiles[i], true
}

// Lookup is Get with an ErrModelNotFound error for missing names.
func (c *Catalog) Lookup(name string) (Profile, error) {
	p, ok := c.Get(name)
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	return p, nil
}

// List returns the profiles matching f in catalog order. Unknown filter values yield an
// empty result rather than an error.
func (c *Catalog) List(f Filter) []Profile {
	if c == nil {
		return nil
	}
	out := make([]Profile, 0, len(c.profiles))
	for _, p := range c.profiles {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Provider != "" && p.Provider != f.Provider {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Len returns the number of profiles.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.profiles)
}
