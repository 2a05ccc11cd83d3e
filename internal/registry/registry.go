// Package registry provides an ordered matcher registry for dispatching
// restriction text to shape matchers.
//
// The priority order is load-bearing: arc and sector text both contain
// RADIUS and CENTRE tokens that the circle matcher would otherwise claim,
// so the circle matcher runs only after arc, sector and ellipse have had
// their chance. Dispatch applies matchers in order and returns the first
// success with no backtracking.
package registry

import (
	"sort"
	"sync"

	"notam_parser/internal/geo"
)

// Area is the common interface for matched shape parameter sets. Each
// matcher package defines its own concrete variant.
type Area interface {
	// Kind returns the shape label, e.g. "circle", "arc".
	Kind() string

	// Build turns the extracted parameters into geometry.
	Build() (*geo.Geometry, error)
}

// Matcher is implemented by each shape matcher.
type Matcher interface {
	// Name returns the matcher's unique identifier.
	Name() string

	// Priority determines dispatch order. Lower number = tried first.
	Priority() int

	// QuickCheck performs a fast string check before expensive regex.
	// Returns true if the text MIGHT match (false = definitely skip).
	// This should use strings.Contains, NOT regex.
	QuickCheck(text string) bool

	// Match attempts to extract shape parameters, returns nil on no match.
	Match(text string) Area
}

// Registry holds all registered matchers in priority order.
type Registry struct {
	mu sync.RWMutex

	// matchers are tried in priority order (ascending).
	matchers []Matcher

	// catchAll matchers run only when nothing else matched. The bare
	// coordinate-chain matcher lives here: it has no shape keyword of its
	// own and would claim the coordinate lists inside arc and corridor
	// text if tried alongside the keyword matchers.
	catchAll []Matcher

	sorted bool
}

// New creates a new Registry instance.
func New() *Registry {
	return &Registry{}
}

// Global default registry.
var defaultRegistry = New()

// Default returns the global registry instance.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a matcher to the default registry.
// Called during init() in each matcher package.
func Register(m Matcher) {
	defaultRegistry.Register(m)
}

// RegisterCatchAll adds a catch-all matcher to the default registry.
func RegisterCatchAll(m Matcher) {
	defaultRegistry.RegisterCatchAll(m)
}

// Register adds a matcher to the registry.
func (r *Registry) Register(m Matcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matchers = append(r.matchers, m)
	r.sorted = false
}

// RegisterCatchAll adds a catch-all matcher.
func (r *Registry) RegisterCatchAll(m Matcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catchAll = append(r.catchAll, m)
	r.sorted = false
}

// Sort orders matchers by priority. Call once before dispatching.
func (r *Registry) Sort() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sorted {
		return
	}
	sort.Slice(r.matchers, func(i, j int) bool {
		return r.matchers[i].Priority() < r.matchers[j].Priority()
	})
	sort.Slice(r.catchAll, func(i, j int) bool {
		return r.catchAll[i].Priority() < r.catchAll[j].Priority()
	})
	r.sorted = true
}

// MatchFirst applies matchers in priority order against the text and
// returns the first successful match, or nil when nothing matches.
// Note: Sort() should be called before dispatching; unsorted registries
// dispatch in registration order.
func (r *Registry) MatchFirst(text string) Area {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.matchers {
		if !m.QuickCheck(text) {
			continue
		}
		if area := m.Match(text); area != nil {
			return area
		}
	}
	for _, m := range r.catchAll {
		if area := m.Match(text); area != nil {
			return area
		}
	}
	return nil
}

// MatcherCount returns the number of registered matchers including
// catch-alls.
func (r *Registry) MatcherCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matchers) + len(r.catchAll)
}

// MatcherNames returns registered matcher names in dispatch order.
func (r *Registry) MatcherNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.matchers)+len(r.catchAll))
	for _, m := range r.matchers {
		names = append(names, m.Name())
	}
	for _, m := range r.catchAll {
		names = append(names, m.Name())
	}
	return names
}
