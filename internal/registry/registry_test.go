package registry

import (
	"strings"
	"testing"

	"notam_parser/internal/geo"
)

// fakeArea is a minimal Area for dispatch tests.
type fakeArea struct {
	kind string
}

func (a *fakeArea) Kind() string                  { return a.kind }
func (a *fakeArea) Build() (*geo.Geometry, error) { return nil, nil }

// fakeMatcher matches any text containing its token.
type fakeMatcher struct {
	name       string
	priority   int
	token      string
	quickCalls int
}

func (m *fakeMatcher) Name() string  { return m.name }
func (m *fakeMatcher) Priority() int { return m.priority }

func (m *fakeMatcher) QuickCheck(text string) bool {
	m.quickCalls++
	return strings.Contains(text, m.token)
}

func (m *fakeMatcher) Match(text string) Area {
	if !strings.Contains(text, m.token) {
		return nil
	}
	return &fakeArea{kind: m.name}
}

func TestRegistry_PriorityOrder(t *testing.T) {
	r := New()
	// Register out of order; Sort must fix the dispatch order.
	r.Register(&fakeMatcher{name: "third", priority: 30, token: "X"})
	r.Register(&fakeMatcher{name: "first", priority: 10, token: "X"})
	r.Register(&fakeMatcher{name: "second", priority: 20, token: "X"})
	r.Sort()

	area := r.MatchFirst("X")
	if area == nil {
		t.Fatal("expected match, got nil")
	}
	if area.Kind() != "first" {
		t.Errorf("matched %q, want lowest-priority matcher %q", area.Kind(), "first")
	}

	names := r.MatcherNames()
	want := []string{"first", "second", "third"}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("names[%d] = %q, want %q", i, names[i], n)
		}
	}
}

func TestRegistry_QuickCheckGates(t *testing.T) {
	r := New()
	m := &fakeMatcher{name: "gated", priority: 10, token: "TOKEN"}
	r.Register(m)
	r.Sort()

	if area := r.MatchFirst("NOTHING HERE"); area != nil {
		t.Errorf("MatchFirst() = %v, want nil", area)
	}
	if m.quickCalls != 1 {
		t.Errorf("QuickCheck called %d times, want 1", m.quickCalls)
	}
}

func TestRegistry_CatchAllRunsLast(t *testing.T) {
	r := New()
	r.Register(&fakeMatcher{name: "keyword", priority: 10, token: "KEYWORD"})
	r.RegisterCatchAll(&fakeMatcher{name: "fallback", priority: 60, token: ""})
	r.Sort()

	// The keyword matcher wins when its token is present.
	if area := r.MatchFirst("KEYWORD TEXT"); area == nil || area.Kind() != "keyword" {
		t.Errorf("MatchFirst(keyword text) = %v, want keyword", area)
	}
	// The catch-all claims everything else.
	if area := r.MatchFirst("ANYTHING"); area == nil || area.Kind() != "fallback" {
		t.Errorf("MatchFirst(other text) = %v, want fallback", area)
	}
}

func TestRegistry_MatcherCount(t *testing.T) {
	r := New()
	r.Register(&fakeMatcher{name: "a", priority: 1, token: "A"})
	r.RegisterCatchAll(&fakeMatcher{name: "b", priority: 2, token: "B"})
	if got := r.MatcherCount(); got != 2 {
		t.Errorf("MatcherCount() = %d, want 2", got)
	}
}
