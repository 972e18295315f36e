package hintlet

import (
	"context"
	"testing"

	"github.com/hintscan/hintscan/internal/model"
)

// namedRule is a minimal rule used for registry tests.
type namedRule struct {
	name string
}

func (r *namedRule) Name() string                { return r.name }
func (r *namedRule) Concerns() []model.EventType { return nil }
func (r *namedRule) OnRecord(context.Context, *model.Record, *Emitter) error {
	return nil
}

// TestRegistryOrder tests that registration order is preserved.
func TestRegistryOrder(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(&namedRule{name: "first"})
	registry.Register(&namedRule{name: "second"})
	registry.Register(&namedRule{name: "third"})

	names := registry.Names()
	expected := []string{"first", "second", "third"}
	for i, want := range expected {
		if names[i] != want {
			t.Errorf("Names()[%d] = %q, expected %q", i, names[i], want)
		}
	}
}

// TestRegistryDuplicateNames tests that duplicate rule names are both
// kept, in registration order.
func TestRegistryDuplicateNames(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	a := &namedRule{name: "dup"}
	b := &namedRule{name: "dup"}
	registry.Register(a)
	registry.Register(b)

	if registry.Len() != 2 {
		t.Fatalf("Len() = %d, expected 2", registry.Len())
	}

	rules := registry.Rules()
	if rules[0] != a || rules[1] != b {
		t.Error("duplicate registrations were not kept in order")
	}
}

// TestRegistryEmpty tests the empty registry.
func TestRegistryEmpty(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	if registry.Len() != 0 {
		t.Errorf("Len() = %d, expected 0", registry.Len())
	}
	if len(registry.Names()) != 0 {
		t.Error("expected no names on empty registry")
	}
}
