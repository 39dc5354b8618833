package service

import (
	"errors"
	"testing"

	"github.com/osgard/sentinel/internal/domain"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	a := NewBaseAgent("db", "infra", "")
	if err := r.Register(a); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, ok := r.Get("db")
	if !ok {
		t.Fatal("expected agent to be found")
	}
	if got.Name() != "db" {
		t.Fatalf("expected db, got %s", got.Name())
	}
	if _, ok := r.Get("missing"); ok {
		t.Fatal("unexpected hit for unknown agent")
	}
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewBaseAgent("db", "infra", "")); err != nil {
		t.Fatal(err)
	}
	err := r.Register(NewBaseAgent("db", "infra", "other"))
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 agent, got %d", r.Len())
	}
}

func TestRegistry_AllPreservesOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(NewBaseAgent(name, "infra", "")); err != nil {
			t.Fatal(err)
		}
	}

	all := r.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 agents, got %d", len(all))
	}
	for i, want := range []string{"zeta", "alpha", "mid"} {
		if all[i].Name() != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, all[i].Name())
		}
	}
}

func TestRegistry_ByCategory(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewBaseAgent("db", "infra", "")); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(NewBaseAgent("web", "frontend", "")); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(NewBaseAgent("cache", "infra", "")); err != nil {
		t.Fatal(err)
	}

	infra := r.ByCategory("infra")
	if len(infra) != 2 {
		t.Fatalf("expected 2 infra agents, got %d", len(infra))
	}
	if len(r.ByCategory("nope")) != 0 {
		t.Fatal("expected no agents in unknown category")
	}
}
