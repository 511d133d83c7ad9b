// Package test holds test suites shared by the toolbox repository
// implementations.
package test

import (
	"context"
	"testing"

	"github.com/fxsml/dispatch/internal/toolbox"
	"github.com/google/uuid"
)

// RunRepository runs the repository contract against fresh repositories
// created by newRepo.
func RunRepository(t *testing.T, newRepo func(t *testing.T) toolbox.Repository) {
	t.Run("add and get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		added, err := repo.Add(ctx, "hammer")
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if added.ID == uuid.Nil {
			t.Error("Expected generated id")
		}
		if added.Name != "hammer" {
			t.Errorf("Expected name 'hammer', got %q", added.Name)
		}

		got, err := repo.Get(ctx, added.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got == nil || *got != added {
			t.Errorf("Expected %v, got %v", added, got)
		}
	})

	t.Run("get unknown", func(t *testing.T) {
		repo := newRepo(t)

		got, err := repo.Get(context.Background(), uuid.New())
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil, got %v", got)
		}
	})

	t.Run("remove", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		added, err := repo.Add(ctx, "saw")
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}

		removed, err := repo.Remove(ctx, added.ID)
		if err != nil || !removed {
			t.Fatalf("Expected (true, nil), got (%v, %v)", removed, err)
		}
		removed, err = repo.Remove(ctx, added.ID)
		if err != nil || removed {
			t.Errorf("Expected second remove to report (false, nil), got (%v, %v)", removed, err)
		}
		if got, _ := repo.Get(ctx, added.ID); got != nil {
			t.Errorf("Expected removed tool to be gone, got %v", got)
		}
	})

	t.Run("list ordered by name", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, name := range []string{"wrench", "hammer", "saw"} {
			if _, err := repo.Add(ctx, name); err != nil {
				t.Fatalf("Add failed: %v", err)
			}
		}

		tools, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		expected := []string{"hammer", "saw", "wrench"}
		if len(tools) != len(expected) {
			t.Fatalf("Expected %d tools, got %d", len(expected), len(tools))
		}
		for i, name := range expected {
			if tools[i].Name != name {
				t.Errorf("Expected %q at position %d, got %q", name, i, tools[i].Name)
			}
		}
	})

	t.Run("list empty", func(t *testing.T) {
		repo := newRepo(t)

		tools, err := repo.List(context.Background())
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(tools) != 0 {
			t.Errorf("Expected no tools, got %v", tools)
		}
	})
}
