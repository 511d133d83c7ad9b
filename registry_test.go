package dispatch

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type addItem struct{ Name string }

type removeItem struct{ Name string }

func noopBehavior[Req, Res any]() BehaviorFunc[Req, Res] {
	return func(ctx context.Context, req Req, next NextFunc[Res]) (Res, error) {
		return next()
	}
}

func TestRegistryRejectsDuplicateHandler(t *testing.T) {
	reg := NewRegistry()
	h := HandlerFunc[addItem, string](func(ctx context.Context, cmd addItem) (string, error) {
		return cmd.Name, nil
	})

	if err := RegisterCommandHandler[addItem, string](reg, h); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	err := RegisterCommandHandler[addItem, string](reg, h)
	if !errors.Is(err, ErrHandlerExists) {
		t.Errorf("Expected ErrHandlerExists, got %v", err)
	}

	// Same request type with another result type, or as a query, is a different key.
	if err := RegisterCommandHandler[addItem, int](reg, HandlerFunc[addItem, int](func(ctx context.Context, cmd addItem) (int, error) {
		return 0, nil
	})); err != nil {
		t.Errorf("Expected no error for different result type, got %v", err)
	}
	if err := RegisterQueryHandler[addItem, string](reg, h); err != nil {
		t.Errorf("Expected no error for query handler, got %v", err)
	}
}

func TestRegistryRejectsNil(t *testing.T) {
	reg := NewRegistry()

	err := RegisterCommandHandler[addItem, string](reg, nil)
	if !errors.Is(err, ErrInvalidRegistration) {
		t.Errorf("Expected ErrInvalidRegistration, got %v", err)
	}
	err = RegisterOpenBehavior(reg, nil)
	if !errors.Is(err, ErrInvalidRegistration) {
		t.Errorf("Expected ErrInvalidRegistration, got %v", err)
	}
}

func TestRegistryResolvePreservesOrder(t *testing.T) {
	reg := NewRegistry()
	first := noopBehavior[addItem, string]()
	open := noopBehavior[any, any]()
	last := noopBehavior[addItem, string]()
	other := noopBehavior[removeItem, string]()

	_ = RegisterBehavior[addItem, string](reg, first, WithOrigin(Origin{Path: "first"}))
	_ = RegisterBehavior[removeItem, string](reg, other, WithOrigin(Origin{Path: "other"}))
	_ = RegisterOpenBehavior(reg, open, WithOrigin(Origin{Path: "open"}))
	_ = RegisterBehavior[addItem, string](reg, last, WithOrigin(Origin{Path: "last"}))

	entries := reg.Resolve(KeyOf[addItem, string](), CategoryBehavior)

	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Origin.Path)
	}
	want := []string{"first", "open", "last"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("Expected %v, got %v", want, paths)
	}
}

func TestRegistryResolveOpenExceptionHandlerByResult(t *testing.T) {
	reg := NewRegistry()
	h := ExceptionHandlerFunc[any, string](func(ctx context.Context, req any, err error) (string, error) {
		return "", nil
	})
	_ = RegisterOpenExceptionHandler[string](reg, h)

	if got := reg.Resolve(KeyOf[addItem, string](), CategoryExceptionHandler); len(got) != 1 {
		t.Errorf("Expected 1 entry for matching result, got %d", len(got))
	}
	if got := reg.Resolve(KeyOf[addItem, int](), CategoryExceptionHandler); len(got) != 0 {
		t.Errorf("Expected 0 entries for other result, got %d", len(got))
	}
}

func TestRegistryResolveExceptionActionIgnoresResult(t *testing.T) {
	reg := NewRegistry()
	a := ExceptionActionFunc[addItem](func(ctx context.Context, req addItem, err error) error {
		return nil
	})
	_ = RegisterExceptionAction[addItem](reg, a)

	if got := reg.Resolve(KeyOf[addItem, string](), CategoryExceptionAction); len(got) != 1 {
		t.Errorf("Expected 1 entry, got %d", len(got))
	}
	if got := reg.Resolve(KeyOf[addItem, int](), CategoryExceptionAction); len(got) != 1 {
		t.Errorf("Expected 1 entry, got %d", len(got))
	}
	if got := reg.Resolve(KeyOf[removeItem, string](), CategoryExceptionAction); len(got) != 0 {
		t.Errorf("Expected 0 entries, got %d", len(got))
	}
}

func TestRegistryWithErrorMatch(t *testing.T) {
	reg := NewRegistry()
	target := errors.New("target")
	a := ExceptionActionFunc[any](func(ctx context.Context, req any, err error) error {
		return nil
	})
	_ = RegisterOpenExceptionAction(reg, a, WithErrorMatch(func(err error) bool {
		return errors.Is(err, target)
	}))

	entries := reg.Resolve(KeyOf[addItem, string](), CategoryExceptionAction)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if !entries[0].Match(target) {
		t.Error("Expected matcher to accept target")
	}
	if entries[0].Match(errors.New("other")) {
		t.Error("Expected matcher to reject other errors")
	}
}

func TestKeyString(t *testing.T) {
	if got := KeyOf[addItem, string]().String(); got != "dispatch.addItem -> string" {
		t.Errorf("Expected %q, got %q", "dispatch.addItem -> string", got)
	}
	if got := (Key{}).String(); got != "any -> any" {
		t.Errorf("Expected %q, got %q", "any -> any", got)
	}
}
