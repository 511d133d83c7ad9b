package dispatch

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type recorder struct {
	calls []string
}

func (r *recorder) record(call string) {
	r.calls = append(r.calls, call)
}

func recordingBehavior(r *recorder, name string) BehaviorFunc[string, int] {
	return func(ctx context.Context, req string, next NextFunc[int]) (int, error) {
		r.record(name + "-enter")
		res, err := next()
		r.record(name + "-exit")
		return res, err
	}
}

func TestChainOrder(t *testing.T) {
	rec := &recorder{}
	terminal := func() (int, error) {
		rec.record("H")
		return 42, nil
	}

	run := Chain(context.Background(), "req", terminal,
		Behavior[string, int](recordingBehavior(rec, "B1")),
		Behavior[string, int](recordingBehavior(rec, "B2")),
	)
	res, err := run()

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res != 42 {
		t.Errorf("Expected result 42, got %d", res)
	}
	want := []string{"B1-enter", "B2-enter", "H", "B2-exit", "B1-exit"}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("Expected calls %v, got %v", want, rec.calls)
	}
}

func TestChainWithoutBehaviors(t *testing.T) {
	run := Chain[string, int](context.Background(), "req", func() (int, error) {
		return 1, nil
	})

	res, err := run()
	if err != nil || res != 1 {
		t.Errorf("Expected (1, nil), got (%d, %v)", res, err)
	}
}

func TestChainShortCircuit(t *testing.T) {
	rec := &recorder{}
	shortCircuit := BehaviorFunc[string, int](func(ctx context.Context, req string, next NextFunc[int]) (int, error) {
		rec.record("short")
		return -1, nil
	})

	run := Chain(context.Background(), "req", func() (int, error) {
		rec.record("H")
		return 1, nil
	},
		Behavior[string, int](recordingBehavior(rec, "B1")),
		Behavior[string, int](shortCircuit),
		Behavior[string, int](recordingBehavior(rec, "B3")),
	)
	res, err := run()

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res != -1 {
		t.Errorf("Expected result -1, got %d", res)
	}
	want := []string{"B1-enter", "short", "B1-exit"}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("Expected calls %v, got %v", want, rec.calls)
	}
}

func TestChainPassesContextAndRequest(t *testing.T) {
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "value")

	var seen []any
	b := BehaviorFunc[string, int](func(ctx context.Context, req string, next NextFunc[int]) (int, error) {
		seen = append(seen, ctx.Value(ctxKey{}), req)
		return next()
	})

	_, _ = Chain(ctx, "req", func() (int, error) { return 0, nil }, Behavior[string, int](b))()

	want := []any{"value", "req"}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("Expected %v, got %v", want, seen)
	}
}

func TestOpenBehaviorConvertsResult(t *testing.T) {
	open := BehaviorFunc[any, any](func(ctx context.Context, req any, next NextFunc[any]) (any, error) {
		res, err := next()
		if err != nil {
			return nil, err
		}
		return res.(int) * 2, nil
	})

	b, err := asBehavior[string, int](Behavior[any, any](open))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	res, err := b.Handle(context.Background(), "req", func() (int, error) { return 21, nil })

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res != 42 {
		t.Errorf("Expected 42, got %d", res)
	}
}

func TestOpenBehaviorWrongResultType(t *testing.T) {
	open := BehaviorFunc[any, any](func(ctx context.Context, req any, next NextFunc[any]) (any, error) {
		return "not an int", nil
	})

	b, _ := asBehavior[string, int](Behavior[any, any](open))
	_, err := b.Handle(context.Background(), "req", func() (int, error) { return 1, nil })

	if !errors.Is(err, ErrResultType) {
		t.Errorf("Expected ErrResultType, got %v", err)
	}
}

func TestOpenBehaviorNilResult(t *testing.T) {
	fault := errors.New("boom")
	open := BehaviorFunc[any, any](func(ctx context.Context, req any, next NextFunc[any]) (any, error) {
		return next()
	})

	b, _ := asBehavior[string, *int](Behavior[any, any](open))
	res, err := b.Handle(context.Background(), "req", func() (*int, error) { return nil, fault })

	if res != nil {
		t.Errorf("Expected nil result, got %v", res)
	}
	if err != fault {
		t.Errorf("Expected fault to pass through, got %v", err)
	}
}

func TestAsBehaviorRejectsUnknownType(t *testing.T) {
	_, err := asBehavior[string, int]("not a behavior")
	if !errors.Is(err, ErrInvalidRegistration) {
		t.Errorf("Expected ErrInvalidRegistration, got %v", err)
	}
}
