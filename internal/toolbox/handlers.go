package toolbox

import (
	"context"
	"fmt"

	"github.com/fxsml/dispatch"
	"github.com/google/uuid"
)

type handlers struct {
	repo Repository
}

func (h handlers) addTool(ctx context.Context, cmd AddTool) (Tool, error) {
	return h.repo.Add(ctx, cmd.Name)
}

func (h handlers) removeTool(ctx context.Context, cmd RemoveTool) (bool, error) {
	return h.repo.Remove(ctx, cmd.ID)
}

func (h handlers) getTool(ctx context.Context, q GetTool) (*Tool, error) {
	if q.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: tool id cannot be empty", ErrInvalidOperation)
	}
	return h.repo.Get(ctx, q.ID)
}

func (h handlers) listTools(ctx context.Context, _ ListTools) ([]Tool, error) {
	return h.repo.List(ctx)
}

// TranslateInvalidOperation recovers any request producing *Tool from
// ErrInvalidOperation by returning Unknown.
func TranslateInvalidOperation() dispatch.ExceptionHandlerFunc[any, *Tool] {
	return func(ctx context.Context, req any, err error) (*Tool, error) {
		tool := Unknown
		return &tool, nil
	}
}
