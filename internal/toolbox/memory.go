package toolbox

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is a Repository keeping tools in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	tools map[uuid.UUID]Tool
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tools: make(map[uuid.UUID]Tool)}
}

func (r *MemoryRepository) Add(ctx context.Context, name string) (Tool, error) {
	tool := Tool{ID: uuid.New(), Name: name}
	r.mu.Lock()
	r.tools[tool.ID] = tool
	r.mu.Unlock()
	return tool, nil
}

func (r *MemoryRepository) Remove(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[id]; !ok {
		return false, nil
	}
	delete(r.tools, id)
	return true, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id uuid.UUID) (*Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[id]
	if !ok {
		return nil, nil
	}
	return &tool, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]Tool, error) {
	r.mu.RLock()
	tools := slices.Collect(maps.Values(r.tools))
	r.mu.RUnlock()
	SortTools(tools)
	return tools, nil
}

var _ Repository = (*MemoryRepository)(nil)
