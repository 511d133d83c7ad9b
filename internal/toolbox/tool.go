// Package toolbox is a sample domain served through the dispatcher: tools can
// be added, removed, fetched and listed through commands and queries.
package toolbox

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"
)

// ErrInvalidOperation is raised by handlers for requests that cannot be
// served, for example a lookup of the nil id.
var ErrInvalidOperation = errors.New("toolbox: invalid operation")

// Tool is a named tool in the toolbox.
type Tool struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Unknown is returned in place of a tool whose lookup failed with
// ErrInvalidOperation.
var Unknown = Tool{ID: uuid.Nil, Name: "Unknown"}

// Repository stores tools. Implementations are safe for concurrent use.
type Repository interface {
	// Add stores a new tool with a generated id.
	Add(ctx context.Context, name string) (Tool, error)
	// Remove deletes the tool and reports whether it existed.
	Remove(ctx context.Context, id uuid.UUID) (bool, error)
	// Get returns the tool or nil when it does not exist.
	Get(ctx context.Context, id uuid.UUID) (*Tool, error)
	// List returns all tools ordered by name, then id.
	List(ctx context.Context) ([]Tool, error)
}

// SortTools orders tools by name, then id.
func SortTools(tools []Tool) {
	slices.SortFunc(tools, func(a, b Tool) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}
