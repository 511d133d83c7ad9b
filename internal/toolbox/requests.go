package toolbox

import "github.com/google/uuid"

// AddTool is the command adding a tool. It produces the new Tool.
type AddTool struct {
	Name string `json:"name"`
}

// RemoveTool is the command removing a tool. It reports whether the tool
// existed.
type RemoveTool struct {
	ID uuid.UUID `json:"id"`
}

// GetTool is the query fetching a single tool. It produces nil for unknown
// ids and fails with ErrInvalidOperation for the nil id.
type GetTool struct {
	ID uuid.UUID `json:"id"`
}

// ListTools is the query listing all tools.
type ListTools struct{}

// ToolAdded is published after a tool was added.
type ToolAdded struct {
	Tool Tool `json:"tool"`
}

// ToolRemoved is published after a tool was removed.
type ToolRemoved struct {
	ID uuid.UUID `json:"id"`
}

// AddToolSchema constrains AddTool to a non-blank name.
const AddToolSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"name": {"type": "string", "minLength": 1, "maxLength": 128, "pattern": "\\S"}
	},
	"required": ["name"]
}`

// RemoveToolSchema constrains RemoveTool to a well-formed id.
const RemoveToolSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"id": {"type": "string", "format": "uuid"}
	},
	"required": ["id"]
}`
