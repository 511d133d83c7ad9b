package toolbox

import (
	"errors"

	"github.com/fxsml/dispatch"
	"github.com/fxsml/dispatch/middleware"
)

// Origins of the toolbox capabilities.
var (
	CommandsOrigin = dispatch.Origin{Group: "toolbox", Path: "toolbox/v1/commands"}
	QueriesOrigin  = dispatch.Origin{Group: "toolbox", Path: "toolbox/v1/queries"}
	PipelineOrigin = dispatch.Origin{Group: "toolbox", Path: "toolbox/v1/pipeline"}
)

// Register adds the toolbox handlers to reg together with its fault handling:
// a logging exception action and the translation of ErrInvalidOperation into
// Unknown for requests producing *Tool.
func Register(reg *dispatch.Registry, repo Repository, logger dispatch.Logger) error {
	h := handlers{repo: repo}
	isInvalidOperation := func(err error) bool {
		return errors.Is(err, ErrInvalidOperation)
	}

	return errors.Join(
		dispatch.RegisterCommandHandler[AddTool, Tool](reg,
			dispatch.HandlerFunc[AddTool, Tool](h.addTool),
			dispatch.WithOrigin(CommandsOrigin)),
		dispatch.RegisterCommandHandler[RemoveTool, bool](reg,
			dispatch.HandlerFunc[RemoveTool, bool](h.removeTool),
			dispatch.WithOrigin(CommandsOrigin)),
		dispatch.RegisterQueryHandler[GetTool, *Tool](reg,
			dispatch.HandlerFunc[GetTool, *Tool](h.getTool),
			dispatch.WithOrigin(QueriesOrigin)),
		dispatch.RegisterQueryHandler[ListTools, []Tool](reg,
			dispatch.HandlerFunc[ListTools, []Tool](h.listTools),
			dispatch.WithOrigin(QueriesOrigin)),
		dispatch.RegisterOpenExceptionAction(reg,
			middleware.LogException(middleware.LogConfig{
				Logger:  logger,
				Args:    []any{"component", "toolbox"},
				Message: "Toolbox request fault",
			}),
			dispatch.WithOrigin(PipelineOrigin)),
		dispatch.RegisterOpenExceptionHandler[*Tool](reg,
			TranslateInvalidOperation(),
			dispatch.WithOrigin(PipelineOrigin),
			dispatch.WithErrorMatch(isInvalidOperation)),
	)
}

// RegisterSchemas adds the JSON schemas of the toolbox commands to s.
func RegisterSchemas(s *middleware.Schemas) error {
	return errors.Join(
		s.Register(AddTool{}, AddToolSchema),
		s.Register(RemoveTool{}, RemoveToolSchema),
	)
}
