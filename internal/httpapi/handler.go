// Package httpapi exposes the toolbox over HTTP. Every route dispatches a
// single command or query; successful commands publish a notification.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fxsml/dispatch"
	"github.com/fxsml/dispatch/internal/toolbox"
	"github.com/fxsml/dispatch/middleware"
	"github.com/google/uuid"
)

// Config configures the HTTP handler.
type Config struct {
	// Schemas is served on GET /schemas. Optional.
	Schemas *middleware.Schemas
	// Logger is used for logging (default: slog.Default()).
	Logger dispatch.Logger
}

type api struct {
	d       *dispatch.Dispatcher
	schemas *middleware.Schemas
	logger  dispatch.Logger
}

// NewHandler returns the routes of the toolbox API:
//
//	POST   /tools           AddTool
//	DELETE /tools/{id}      RemoveTool
//	GET    /tools/{id}      GetTool
//	GET    /tools           ListTools
//	GET    /schemas         request schema catalog
//	GET    /schemas/{name}  schema of one request, e.g. toolbox.AddTool
//	GET    /healthz         liveness
func NewHandler(d *dispatch.Dispatcher, cfg Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	a := &api{d: d, schemas: cfg.Schemas, logger: cfg.Logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /tools", a.addTool)
	mux.HandleFunc("DELETE /tools/{id}", a.removeTool)
	mux.HandleFunc("GET /tools/{id}", a.getTool)
	mux.HandleFunc("GET /tools", a.listTools)
	mux.HandleFunc("GET /schemas", a.catalog)
	mux.HandleFunc("GET /schemas/{name}", a.schema)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

func (a *api) addTool(w http.ResponseWriter, r *http.Request) {
	var cmd toolbox.AddTool
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tool, err := dispatch.Send[toolbox.AddTool, toolbox.Tool](r.Context(), a.d, cmd)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.publish(r, dispatch.Publish(r.Context(), a.d, toolbox.ToolAdded{Tool: tool}))
	writeJSON(w, http.StatusCreated, tool)
}

func (a *api) removeTool(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	removed, err := dispatch.Send[toolbox.RemoveTool, bool](r.Context(), a.d, toolbox.RemoveTool{ID: id})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if removed {
		a.publish(r, dispatch.Publish(r.Context(), a.d, toolbox.ToolRemoved{ID: id}))
	}
	writeJSON(w, http.StatusOK, removed)
}

func (a *api) getTool(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	tool, err := dispatch.Query[toolbox.GetTool, *toolbox.Tool](r.Context(), a.d, toolbox.GetTool{ID: id})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if tool == nil {
		writeError(w, http.StatusNotFound, "tool not found")
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

func (a *api) listTools(w http.ResponseWriter, r *http.Request) {
	tools, err := dispatch.Query[toolbox.ListTools, []toolbox.Tool](r.Context(), a.d, toolbox.ListTools{})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if tools == nil {
		tools = []toolbox.Tool{}
	}
	writeJSON(w, http.StatusOK, tools)
}

func (a *api) catalog(w http.ResponseWriter, r *http.Request) {
	if a.schemas == nil {
		writeError(w, http.StatusNotFound, "no schemas registered")
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.schemas.Catalog())
}

func (a *api) schema(w http.ResponseWriter, r *http.Request) {
	var raw []byte
	if a.schemas != nil {
		raw = a.schemas.Schema(r.PathValue("name"))
	}
	if raw == nil {
		writeError(w, http.StatusNotFound, "schema not found")
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// publish logs notification failures. The command already succeeded, so
// they do not change the response.
func (a *api) publish(r *http.Request, err error) {
	if err != nil {
		a.logger.Warn("Notification publish failed",
			"component", "httpapi",
			"path", r.URL.Path,
			"error", err)
	}
}

func (a *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("Request failed",
			"component", "httpapi",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeError(w, status, http.StatusText(status))
		return
	}
	writeError(w, status, err.Error())
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, middleware.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, middleware.ErrThrottled):
		return http.StatusTooManyRequests
	case errors.Is(err, toolbox.ErrInvalidOperation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dispatch.ErrHandlerNotFound):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tool id")
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
