package tools

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"warden/backend/internal/adapter"
	apperrors "warden/backend/pkg/errors"
	"warden/backend/pkg/logger"
)

// Handler is one registered tool: its invocation schema plus its execution
// function. Execution side effects land on external collaborators; handlers
// themselves hold no durable state.
type Handler interface {
	Definition() adapter.Tool
	Execute(ctx context.Context, rc RequestContext, args map[string]interface{}) *Result
}

// Registry is the single source of truth mapping tool names to handlers.
// Dispatch applies the permission gate before any guild-scoped handler runs.
type Registry struct {
	handlers map[string]Handler
	order    []string
	gate     *PermissionGate
	logger   *zap.Logger
}

// NewRegistry creates an empty registry with the given permission gate
func NewRegistry(gate *PermissionGate) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		gate:     gate,
		logger:   logger.Get(),
	}
}

// Register adds a handler. Registering the same name twice is a programming
// error and panics at startup rather than silently shadowing.
func (r *Registry) Register(h Handler) {
	name := h.Definition().Function.Name
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("tool registered twice: %s", name))
	}
	r.handlers[name] = h
	r.order = append(r.order, name)
}

// Definitions returns the tool catalog in registration order
func (r *Registry) Definitions() []adapter.Tool {
	defs := make([]adapter.Tool, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.handlers[name].Definition())
	}
	return defs
}

// Dispatch executes a tool by name. Unknown tools and authorization
// failures come back as structured results so the model can explain them;
// nothing crosses this boundary as a panic or error value.
func (r *Registry) Dispatch(ctx context.Context, rc RequestContext, name string, args map[string]interface{}) *Result {
	handler, ok := r.handlers[name]
	if !ok {
		r.logger.Warn("Unknown tool requested", zap.String("tool", name))
		return Errorf("%s", apperrors.NewToolNotFound(name).Message)
	}

	if denial := r.gate.Authorize(ctx, rc, name, args); denial != nil {
		r.logger.Info("Tool call denied",
			zap.String("tool", name),
			zap.String("code", denial.Code),
			zap.String("requester_id", rc.RequesterID),
		)
		return denial.Result()
	}

	r.logger.Debug("Executing tool",
		zap.String("tool", name),
		zap.String("requester_id", rc.RequesterID),
		zap.String("origin_guild_id", rc.OriginGuildID),
	)

	return handler.Execute(ctx, rc, args)
}
