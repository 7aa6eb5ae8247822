package tools

import (
	"context"
	"fmt"
	"strings"

	"warden/backend/internal/adapter"
	"warden/backend/internal/graph"
)

// RegisterMemoryTools registers the long-term memory tools backed by the
// graph repository.
func RegisterMemoryTools(r *Registry, repo *graph.Repository) {
	r.Register(&saveMemoryHandler{repo: repo})
	r.Register(&searchMemoryHandler{repo: repo})
}

type saveMemoryHandler struct {
	repo *graph.Repository
}

func (h *saveMemoryHandler) Definition() adapter.Tool {
	return adapter.Tool{
		Type: "function",
		Function: adapter.FunctionDefinition{
			Name:        ToolSaveMemory,
			Description: "Save a fact about the requesting user for future conversations. Use when the user shares something worth remembering.",
			Parameters: objectSchema(map[string]interface{}{
				"content":  stringProp("The fact to remember, phrased as a standalone statement"),
				"category": stringProp("Optional short category, e.g. 'preference' or 'project'"),
			}, "content"),
		},
	}
}

func (h *saveMemoryHandler) Execute(ctx context.Context, rc RequestContext, args map[string]interface{}) *Result {
	content := strings.TrimSpace(argString(args, "content"))
	if content == "" {
		return Errorf("content is required")
	}
	category := argString(args, "category")

	id, err := h.repo.SaveMemory(ctx, rc.RequesterID, content, category)
	if err != nil {
		return Errorf("failed to save memory: %v", err)
	}

	return &Result{
		Success: true,
		Data:    map[string]interface{}{"memory_id": id},
		Message: "Memory saved",
	}
}

type searchMemoryHandler struct {
	repo *graph.Repository
}

func (h *searchMemoryHandler) Definition() adapter.Tool {
	return adapter.Tool{
		Type: "function",
		Function: adapter.FunctionDefinition{
			Name:        ToolSearchMemory,
			Description: "Search saved facts about the requesting user. An empty query returns the most recent memories.",
			Parameters: objectSchema(map[string]interface{}{
				"query": stringProp("Text to match against saved memories"),
				"limit": intProp("Maximum number of memories to return (default 10)"),
			}),
		},
	}
}

func (h *searchMemoryHandler) Execute(ctx context.Context, rc RequestContext, args map[string]interface{}) *Result {
	query := argString(args, "query")
	limit := argInt(args, "limit", 10)

	memories, err := h.repo.SearchMemories(ctx, rc.RequesterID, query, limit)
	if err != nil {
		return Errorf("failed to search memories: %v", err)
	}

	items := make([]map[string]interface{}, 0, len(memories))
	for _, m := range memories {
		items = append(items, map[string]interface{}{
			"id":       m.ID,
			"content":  m.Content,
			"category": m.Category,
			"saved_at": m.CreatedAt.Format("2006-01-02"),
		})
	}

	return &Result{
		Success: true,
		Data: map[string]interface{}{
			"count":    len(items),
			"memories": items,
		},
		Message: fmt.Sprintf("Found %d memories", len(items)),
	}
}
