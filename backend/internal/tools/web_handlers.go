package tools

import (
	"context"
	"fmt"

	"warden/backend/internal/adapter"
)

// RegisterWebTools registers the web tools against the executor
func RegisterWebTools(r *Registry, exec *WebExecutor) {
	r.Register(&webSearchHandler{exec})
	r.Register(&fetchWebpageHandler{exec})
}

// web_search

type webSearchHandler struct{ exec *WebExecutor }

func (h *webSearchHandler) Definition() adapter.Tool {
	return adapter.Tool{
		Type: "function",
		Function: adapter.FunctionDefinition{
			Name:        ToolWebSearch,
			Description: "Search the web for current information. Use this for anything you don't know or that may have changed recently.",
			Parameters: objectSchema(map[string]interface{}{
				"query":       stringProp("Search query, optimized for a search engine"),
				"max_results": intProp("Maximum results to return (default: 5)"),
			}, "query"),
		},
	}
}

func (h *webSearchHandler) Execute(ctx context.Context, rc RequestContext, args map[string]interface{}) *Result {
	query := argString(args, "query")
	if query == "" {
		return Errorf("query is required")
	}

	results, err := h.exec.Search(ctx, query, argInt(args, "max_results", 5))
	if err != nil {
		return Errorf("search failed: %v", err)
	}
	if len(results) == 0 {
		return &Result{
			Success: true,
			Data:    map[string]interface{}{"results": []SearchResult{}, "query": query},
			Message: fmt.Sprintf("No results found for: %s", query),
		}
	}

	// Message carries the formatted results so the loop can fall back to
	// them (and offer a paste link) if the model goes quiet.
	return &Result{
		Success: true,
		Data:    map[string]interface{}{"results": results, "query": query},
		Message: FormatSearchResults(query, results),
	}
}

// fetch_webpage

type fetchWebpageHandler struct{ exec *WebExecutor }

func (h *fetchWebpageHandler) Definition() adapter.Tool {
	return adapter.Tool{
		Type: "function",
		Function: adapter.FunctionDefinition{
			Name:        ToolFetchWebpage,
			Description: "Fetch a webpage and return its readable text content.",
			Parameters: objectSchema(map[string]interface{}{
				"url": stringProp("URL of the page to fetch"),
			}, "url"),
		},
	}
}

func (h *fetchWebpageHandler) Execute(ctx context.Context, rc RequestContext, args map[string]interface{}) *Result {
	pageURL := argString(args, "url")
	if pageURL == "" {
		return Errorf("url is required")
	}

	content, err := h.exec.FetchPage(ctx, pageURL, 5000)
	if err != nil {
		return Errorf("fetch failed: %v", err)
	}

	return &Result{
		Success: true,
		Data:    map[string]interface{}{"url": pageURL, "content": content},
	}
}
