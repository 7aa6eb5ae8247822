package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	apperrors "warden/backend/pkg/errors"
	"warden/backend/pkg/logger"
)

// Message roles for conversation turns
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one turn of a conversation. Assistant turns may carry tool
// calls; tool turns carry the result for exactly one tool call id.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// Tool represents a function that can be called by the LLM
type Tool struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition defines a function that can be called
type FunctionDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// ToolCall represents a function call issued by the LLM
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]interface{}

	// RawArguments preserves the original JSON so the call can be echoed
	// back into the conversation unchanged.
	RawArguments string
}

// Completion is the LLM's reply to one request: either final content,
// a batch of tool calls, or both.
type Completion struct {
	Content   string
	ToolCalls []ToolCall
}

// LLMAdapter handles communication with the LLM via LiteLLM
type LLMAdapter struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewLLMAdapter creates a new LLM adapter
func NewLLMAdapter(baseURL, apiKey, modelID string) *LLMAdapter {
	// LiteLLM accepts a dummy API key when none is configured
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL + "/v1"

	return &LLMAdapter{
		client: openai.NewClientWithConfig(cfg),
		model:  modelID,
		logger: logger.Get(),
	}
}

// Model returns the configured model id
func (a *LLMAdapter) Model() string {
	return a.model
}

// Complete sends the full conversation plus tool catalog to the LLM and
// returns its next turn. Tool choice is left on auto when tools are present.
func (a *LLMAdapter) Complete(ctx context.Context, conversation []Message, tools []Tool) (*Completion, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(conversation))
	for _, m := range conversation {
		msg := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.RawArguments,
				},
			})
		}
		messages = append(messages, msg)
	}

	openaiTools := make([]openai.Tool, 0, len(tools))
	for _, tool := range tools {
		openaiTools = append(openaiTools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  tool.Function.Parameters,
			},
		})
	}

	req := openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		Tools:       openaiTools,
		Temperature: 0.7,
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		a.logger.Error("LLM request failed",
			zap.Error(err),
			zap.String("model", a.model),
		)
		return nil, apperrors.NewAgentLLMFailed(a.model, 1, err)
	}

	if len(resp.Choices) == 0 {
		return nil, apperrors.ErrAgentNoResponse
	}

	choice := resp.Choices[0]
	completion := &Completion{Content: choice.Message.Content}

	for _, tc := range choice.Message.ToolCalls {
		call := ToolCall{
			ID:           tc.ID,
			Name:         tc.Function.Name,
			RawArguments: tc.Function.Arguments,
		}

		args, err := parseJSONArguments(tc.Function.Arguments)
		if err != nil {
			a.logger.Warn("Failed to parse tool call arguments",
				zap.String("tool_id", tc.ID),
				zap.String("tool", tc.Function.Name),
				zap.Error(err),
			)
			args = make(map[string]interface{})
		}
		call.Arguments = args

		completion.ToolCalls = append(completion.ToolCalls, call)
	}

	a.logger.Debug("LLM completion received",
		zap.String("model", a.model),
		zap.Int("tool_calls", len(completion.ToolCalls)),
		zap.Bool("has_content", completion.Content != ""),
	)

	return completion, nil
}

// parseJSONArguments parses the JSON string arguments into a map
func parseJSONArguments(jsonStr string) (map[string]interface{}, error) {
	var args map[string]interface{}
	if jsonStr == "" {
		return make(map[string]interface{}), nil
	}

	if err := json.Unmarshal([]byte(jsonStr), &args); err != nil {
		return nil, fmt.Errorf("failed to parse arguments: %w", err)
	}

	return args, nil
}
