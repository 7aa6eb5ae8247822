package agent

import "warden/backend/internal/adapter"

// Conversation is the append-only turn history for one agent run. Every
// assistant tool-call turn is followed by exactly one tool turn per call
// id, which is what the completion API requires.
type Conversation struct {
	messages []adapter.Message
}

func NewConversation(systemPrompt string) *Conversation {
	return &Conversation{
		messages: []adapter.Message{
			{Role: adapter.RoleSystem, Content: systemPrompt},
		},
	}
}

// AddUser appends a user turn
func (c *Conversation) AddUser(content string) {
	c.messages = append(c.messages, adapter.Message{
		Role:    adapter.RoleUser,
		Content: content,
	})
}

// AddAssistant appends the model's turn, including any tool calls it issued
func (c *Conversation) AddAssistant(completion *adapter.Completion) {
	c.messages = append(c.messages, adapter.Message{
		Role:      adapter.RoleAssistant,
		Content:   completion.Content,
		ToolCalls: completion.ToolCalls,
	})
}

// AddToolResult appends the result payload for one tool call id
func (c *Conversation) AddToolResult(callID, payload string) {
	c.messages = append(c.messages, adapter.Message{
		Role:       adapter.RoleTool,
		Content:    payload,
		ToolCallID: callID,
	})
}

// Messages returns the turns in order
func (c *Conversation) Messages() []adapter.Message {
	return c.messages
}

// Len returns the number of turns
func (c *Conversation) Len() int {
	return len(c.messages)
}
