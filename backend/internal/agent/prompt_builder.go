package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"warden/backend/internal/constants"
	"warden/backend/internal/tools"
)

const personaPrompt = `You are %s, a Discord assistant that can act on the server through tools.

Rules:
- Use tools when the user asks for information you don't have or for an action on the server. Don't guess at server state; read it.
- Destructive actions (deleting channels or roles, kicking, banning, renaming the server) always go through a user confirmation step. Propose them via tool calls and let the confirmation flow handle approval; never claim they already happened.
- Users can only make you do what their own Discord permissions allow. If a tool reports an authorization failure, tell the user plainly which permission they lack.
- Keep replies conversational and concise. Discord messages are short; don't pad.
- When a tool already posted your answer to the channel, don't repeat it.`

// buildSystemPrompt assembles the system turn: persona, current time, who
// is asking, where the conversation lives, and recent stored history.
func (o *Orchestrator) buildSystemPrompt(ctx context.Context, rc tools.RequestContext, authorName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, personaPrompt, constants.DefaultAgentName)

	b.WriteString("\n\n## Context\n")
	fmt.Fprintf(&b, "Current time: %s\n", time.Now().UTC().Format("Monday, January 2, 2006 at 15:04 UTC"))
	fmt.Fprintf(&b, "Requester: %s (id %s)\n", authorName, rc.RequesterID)
	if rc.IsDM() {
		b.WriteString("This is a direct message conversation. Server tools still work if the user names a server you share with them.\n")
	} else {
		fmt.Fprintf(&b, "Server id: %s, channel id: %s\n", rc.OriginGuildID, rc.ChannelID)
	}

	if history := o.recentHistory(ctx, rc.ChannelID); history != "" {
		b.WriteString("\n## Recent conversation\n")
		b.WriteString(history)
	}

	return b.String()
}

// recentHistory renders the channel's stored history, oldest first.
// Best-effort: a graph failure degrades to no history, not a failed run.
func (o *Orchestrator) recentHistory(ctx context.Context, channelID string) string {
	if o.graphRepo == nil {
		return ""
	}

	messages, err := o.graphRepo.GetConversationHistory(ctx, channelID, 15)
	if err != nil {
		o.logger.Warn("failed to load conversation history",
			zap.String("channel_id", channelID),
			zap.Error(err))
		return ""
	}
	if len(messages) == 0 {
		return ""
	}

	var b strings.Builder
	for _, m := range messages {
		label := m.AuthorID
		if m.Role == "agent" {
			label = constants.DefaultAgentName
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", m.Timestamp.Format("15:04"), label, m.Content)
	}
	return b.String()
}
