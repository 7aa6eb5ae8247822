package discord

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"warden/backend/internal/agent"
	"warden/backend/internal/confirm"
	"warden/backend/internal/graph"
	"warden/backend/internal/tools"
)

const runTimeout = 5 * time.Minute

// Handler routes Discord gateway events into the agent: message-create
// events start an agent run, and confirmation buttons resolve pending
// destructive batches.
type Handler struct {
	orch      *agent.Orchestrator
	workflow  *confirm.Workflow
	graphRepo *graph.Repository
	sender    *ResponseSender
	logger    *zap.Logger

	// prompts maps confirmation id to the prompt message so expiry can
	// disable its buttons.
	prompts sync.Map // string -> promptRef
}

type promptRef struct {
	channelID string
	messageID string
}

// NewHandler creates the event handler. graphRepo may be nil; message
// logging is then skipped.
func NewHandler(orch *agent.Orchestrator, workflow *confirm.Workflow, graphRepo *graph.Repository, sender *ResponseSender, logger *zap.Logger) *Handler {
	return &Handler{
		orch:      orch,
		workflow:  workflow,
		graphRepo: graphRepo,
		sender:    sender,
		logger:    logger,
	}
}

// HandleMessage processes one message-create event. The bot responds to
// direct messages and to guild messages that mention it; everything else
// is ignored.
func (h *Handler) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	isDM := m.GuildID == ""
	content, mentioned := stripMention(m, s.State.User.ID)
	if !isDM && !mentioned {
		return
	}
	if content == "" {
		return
	}

	h.logger.Info("processing message",
		zap.String("user_id", m.Author.ID),
		zap.String("channel_id", m.ChannelID),
		zap.Bool("is_dm", isDM))

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	rc := tools.RequestContext{
		RequesterID:   m.Author.ID,
		OriginGuildID: m.GuildID,
		ChannelID:     m.ChannelID,
	}

	h.ensureUser(ctx, m.Author.ID, m.Author.Username)
	h.logTurn(ctx, m.Author.ID, m.ChannelID, content, "user")

	typing := StartTyping(s, m.ChannelID, h.logger)
	defer typing.Stop()

	outcome := h.orch.Respond(ctx, rc, m.Author.Username, content, typing.Stop)
	typing.Stop()

	switch outcome.Kind {
	case agent.OutcomeFinalized:
		if outcome.Content == "" {
			// A tool already posted the visible output, or the model chose
			// silence after acting.
			return
		}
		h.logTurn(ctx, s.State.User.ID, m.ChannelID, outcome.Content, "agent")
		if err := h.sender.Send(ctx, m.ChannelID, outcome.Content, outcome.SearchResults); err != nil {
			h.logger.Error("failed to deliver reply", zap.Error(err))
		}

	case agent.OutcomeDeferred:
		h.sendConfirmationPrompt(ctx, s, m.ChannelID, outcome)

	case agent.OutcomeIterationsExceeded:
		h.sender.SendPlain(ctx, m.ChannelID, "I went around in circles on that one and had to stop. Try narrowing down what you want me to do.")

	case agent.OutcomeFailed:
		h.logger.Error("agent run failed",
			zap.String("user_id", m.Author.ID),
			zap.Error(outcome.Err))
		h.sender.SendPlain(ctx, m.ChannelID, "Something went wrong on my end. Give it another try in a moment.")
	}
}

// sendConfirmationPrompt posts the action summary with confirm/cancel
// buttons and remembers the message for expiry cleanup.
func (h *Handler) sendConfirmationPrompt(ctx context.Context, s *discordgo.Session, channelID string, outcome agent.Outcome) {
	msg, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: outcome.Prompt,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Confirm",
						Style:    discordgo.DangerButton,
						CustomID: "confirm:" + outcome.ConfirmationID,
					},
					discordgo.Button{
						Label:    "Cancel",
						Style:    discordgo.SecondaryButton,
						CustomID: "cancel:" + outcome.ConfirmationID,
					},
				},
			},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		h.logger.Error("failed to send confirmation prompt",
			zap.String("confirmation_id", outcome.ConfirmationID),
			zap.Error(err))
		return
	}

	h.prompts.Store(outcome.ConfirmationID, promptRef{channelID: channelID, messageID: msg.ID})
}

// OnConfirmationExpired disables the prompt's buttons once the pending
// entry times out. Wired as the store's expiry callback.
func (h *Handler) OnConfirmationExpired(s *discordgo.Session) func(confirm.Pending) {
	return func(p confirm.Pending) {
		ref, ok := h.takePrompt(p.ID)
		if !ok {
			return
		}

		content := "⏱️ Confirmation expired. Nothing was done."
		empty := []discordgo.MessageComponent{}
		_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel:    ref.channelID,
			ID:         ref.messageID,
			Content:    &content,
			Components: &empty,
		})
		if err != nil {
			h.logger.Warn("failed to disable expired confirmation prompt",
				zap.String("confirmation_id", p.ID),
				zap.Error(err))
		}
	}
}

func (h *Handler) takePrompt(confirmationID string) (promptRef, bool) {
	v, ok := h.prompts.LoadAndDelete(confirmationID)
	if !ok {
		return promptRef{}, false
	}
	return v.(promptRef), true
}

// ensureUser upserts the author's node so their current username is on
// record, best-effort.
func (h *Handler) ensureUser(ctx context.Context, userID, username string) {
	if h.graphRepo == nil {
		return
	}
	if _, err := h.graphRepo.GetOrCreateUser(ctx, userID, username); err != nil {
		h.logger.Warn("failed to upsert user",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}

// logTurn records a conversation turn in the graph, best-effort.
func (h *Handler) logTurn(ctx context.Context, userID, channelID, content, role string) {
	if h.graphRepo == nil {
		return
	}
	if err := h.graphRepo.LogMessage(ctx, userID, channelID, content, role); err != nil {
		h.logger.Warn("failed to log message",
			zap.String("channel_id", channelID),
			zap.Error(err))
	}
}

// stripMention reports whether the message addresses the bot and returns
// the content with a leading mention removed.
func stripMention(m *discordgo.MessageCreate, botID string) (string, bool) {
	mentioned := false
	for _, u := range m.Mentions {
		if u.ID == botID {
			mentioned = true
			break
		}
	}

	content := strings.TrimSpace(m.Content)
	for _, prefix := range []string{"<@" + botID + ">", "<@!" + botID + ">"} {
		if strings.HasPrefix(content, prefix) {
			mentioned = true
			content = strings.TrimSpace(strings.TrimPrefix(content, prefix))
		}
	}

	return content, mentioned
}
