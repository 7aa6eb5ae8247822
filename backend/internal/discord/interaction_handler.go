package discord

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	apperrors "warden/backend/pkg/errors"
)

const confirmTimeout = 2 * time.Minute

// interactionSession is the slice of the Discord session the confirmation
// buttons need. Narrowed so resolution ordering is testable.
type interactionSession interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// HandleInteraction resolves confirm/cancel button presses. Anyone can
// press the buttons; the store rejects everyone but the original
// requester.
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.handleComponent(s, i)
}

func (h *Handler) handleComponent(s interactionSession, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	customID := i.MessageComponentData().CustomID
	action, confirmationID, ok := strings.Cut(customID, ":")
	if !ok || (action != "confirm" && action != "cancel") {
		return
	}

	actorID := interactionUserID(i)
	if actorID == "" {
		return
	}

	h.logger.Info("confirmation interaction",
		zap.String("confirmation_id", confirmationID),
		zap.String("action", action),
		zap.String("actor_id", actorID))

	ctx, cancel := context.WithTimeout(context.Background(), confirmTimeout)
	defer cancel()

	switch action {
	case "confirm":
		// The batch can issue several REST calls and outlive Discord's 3s
		// acknowledgement window, so ack before executing anything.
		err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		})
		if err != nil {
			h.logger.Error("failed to acknowledge confirmation", zap.Error(err))
			return
		}

		report, err := h.workflow.Confirm(ctx, confirmationID, actorID)
		if err != nil {
			h.followupResolutionError(s, i, err)
			return
		}
		h.prompts.Delete(confirmationID)
		h.editPrompt(s, i, report)

	case "cancel":
		if err := h.workflow.Cancel(confirmationID, actorID); err != nil {
			h.respondResolutionError(s, i, err)
			return
		}
		h.prompts.Delete(confirmationID)
		h.updatePrompt(s, i, "🚫 Cancelled. Nothing was done.")
	}
}

// editPrompt replaces the deferred prompt message with the resolution text
// and removes the buttons. Overflow beyond one message goes out as plain
// sends.
func (h *Handler) editPrompt(s interactionSession, i *discordgo.InteractionCreate, content string) {
	chunks := ChunkMessage(content)
	if len(chunks) == 0 {
		chunks = []string{"Done."}
	}

	empty := []discordgo.MessageComponent{}
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content:    &chunks[0],
		Components: &empty,
	})
	if err != nil {
		h.logger.Error("failed to update confirmation prompt", zap.Error(err))
		return
	}

	h.sendOverflow(s, i.ChannelID, chunks[1:])
}

// updatePrompt answers an unacknowledged interaction by rewriting the
// prompt message in place. Used for cancel, which resolves instantly.
func (h *Handler) updatePrompt(s interactionSession, i *discordgo.InteractionCreate, content string) {
	chunks := ChunkMessage(content)
	if len(chunks) == 0 {
		chunks = []string{"Done."}
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    chunks[0],
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		h.logger.Error("failed to update confirmation prompt", zap.Error(err))
		return
	}

	h.sendOverflow(s, i.ChannelID, chunks[1:])
}

func (h *Handler) sendOverflow(s interactionSession, channelID string, chunks []string) {
	for _, chunk := range chunks {
		if _, err := s.ChannelMessageSend(channelID, chunk); err != nil {
			h.logger.Error("failed to send confirmation report chunk", zap.Error(err))
			return
		}
	}
}

// respondResolutionError answers the presser privately without touching
// the prompt message.
func (h *Handler) respondResolutionError(s interactionSession, i *discordgo.InteractionCreate, err error) {
	respErr := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: h.resolutionErrorText(err),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if respErr != nil {
		h.logger.Warn("failed to send ephemeral response", zap.Error(respErr))
	}
}

// followupResolutionError is the post-acknowledgement variant: the
// interaction was already deferred, so the private answer goes out as an
// ephemeral follow-up.
func (h *Handler) followupResolutionError(s interactionSession, i *discordgo.InteractionCreate, err error) {
	_, respErr := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: h.resolutionErrorText(err),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if respErr != nil {
		h.logger.Warn("failed to send ephemeral follow-up", zap.Error(respErr))
	}
}

func (h *Handler) resolutionErrorText(err error) string {
	switch {
	case apperrors.IsErrorType(err, apperrors.ErrorTypeConfirmation):
		var notRequester *apperrors.ErrNotRequester
		if errors.As(err, &notRequester) {
			return "Only the person who asked for this can confirm or cancel it."
		}
		return "That confirmation has expired or was already resolved."
	default:
		h.logger.Error("confirmation resolution failed", zap.Error(err))
		return "Something went wrong resolving that confirmation."
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
