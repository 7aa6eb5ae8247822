package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"warden/backend/internal/tools"
)

// pasteThreshold is the search-results length above which delivery offers
// a paste link instead of relying on chunked text alone.
const pasteThreshold = 1500

// ResponseSender delivers agent replies: chunked sends, plus an optional
// link button on the first chunk pointing at a paste of long search
// results.
type ResponseSender struct {
	session *discordgo.Session
	paste   *tools.PasteClient
	logger  *zap.Logger
}

// NewResponseSender creates a sender. paste may be nil; the link button is
// then never offered.
func NewResponseSender(session *discordgo.Session, paste *tools.PasteClient, logger *zap.Logger) *ResponseSender {
	return &ResponseSender{
		session: session,
		paste:   paste,
		logger:  logger,
	}
}

// Send delivers content to a channel in order, splitting as needed. When
// searchResults is long, the first chunk carries a link button to a paste
// of the full results; paste failure degrades to a plain send.
func (rs *ResponseSender) Send(ctx context.Context, channelID, content, searchResults string) error {
	chunks := ChunkMessage(content)
	if len(chunks) == 0 {
		return nil
	}

	var components []discordgo.MessageComponent
	if rs.paste != nil && len(searchResults) > pasteThreshold {
		if url, err := rs.paste.Create(ctx, searchResults); err != nil {
			rs.logger.Warn("paste upload failed", zap.Error(err))
		} else {
			components = []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label: "Full search results",
							Style: discordgo.LinkButton,
							URL:   url,
						},
					},
				},
			}
		}
	}

	for i, chunk := range chunks {
		var err error
		if i == 0 && len(components) > 0 {
			_, err = rs.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
				Content:    chunk,
				Components: components,
			}, discordgo.WithContext(ctx))
		} else {
			_, err = rs.session.ChannelMessageSend(channelID, chunk, discordgo.WithContext(ctx))
		}
		if err != nil {
			rs.logger.Error("failed to send response chunk",
				zap.String("channel_id", channelID),
				zap.Int("chunk", i),
				zap.Int("chunks", len(chunks)),
				zap.Error(err))
			return err
		}
	}

	rs.logger.Debug("response delivered",
		zap.String("channel_id", channelID),
		zap.Int("chunks", len(chunks)),
		zap.Int("length", len(content)))
	return nil
}

// SendPlain delivers content with no button, splitting as needed.
func (rs *ResponseSender) SendPlain(ctx context.Context, channelID, content string) error {
	return rs.Send(ctx, channelID, content, "")
}
