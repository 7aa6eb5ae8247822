package discord

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// TypingIndicator keeps Discord's "is typing..." marker alive for a
// channel until stopped. The marker itself times out after about ten
// seconds, so it is re-sent on a ticker. Stop is safe to call from any
// goroutine, any number of times.
type TypingIndicator struct {
	stop chan struct{}
	once sync.Once
}

// StartTyping begins the indicator for a channel and returns its handle.
func StartTyping(s *discordgo.Session, channelID string, logger *zap.Logger) *TypingIndicator {
	t := &TypingIndicator{stop: make(chan struct{})}

	go func() {
		ticker := time.NewTicker(8 * time.Second)
		defer ticker.Stop()

		if err := s.ChannelTyping(channelID); err != nil {
			logger.Debug("typing indicator failed", zap.String("channel_id", channelID), zap.Error(err))
		}

		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				if err := s.ChannelTyping(channelID); err != nil {
					logger.Debug("typing indicator failed", zap.String("channel_id", channelID), zap.Error(err))
				}
			}
		}
	}()

	return t
}

// Stop ends the indicator. Single-fire; later calls are no-ops.
func (t *TypingIndicator) Stop() {
	t.once.Do(func() { close(t.stop) })
}
