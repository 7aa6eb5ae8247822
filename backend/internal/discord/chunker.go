package discord

import (
	"strings"
	"unicode/utf8"

	"warden/backend/internal/constants"
)

// ChunkMessage splits content into pieces that each fit in one Discord
// message. Cuts prefer the last newline within the final scan window of
// the limit, then the last space, then a hard cut. Separators stay at the
// end of the chunk they close, so joining the chunks reproduces the input
// byte for byte.
func ChunkMessage(content string) []string {
	limit := constants.DiscordMaxMessageLength
	window := constants.ChunkScanWindow

	if content == "" {
		return nil
	}

	var chunks []string
	for len(content) > limit {
		cut := limit
		scanStart := limit - window

		if idx := strings.LastIndexByte(content[scanStart:limit], '\n'); idx >= 0 {
			cut = scanStart + idx + 1
		} else if idx := strings.LastIndexByte(content[scanStart:limit], ' '); idx >= 0 {
			cut = scanStart + idx + 1
		} else {
			// Hard cut: back off to a rune boundary so no character is
			// split across chunks.
			for cut > scanStart && !utf8.RuneStart(content[cut]) {
				cut--
			}
		}

		chunks = append(chunks, content[:cut])
		content = content[cut:]
	}

	return append(chunks, content)
}
