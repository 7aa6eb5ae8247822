package constants

import "time"

// Agent constants
const (
	// DefaultAgentName is the bot persona used in the system prompt
	DefaultAgentName = "Warden"
)

// Discord constants
const (
	// DiscordMaxMessageLength is the maximum character limit for Discord messages
	DiscordMaxMessageLength = 2000

	// ChunkScanWindow is how far back from the length limit the response
	// splitter searches for a newline or space to cut at
	ChunkScanWindow = 200
)

// Completion loop constants
const (
	// MaxLoopIterations bounds completion round-trips per inbound message.
	// A model that keeps returning tool calls terminates with an
	// iterations-exceeded outcome instead of looping forever.
	MaxLoopIterations = 10

	// MaxRateLimitRetries bounds per-call retries when a tool result signals
	// a rate limit. Retries are accounted separately from loop iterations.
	MaxRateLimitRetries = 3

	// RateLimitRetryMargin is added on top of a tool's suggested retry-after
	// before the call is re-issued.
	RateLimitRetryMargin = 500 * time.Millisecond
)

// Confirmation constants
const (
	// ConfirmationTTL is how long a pending confirmation for destructive
	// actions stays resolvable before it expires.
	ConfirmationTTL = 60 * time.Second
)
