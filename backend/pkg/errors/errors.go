package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeDiscord represents Discord-related errors
	ErrorTypeDiscord ErrorType = "discord"
	// ErrorTypeAuthorization represents permission/membership denials
	ErrorTypeAuthorization ErrorType = "authorization"
	// ErrorTypeAgent represents agent/LLM-related errors
	ErrorTypeAgent ErrorType = "agent"
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeTool represents tool execution errors
	ErrorTypeTool ErrorType = "tool"
	// ErrorTypeConfirmation represents confirmation workflow errors
	ErrorTypeConfirmation ErrorType = "confirmation"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// Denial codes surfaced to the model as structured tool results
const (
	CodeGuildNotFound    = "GUILD_NOT_FOUND"
	CodeNotAMember       = "NOT_A_MEMBER"
	CodePermissionDenied = "PERMISSION_DENIED"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// ErrType returns the error's category. Promoted to every error type
// embedding BaseError, which is what IsErrorType matches on.
func (e *BaseError) ErrType() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Discord Errors

// ErrDiscordSessionUnavailable is returned when the Discord session is not available
var ErrDiscordSessionUnavailable = NewBaseError(ErrorTypeDiscord, "Discord session not available", nil)

// ErrDiscordChannelNotFound is returned when a Discord channel cannot be found
type ErrDiscordChannelNotFound struct {
	*BaseError
	ChannelID string
}

func NewDiscordChannelNotFound(channelID string) *ErrDiscordChannelNotFound {
	return &ErrDiscordChannelNotFound{
		BaseError: NewBaseError(ErrorTypeDiscord, fmt.Sprintf("channel not found: %s", channelID), nil),
		ChannelID: channelID,
	}
}

// ErrDiscordUserNotFound is returned when a Discord user cannot be found
type ErrDiscordUserNotFound struct {
	*BaseError
	UserID string
}

func NewDiscordUserNotFound(userID string) *ErrDiscordUserNotFound {
	return &ErrDiscordUserNotFound{
		BaseError: NewBaseError(ErrorTypeDiscord, fmt.Sprintf("user not found: %s", userID), nil),
		UserID:    userID,
	}
}

// Authorization Errors

// ErrGuildNotFound is returned when the target guild does not exist or the
// bot is not a member of it
type ErrGuildNotFound struct {
	*BaseError
	GuildID string
}

func NewGuildNotFound(guildID string) *ErrGuildNotFound {
	return &ErrGuildNotFound{
		BaseError: NewBaseError(ErrorTypeAuthorization, fmt.Sprintf("guild not found: %s", guildID), nil),
		GuildID:   guildID,
	}
}

// Agent Errors

// ErrAgentLLMFailed is returned when an LLM request fails
type ErrAgentLLMFailed struct {
	*BaseError
	Model    string
	Attempts int
}

func NewAgentLLMFailed(model string, attempts int, err error) *ErrAgentLLMFailed {
	return &ErrAgentLLMFailed{
		BaseError: NewBaseError(ErrorTypeAgent, fmt.Sprintf("LLM request failed after %d attempts", attempts), err),
		Model:     model,
		Attempts:  attempts,
	}
}

// ErrAgentNoResponse is returned when the LLM returns no choices
var ErrAgentNoResponse = NewBaseError(ErrorTypeAgent, "no response from LLM", nil)

// Tool Errors

// ErrToolNotFound is returned when a requested tool is not registered
type ErrToolNotFound struct {
	*BaseError
	ToolName string
}

func NewToolNotFound(toolName string) *ErrToolNotFound {
	return &ErrToolNotFound{
		BaseError: NewBaseError(ErrorTypeTool, fmt.Sprintf("unknown tool: %s", toolName), nil),
		ToolName:  toolName,
	}
}

// ErrToolRateLimited is returned when a collaborator signals a rate limit
type ErrToolRateLimited struct {
	*BaseError
	ToolName   string
	RetryAfter time.Duration
}

func NewToolRateLimited(toolName string, retryAfter time.Duration) *ErrToolRateLimited {
	return &ErrToolRateLimited{
		BaseError:  NewBaseError(ErrorTypeTool, fmt.Sprintf("rate limited: %s", toolName), nil),
		ToolName:   toolName,
		RetryAfter: retryAfter,
	}
}

// Confirmation Errors

// ErrConfirmationExpired is returned when a confirm/cancel interaction
// arrives after the pending entry was removed (expired or already resolved)
var ErrConfirmationExpired = NewBaseError(ErrorTypeConfirmation, "confirmation expired or already resolved", nil)

// ErrNotRequester is returned when someone other than the original requester
// attempts to resolve a confirmation
type ErrNotRequester struct {
	*BaseError
	ConfirmationID string
	ActorID        string
}

func NewNotRequester(confirmationID, actorID string) *ErrNotRequester {
	return &ErrNotRequester{
		BaseError:      NewBaseError(ErrorTypeConfirmation, "only the original requester may resolve this confirmation", nil),
		ConfirmationID: confirmationID,
		ActorID:        actorID,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when the Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	var typed interface{ ErrType() ErrorType }
	if stderrors.As(err, &typed) {
		return typed.ErrType() == errType
	}
	return false
}
