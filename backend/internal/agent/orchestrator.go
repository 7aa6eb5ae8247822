package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"warden/backend/internal/adapter"
	"warden/backend/internal/confirm"
	"warden/backend/internal/constants"
	"warden/backend/internal/graph"
	"warden/backend/internal/tools"
	"warden/backend/pkg/logger"
)

// LLM is the completion surface the orchestrator depends on.
type LLM interface {
	Complete(ctx context.Context, conversation []adapter.Message, catalog []adapter.Tool) (*adapter.Completion, error)
}

// ToolRunner is the registry surface the orchestrator depends on.
type ToolRunner interface {
	Definitions() []adapter.Tool
	Dispatch(ctx context.Context, rc tools.RequestContext, name string, args map[string]interface{}) *tools.Result
}

// Confirmer holds destructive batches for user approval.
type Confirmer interface {
	Request(rc tools.RequestContext, actions []confirm.Action) *confirm.Pending
	Summarize(p *confirm.Pending) string
}

// Orchestrator runs the completion loop: it feeds the conversation to the
// model, executes the tool calls it issues, appends their results, and
// repeats until the model finalizes, a destructive batch defers to
// confirmation, or a cap is hit.
type Orchestrator struct {
	llm       LLM
	registry  ToolRunner
	confirmer Confirmer
	graphRepo *graph.Repository
	logger    *zap.Logger

	// sleep is swappable so rate-limit waits are instant in tests
	sleep func(time.Duration)
}

// NewOrchestrator creates the agent orchestrator. graphRepo may be nil;
// the system prompt then carries no stored history.
func NewOrchestrator(llm LLM, registry ToolRunner, confirmer Confirmer, graphRepo *graph.Repository) *Orchestrator {
	return &Orchestrator{
		llm:       llm,
		registry:  registry,
		confirmer: confirmer,
		graphRepo: graphRepo,
		logger:    logger.Get(),
		sleep:     time.Sleep,
	}
}

// Respond handles one incoming user message end to end and returns the
// terminal outcome. onActed, if non-nil, fires when a state-changing tool
// runs (used to stop the typing indicator early). It never panics; a
// panic inside the loop becomes OutcomeFailed.
func (o *Orchestrator) Respond(ctx context.Context, rc tools.RequestContext, authorName, content string, onActed func()) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("agent run panicked",
				zap.Any("panic", r),
				zap.String("requester_id", rc.RequesterID))
			outcome = Outcome{Kind: OutcomeFailed, Err: fmt.Errorf("agent panic: %v", r)}
		}
	}()

	conv := NewConversation(o.buildSystemPrompt(ctx, rc, authorName))
	conv.AddUser(content)

	return o.run(ctx, rc, conv, onActed)
}

func (o *Orchestrator) run(ctx context.Context, rc tools.RequestContext, conv *Conversation, onActed func()) Outcome {
	acted := false
	publicSent := false

	// Formatted search results are kept so a model that goes quiet after
	// searching still answers with something useful.
	var searchFallback string

	for iteration := 1; iteration <= constants.MaxLoopIterations; iteration++ {
		o.logger.Debug("requesting completion",
			zap.Int("iteration", iteration),
			zap.Int("turns", conv.Len()))

		completion, err := o.llm.Complete(ctx, conv.Messages(), o.registry.Definitions())
		if err != nil {
			o.logger.Error("completion failed",
				zap.Int("iteration", iteration),
				zap.Error(err))
			return Outcome{Kind: OutcomeFailed, Acted: acted, Err: err}
		}

		if len(completion.ToolCalls) == 0 {
			content := strings.TrimSpace(completion.Content)
			if content == "" && !publicSent {
				content = searchFallback
			}
			return Outcome{
				Kind:          OutcomeFinalized,
				Content:       content,
				SearchResults: searchFallback,
				Acted:         acted,
			}
		}

		conv.AddAssistant(completion)

		// A batch with any destructive call defers entirely. Executing the
		// harmless part first would leave the model's plan half-applied if
		// the user cancels.
		if containsDestructive(completion.ToolCalls) {
			actions := make([]confirm.Action, 0, len(completion.ToolCalls))
			for _, call := range completion.ToolCalls {
				actions = append(actions, confirm.Action{Tool: call.Name, Args: call.Arguments})
			}
			pending := o.confirmer.Request(rc, actions)

			o.logger.Info("run deferred to confirmation",
				zap.String("confirmation_id", pending.ID),
				zap.Int("actions", len(actions)),
				zap.Int("iteration", iteration))

			return Outcome{
				Kind:           OutcomeDeferred,
				ConfirmationID: pending.ID,
				Prompt:         o.confirmer.Summarize(pending),
				Acted:          acted,
			}
		}

		for _, call := range completion.ToolCalls {
			res := o.dispatchWithRetry(ctx, rc, call)
			if res.Acted {
				acted = true
				if onActed != nil {
					onActed()
				}
			}
			if res.Public {
				publicSent = true
			}
			if call.Name == tools.ToolWebSearch && res.Success && res.Message != "" {
				searchFallback = res.Message
			}
			conv.AddToolResult(call.ID, res.Payload())
		}
	}

	o.logger.Warn("iteration cap reached",
		zap.String("requester_id", rc.RequesterID),
		zap.Int("max_iterations", constants.MaxLoopIterations))
	return Outcome{Kind: OutcomeIterationsExceeded, Acted: acted}
}

// dispatchWithRetry executes one tool call, waiting out rate limits up to
// the retry cap. The wait is the signaled retry-after plus a small margin.
func (o *Orchestrator) dispatchWithRetry(ctx context.Context, rc tools.RequestContext, call adapter.ToolCall) *tools.Result {
	res := o.registry.Dispatch(ctx, rc, call.Name, call.Arguments)

	for attempt := 1; attempt <= constants.MaxRateLimitRetries && res.RetryAfter > 0; attempt++ {
		wait := time.Duration(res.RetryAfter*float64(time.Second)) + constants.RateLimitRetryMargin
		o.logger.Warn("tool rate limited, retrying",
			zap.String("tool", call.Name),
			zap.Duration("wait", wait),
			zap.Int("attempt", attempt))
		o.sleep(wait)
		res = o.registry.Dispatch(ctx, rc, call.Name, call.Arguments)
	}

	return res
}

func containsDestructive(calls []adapter.ToolCall) bool {
	for _, call := range calls {
		if tools.IsDestructive(call.Name) {
			return true
		}
	}
	return false
}
