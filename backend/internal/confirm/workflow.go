package confirm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"warden/backend/internal/tools"
)

// Dispatcher executes a tool call. Satisfied by tools.Registry.
type Dispatcher interface {
	Dispatch(ctx context.Context, rc tools.RequestContext, name string, args map[string]interface{}) *tools.Result
}

// Workflow ties the pending store to tool execution: it creates
// confirmations for destructive batches and runs or discards them when
// the requester decides.
type Workflow struct {
	store      *Store
	dispatcher Dispatcher
	logger     *zap.Logger
}

func NewWorkflow(store *Store, dispatcher Dispatcher, logger *zap.Logger) *Workflow {
	return &Workflow{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Request creates a pending confirmation for the batch and returns it.
func (w *Workflow) Request(rc tools.RequestContext, actions []Action) *Pending {
	return w.store.Create(rc, actions)
}

// Summarize renders a human-readable description of a pending batch for
// the confirmation prompt.
func (w *Workflow) Summarize(p *Pending) string {
	var b strings.Builder
	if len(p.Actions) == 1 {
		b.WriteString("This action needs your confirmation:\n")
	} else {
		fmt.Fprintf(&b, "These %d actions need your confirmation:\n", len(p.Actions))
	}
	for _, a := range p.Actions {
		fmt.Fprintf(&b, "• %s", describeAction(a))
		b.WriteString("\n")
	}
	b.WriteString("\nExpires in 60 seconds.")
	return b.String()
}

// Confirm resolves the confirmation and executes its actions in the order
// they were proposed. Execution is best-effort: a failed action is
// reported and the remaining actions still run. The returned report
// covers every action.
func (w *Workflow) Confirm(ctx context.Context, id, actorID string) (string, error) {
	p, err := w.store.Resolve(id, actorID)
	if err != nil {
		return "", err
	}

	w.logger.Info("confirmation approved",
		zap.String("confirmation_id", id),
		zap.String("actor_id", actorID))

	var lines []string
	failures := 0
	for _, a := range p.Actions {
		res := w.dispatcher.Dispatch(ctx, p.Request, a.Tool, a.Args)
		if res.Success {
			msg := res.Message
			if msg == "" {
				msg = "done"
			}
			lines = append(lines, fmt.Sprintf("✅ %s: %s", describeAction(a), msg))
		} else {
			failures++
			lines = append(lines, fmt.Sprintf("❌ %s: %s", describeAction(a), res.Error))
		}
	}

	header := "Confirmed."
	if failures > 0 {
		header = fmt.Sprintf("Confirmed, but %d of %d actions failed.", failures, len(p.Actions))
	}
	return header + "\n" + strings.Join(lines, "\n"), nil
}

// Cancel resolves the confirmation without executing anything.
func (w *Workflow) Cancel(id, actorID string) error {
	_, err := w.store.Resolve(id, actorID)
	if err != nil {
		return err
	}
	w.logger.Info("confirmation cancelled",
		zap.String("confirmation_id", id),
		zap.String("actor_id", actorID))
	return nil
}

func describeAction(a Action) string {
	switch a.Tool {
	case tools.ToolDeleteChannel:
		return fmt.Sprintf("delete channel %s", argOr(a.Args, "channel_id", "?"))
	case tools.ToolDeleteRole:
		return fmt.Sprintf("delete role %s", argOr(a.Args, "role_id", "?"))
	case tools.ToolKickMember:
		return fmt.Sprintf("kick member %s", argOr(a.Args, "user_id", "?"))
	case tools.ToolBanMember:
		return fmt.Sprintf("ban member %s", argOr(a.Args, "user_id", "?"))
	case tools.ToolRenameGuild:
		return fmt.Sprintf("rename server to %q", argOr(a.Args, "name", "?"))
	default:
		return a.Tool
	}
}

func argOr(args map[string]interface{}, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
