package confirm

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"warden/backend/internal/tools"
)

// fakeDispatcher records execution order and fails the tools it is told to.
type fakeDispatcher struct {
	calls []string
	fail  map[string]bool
}

func (f *fakeDispatcher) Dispatch(_ context.Context, _ tools.RequestContext, name string, _ map[string]interface{}) *tools.Result {
	f.calls = append(f.calls, name)
	if f.fail[name] {
		return &tools.Result{Success: false, Error: "channel not found"}
	}
	return &tools.Result{Success: true, Message: "done", Acted: true}
}

func newTestWorkflow(dispatcher Dispatcher) (*Workflow, *Store) {
	store := NewStore(60*time.Second, newFakeClock(), nil, zap.NewNop())
	return NewWorkflow(store, dispatcher, zap.NewNop()), store
}

func TestConfirmExecutesInOrder(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	wf, _ := newTestWorkflow(dispatcher)
	p := wf.Request(testStoreRC(), testActions())

	report, err := wf.Confirm(context.Background(), p.ID, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{tools.ToolDeleteChannel, tools.ToolKickMember}
	if len(dispatcher.calls) != len(want) {
		t.Fatalf("expected %d executions, got %v", len(want), dispatcher.calls)
	}
	for i, name := range want {
		if dispatcher.calls[i] != name {
			t.Errorf("execution order broken at %d: got %s, want %s", i, dispatcher.calls[i], name)
		}
	}
	if !strings.HasPrefix(report, "Confirmed.") {
		t.Errorf("unexpected report header: %q", report)
	}
	if strings.Count(report, "✅") != 2 {
		t.Errorf("expected 2 success lines, report: %q", report)
	}
}

func TestConfirmReportsPartialFailure(t *testing.T) {
	dispatcher := &fakeDispatcher{fail: map[string]bool{tools.ToolDeleteChannel: true}}
	wf, _ := newTestWorkflow(dispatcher)
	p := wf.Request(testStoreRC(), testActions())

	report, err := wf.Confirm(context.Background(), p.ID, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Failure of the first action must not stop the second.
	if len(dispatcher.calls) != 2 {
		t.Fatalf("expected both actions attempted, got %v", dispatcher.calls)
	}
	if !strings.Contains(report, "1 of 2 actions failed") {
		t.Errorf("expected partial-failure header, got %q", report)
	}
	if !strings.Contains(report, "❌") || !strings.Contains(report, "✅") {
		t.Errorf("expected mixed result lines, got %q", report)
	}
}

func TestCancelExecutesNothing(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	wf, store := newTestWorkflow(dispatcher)
	p := wf.Request(testStoreRC(), testActions())

	if err := wf.Cancel(p.ID, "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dispatcher.calls) != 0 {
		t.Errorf("cancel must not execute actions, ran %v", dispatcher.calls)
	}
	if store.Count() != 0 {
		t.Errorf("expected entry removed on cancel, %d pending", store.Count())
	}
}

func TestConfirmByStrangerLeavesBatchPending(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	wf, store := newTestWorkflow(dispatcher)
	p := wf.Request(testStoreRC(), testActions())

	if _, err := wf.Confirm(context.Background(), p.ID, "intruder"); err == nil {
		t.Fatal("expected error for non-requester")
	}
	if len(dispatcher.calls) != 0 {
		t.Errorf("stranger's confirm must not execute, ran %v", dispatcher.calls)
	}
	if store.Count() != 1 {
		t.Errorf("entry should remain pending, got %d", store.Count())
	}
}

func TestSummarizeDescribesActions(t *testing.T) {
	wf, _ := newTestWorkflow(&fakeDispatcher{})
	p := wf.Request(testStoreRC(), testActions())

	summary := wf.Summarize(p)
	if !strings.Contains(summary, "delete channel c1") {
		t.Errorf("expected delete description, got %q", summary)
	}
	if !strings.Contains(summary, "kick member u2") {
		t.Errorf("expected kick description, got %q", summary)
	}
	if !strings.Contains(summary, "60 seconds") {
		t.Errorf("expected expiry notice, got %q", summary)
	}
}
