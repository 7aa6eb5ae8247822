package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"warden/backend/internal/adapter"
)

type stubHandler struct {
	name   string
	result *Result
	calls  int
}

func (h *stubHandler) Definition() adapter.Tool {
	return adapter.Tool{
		Type: "function",
		Function: adapter.FunctionDefinition{
			Name:       h.name,
			Parameters: objectSchema(map[string]interface{}{}),
		},
	}
}

func (h *stubHandler) Execute(context.Context, RequestContext, map[string]interface{}) *Result {
	h.calls++
	return h.result
}

func newTestRegistry() *Registry {
	return NewRegistry(NewPermissionGate(newFakeDirectory()))
}

func TestDispatchUnknownTool(t *testing.T) {
	r := newTestRegistry()

	res := r.Dispatch(context.Background(), originRC(), "no_such_tool", nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "no_such_tool")
}

func TestDispatchRunsHandler(t *testing.T) {
	r := newTestRegistry()
	h := &stubHandler{name: ToolWebSearch, result: &Result{Success: true, Message: "hit"}}
	r.Register(h)

	res := r.Dispatch(context.Background(), originRC(), ToolWebSearch, map[string]interface{}{})
	assert.True(t, res.Success)
	assert.Equal(t, 1, h.calls)
}

func TestDispatchAppliesGate(t *testing.T) {
	r := newTestRegistry()
	h := &stubHandler{name: ToolBanMember, result: &Result{Success: true}}
	r.Register(h)

	// user-1 lacks BanMembers; the handler must never run.
	res := r.Dispatch(context.Background(), originRC(), ToolBanMember, map[string]interface{}{})
	assert.False(t, res.Success)
	assert.Equal(t, 0, h.calls)
}

func TestDefinitionsKeepRegistrationOrder(t *testing.T) {
	r := newTestRegistry()
	r.Register(&stubHandler{name: "b_tool", result: &Result{Success: true}})
	r.Register(&stubHandler{name: "a_tool", result: &Result{Success: true}})

	defs := r.Definitions()
	if assert.Len(t, defs, 2) {
		assert.Equal(t, "b_tool", defs[0].Function.Name)
		assert.Equal(t, "a_tool", defs[1].Function.Name)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	r := newTestRegistry()
	r.Register(&stubHandler{name: "dup", result: &Result{Success: true}})

	assert.Panics(t, func() {
		r.Register(&stubHandler{name: "dup", result: &Result{Success: true}})
	})
}

func TestDestructiveSetIsClosed(t *testing.T) {
	destructive := []string{ToolDeleteChannel, ToolDeleteRole, ToolKickMember, ToolBanMember, ToolRenameGuild}
	for _, name := range destructive {
		assert.True(t, IsDestructive(name), name)
	}

	safe := []string{ToolSendMessage, ToolCreateChannel, ToolCreateRole, ToolTimeoutMember,
		ToolReadChannelHistory, ToolWebSearch, ToolSaveMemory, "unknown"}
	for _, name := range safe {
		assert.False(t, IsDestructive(name), name)
	}
}
