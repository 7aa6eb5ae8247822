package tools

// destructiveActions is the closed set of tools whose effect is
// irreversible or high-impact at server scope. Calls to these never execute
// directly; the orchestrator routes them through the confirmation workflow.
var destructiveActions = map[string]struct{}{
	ToolDeleteChannel: {},
	ToolDeleteRole:    {},
	ToolKickMember:    {},
	ToolBanMember:     {},
	ToolRenameGuild:   {},
}

// IsDestructive reports whether a tool name is in the destructive action
// set. Pure membership test, no side effects.
func IsDestructive(name string) bool {
	_, ok := destructiveActions[name]
	return ok
}
