package tools

// Discord tool names
const (
	ToolSendMessage        = "send_message"
	ToolReadChannelHistory = "read_channel_history"
	ToolGetUserInfo        = "get_user_info"
	ToolGetChannelInfo     = "get_channel_info"
	ToolCreateChannel      = "create_channel"
	ToolDeleteChannel      = "delete_channel"
	ToolCreateRole         = "create_role"
	ToolDeleteRole         = "delete_role"
	ToolKickMember         = "kick_member"
	ToolBanMember          = "ban_member"
	ToolTimeoutMember      = "timeout_member"
	ToolRenameGuild        = "rename_guild"
)

// Web tool names
const (
	ToolWebSearch    = "web_search"
	ToolFetchWebpage = "fetch_webpage"
)

// Memory tool names
const (
	ToolSaveMemory   = "save_memory"
	ToolSearchMemory = "search_memory"
)
