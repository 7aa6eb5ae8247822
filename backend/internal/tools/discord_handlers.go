package tools

import (
	"context"
	"fmt"
	"time"

	"warden/backend/internal/adapter"
)

// RegisterDiscordTools registers all Discord tools against the executor
func RegisterDiscordTools(r *Registry, exec *DiscordExecutor) {
	r.Register(&sendMessageHandler{exec})
	r.Register(&readChannelHistoryHandler{exec})
	r.Register(&getUserInfoHandler{exec})
	r.Register(&getChannelInfoHandler{exec})
	r.Register(&createChannelHandler{exec})
	r.Register(&deleteChannelHandler{exec})
	r.Register(&createRoleHandler{exec})
	r.Register(&deleteRoleHandler{exec})
	r.Register(&kickMemberHandler{exec})
	r.Register(&banMemberHandler{exec})
	r.Register(&timeoutMemberHandler{exec})
	r.Register(&renameGuildHandler{exec})
}

// objectSchema builds the parameters map for a tool definition
func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	if required == nil {
		required = []string{}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func intProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description}
}

// send_message

type sendMessageHandler struct{ exec *DiscordExecutor }

func (h *sendMessageHandler) Definition() adapter.Tool {
	return adapter.Tool{
		Type: "function",
		Function: adapter.FunctionDefinition{
			Name:        ToolSendMessage,
			Description: "Send a message to a Discord channel. Defaults to the current channel.",
			Parameters: objectSchema(map[string]interface{}{
				"content":    stringProp("The message text to send"),
				"channel_id": stringProp("Channel ID to send to (leave empty for current channel)"),
			}, "content"),
		},
	}
}

func (h *sendMessageHandler) Execute(ctx context.Context, rc RequestContext, args map[string]interface{}) *Result {
	content := argString(args, "content")
	if content == "" {
		return Errorf("content is required")
	}
	channelID := argStringDefault(args, "channel_id", rc.ChannelID)

	msgID, err := h.exec.SendMessage(ctx, channelID, content)
	if err != nil {
		return resultFromError(ToolSendMessage, err)
	}
	return &Result{
		Success: true,
		Data:    map[string]interface{}{"message_id": msgID, "channel_id": channelID},
		Message: content,
		Public:  true,
		Acted:   true,
	}
}

// read_channel_history

type readChannelHistoryHandler struct{ exec *DiscordExecutor }

func (h *readChannelHistoryHandler) Definition() adapter.Tool {
	return adapter.Tool{
		Type: "function",
		Function: adapter.FunctionDefinition{
			Name:        ToolReadChannelHistory,
			Description: "Read recent message history from a Discord channel. Use this to see what was discussed.",
			Parameters: objectSchema(map[string]interface{}{
				"channel_id":   stringProp("Discord channel ID to read from (leave empty for current channel)"),
				"limit":        intProp("Number of messages to retrieve (default: 50, max: 100)"),
				"from_user_id": stringProp("Only return messages from this user ID"),
			}),
		},
	}
}

func (h *readChannelHistoryHandler) Execute(ctx context.Context, rc RequestContext, args map[string]interface{}) *Result {
	channelID := argStringDefault(args, "channel_id", rc.ChannelID)
	limit := argInt(args, "limit", 50)
	fromUserID := argString(args, "from_user_id")

	messages, err := h.exec.ReadChannelHistory(ctx, channelID, limit, fromUserID)
	if err != nil {
		return resultFromError(ToolReadChannelHistory, err)
	}
	return &Result{
		Success: true,
		Data:    map[string]interface{}{"messages": messages, "count": len(messages)},
		Message: fmt.Sprintf("Read %d messages from channel %s", len(messages), channelID),
	}
}

// get_user_info

type getUserInfoHandler struct{ exec *DiscordExecutor }

func (h *getUserInfoHandler) Definition() adapter.Tool {
	return adapter.Tool{
		Type: "function",
		Function: adapter.FunctionDefinition{
			Name:        ToolGetUserInfo,
			Description: "Get information about a Discord user including their username and avatar.",
			Parameters: objectSchema(map[string]interface{}{
				"user_id": stringProp("Discord user ID"),
			}, "user_id"),
		},
	}
}

func (h *getUserInfoHandler) Execute(ctx context.Context, rc RequestContext, args map[string]interface{}) *Result {
	userID := argString(args, "user_id")
	if userID == "" {
		return Errorf("user_id is required")
	}
	info, err := h.exec.GetUserInfo(ctx, userID)
	if err != nil {
		return resultFromError(ToolGetUserInfo, err)
	}
	return &Result{Success: true, Data: info}
}

// get_channel_info

type getChannelInfoHandler struct{ exec *DiscordExecutor }

func (h *getChannelInfoHandler) Definition() adapter.Tool {
	return adapter.Tool{
		Type: "function",
		Function: adapter.FunctionDefinition{
			Name:        ToolGetChannelInfo,
			Description: "Get information about a Discord channel including its name and topic.",
			Parameters: objectSchema(map[string]interface{}{
				"channel_id": stringProp("Discord channel ID (leave empty for current channel)"),
			}),
		},
	}
}

func (h *getChannelInfoHandler) Execute(ctx context.Context, rc RequestContext, args map[string]interface{}) *Result {
	channelID := argStringDefault(args, "channel_id", rc.ChannelID)
	info, err := h.exec.GetChannelInfo(ctx, channelID)
	if err != nil {
		return resultFromError(ToolGetChannelInfo, err)
	}
	return &Result{Success: true, Data: info}
}

// create_channel

type createChannelHandler struct{ exec *DiscordExecutor }

func (h *createChannelHandler) Definition() adapter.Tool {
	return adapter.Tool{
		Type: "function",
		Function: adapter.FunctionDefinition{
			Name:        ToolCreateChannel,
			Description: "Create a new text channel in the server. Requires the ManageChannels permission.",
			Parameters: objectSchema(map[string]interface{}{
				"name":     stringProp("Name for the new channel"),
				"topic":    stringProp("Optional channel topic"),
				"guild_id": stringProp("Target server ID (leave empty for current server)"),
			}, "name"),
		},
	}
}

func (h *createChannelHandler) Execute(ctx context.Context, rc RequestContext, args map[string]interface{}) *Result {
	name := argString(args, "name")
	if name == "" {
		return Errorf("name is required")
	}
	guildID := TargetGuild(rc, args)

	info, err := h.exec.CreateChannel(ctx, guildID, name, argString(args, "topic"))
	if err != nil {
		return resultFromError(ToolCreateChannel, err)
	}
	return &Result{
		Success: true,
		Data:    info,
		Message: fmt.Sprintf("Created channel #%s", info.Name),
		Acted:   true,
	}
}

// delete_channel (destructive)

type deleteChannelHandler struct{ exec *DiscordExecutor }

func (h *deleteChannelHandler) Definition() adapter.Tool {
	return adapter.Tool{
		Type: "function",
		Function: adapter.FunctionDefinition{
			Name:        ToolDeleteChannel,
			Description: "Permanently delete a channel from the server. Irreversible; the user will be asked to confirm.",
			Parameters: objectSchema(map[string]interface{}{
				"channel_id": stringProp("ID of the channel to delete"),
			}, "channel_id"),
		},
	}
}

func (h *deleteChannelHandler) Execute(ctx context.Context, rc RequestContext, args map[string]interface{}) *Result {
	channelID := argString(args, "channel_id")
	if channelID == "" {
		return Errorf("channel_id is required")
	}
	if err := h.exec.DeleteChannel(ctx, channelID); err != nil {
		return resultFromError(ToolDeleteChannel, err)
	}
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Deleted channel %s", channelID),
		Acted:   true,
	}
}

// create_role

type createRoleHandler struct{ exec *DiscordExecutor }

func (h *createRoleHandler) Definition() adapter.Tool {
	return adapter.Tool{
		Type: "function",
		Function: adapter.FunctionDefinition{
			Name:        ToolCreateRole,
			Description: "Create a new role in the server. Requires the ManageRoles permission.",
			Parameters: objectSchema(map[string]interface{}{
				"name":     stringProp("Name for the new role"),
				"guild_id": stringProp("Target server ID (leave empty for current server)"),
			}, "name"),
		},
	}
}

func (h *createRoleHandler) Execute(ctx context.Context, rc RequestContext, args map[string]interface{}) *Result {
	name := argString(args, "name")
	if name == "" {
		return Errorf("name is required")
	}
	roleID, err := h.exec.CreateRole(ctx, TargetGuild(rc, args), name)
	if err != nil {
		return resultFromError(ToolCreateRole, err)
	}
	return &Result{
		Success: true,
		Data:    map[string]interface{}{"role_id": roleID},
		Message: fmt.Sprintf("Created role %s", name),
		Acted:   true,
	}
}

// delete_role (destructive)

type deleteRoleHandler struct{ exec *DiscordExecutor }

func (h *deleteRoleHandler) Definition() adapter.Tool {
	return adapter.Tool{
		Type: "function",
		Function: adapter.FunctionDefinition{
			Name:        ToolDeleteRole,
			Description: "Permanently delete a role from the server. Irreversible; the user will be asked to confirm.",
			Parameters: objectSchema(map[string]interface{}{
				"role_id":  stringProp("ID of the role to delete"),
				"guild_id": stringProp("Target server ID (leave empty for current server)"),
			}, "role_id"),
		},
	}
}

func (h *deleteRoleHandler) Execute(ctx context.Context, rc RequestContext, args map[string]interface{}) *Result {
	roleID := argString(args, "role_id")
	if roleID == "" {
		return Errorf("role_id is required")
	}
	if err := h.exec.DeleteRole(ctx, TargetGuild(rc, args), roleID); err != nil {
		return resultFromError(ToolDeleteRole, err)
	}
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Deleted role %s", roleID),
		Acted:   true,
	}
}

// kick_member (destructive)

type kickMemberHandler struct{ exec *DiscordExecutor }

func (h *kickMemberHandler) Definition() adapter.Tool {
	return adapter.Tool{
		Type: "function",
		Function: adapter.FunctionDefinition{
			Name:        ToolKickMember,
			Description: "Kick a member from the server. They can rejoin with a new invite. The user will be asked to confirm.",
			Parameters: objectSchema(map[string]interface{}{
				"user_id":  stringProp("ID of the member to kick"),
				"reason":   stringProp("Reason recorded in the audit log"),
				"guild_id": stringProp("Target server ID (leave empty for current server)"),
			}, "user_id"),
		},
	}
}

func (h *kickMemberHandler) Execute(ctx context.Context, rc RequestContext, args map[string]interface{}) *Result {
	userID := argString(args, "user_id")
	if userID == "" {
		return Errorf("user_id is required")
	}
	if err := h.exec.KickMember(ctx, TargetGuild(rc, args), userID, argString(args, "reason")); err != nil {
		return resultFromError(ToolKickMember, err)
	}
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Kicked member %s", userID),
		Acted:   true,
	}
}

// ban_member (destructive)

type banMemberHandler struct{ exec *DiscordExecutor }

func (h *banMemberHandler) Definition() adapter.Tool {
	return adapter.Tool{
		Type: "function",
		Function: adapter.FunctionDefinition{
			Name:        ToolBanMember,
			Description: "Ban a member from the server. Irreversible without an explicit unban; the user will be asked to confirm.",
			Parameters: objectSchema(map[string]interface{}{
				"user_id":             stringProp("ID of the member to ban"),
				"reason":              stringProp("Reason recorded in the audit log"),
				"delete_message_days": intProp("Days of the member's messages to delete (0-7, default 0)"),
				"guild_id":            stringProp("Target server ID (leave empty for current server)"),
			}, "user_id"),
		},
	}
}

func (h *banMemberHandler) Execute(ctx context.Context, rc RequestContext, args map[string]interface{}) *Result {
	userID := argString(args, "user_id")
	if userID == "" {
		return Errorf("user_id is required")
	}
	err := h.exec.BanMember(ctx, TargetGuild(rc, args), userID,
		argString(args, "reason"), argInt(args, "delete_message_days", 0))
	if err != nil {
		return resultFromError(ToolBanMember, err)
	}
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Banned member %s", userID),
		Acted:   true,
	}
}

// timeout_member

type timeoutMemberHandler struct{ exec *DiscordExecutor }

func (h *timeoutMemberHandler) Definition() adapter.Tool {
	return adapter.Tool{
		Type: "function",
		Function: adapter.FunctionDefinition{
			Name:        ToolTimeoutMember,
			Description: "Temporarily mute a member (Discord timeout). Requires the ModerateMembers permission.",
			Parameters: objectSchema(map[string]interface{}{
				"user_id":  stringProp("ID of the member to timeout"),
				"minutes":  intProp("Timeout duration in minutes (default: 10, max: 40320)"),
				"guild_id": stringProp("Target server ID (leave empty for current server)"),
			}, "user_id"),
		},
	}
}

func (h *timeoutMemberHandler) Execute(ctx context.Context, rc RequestContext, args map[string]interface{}) *Result {
	userID := argString(args, "user_id")
	if userID == "" {
		return Errorf("user_id is required")
	}
	minutes := argInt(args, "minutes", 10)
	if minutes < 1 {
		minutes = 1
	}
	// Discord caps timeouts at 28 days.
	if minutes > 40320 {
		minutes = 40320
	}
	err := h.exec.TimeoutMember(ctx, TargetGuild(rc, args), userID, time.Duration(minutes)*time.Minute)
	if err != nil {
		return resultFromError(ToolTimeoutMember, err)
	}
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Timed out member %s for %d minutes", userID, minutes),
		Acted:   true,
	}
}

// rename_guild (destructive)

type renameGuildHandler struct{ exec *DiscordExecutor }

func (h *renameGuildHandler) Definition() adapter.Tool {
	return adapter.Tool{
		Type: "function",
		Function: adapter.FunctionDefinition{
			Name:        ToolRenameGuild,
			Description: "Rename the server. High-impact; the user will be asked to confirm.",
			Parameters: objectSchema(map[string]interface{}{
				"name":     stringProp("New server name"),
				"guild_id": stringProp("Target server ID (leave empty for current server)"),
			}, "name"),
		},
	}
}

func (h *renameGuildHandler) Execute(ctx context.Context, rc RequestContext, args map[string]interface{}) *Result {
	name := argString(args, "name")
	if name == "" {
		return Errorf("name is required")
	}
	if err := h.exec.RenameGuild(ctx, TargetGuild(rc, args), name); err != nil {
		return resultFromError(ToolRenameGuild, err)
	}
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Renamed server to %s", name),
		Acted:   true,
	}
}
