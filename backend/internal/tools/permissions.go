package tools

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	apperrors "warden/backend/pkg/errors"
	"warden/backend/pkg/logger"
)

// GuildDirectory is the narrow view of live guild state the permission gate
// needs. Implemented over the Discord session; faked in tests.
type GuildDirectory interface {
	// BotInGuild reports whether the bot is a member of the guild.
	BotInGuild(guildID string) bool
	// IsMember reports whether a user is a member of the guild.
	IsMember(ctx context.Context, guildID, userID string) (bool, error)
	// MemberPermissions returns the user's effective permission bits in the guild.
	MemberPermissions(ctx context.Context, guildID, userID string) (int64, error)
	// ChannelGuild returns the id of the guild that owns a channel, or ""
	// for channels outside any guild (DMs).
	ChannelGuild(ctx context.Context, channelID string) (string, error)
}

// capability pairs a human-readable name (surfaced in denial results) with
// its Discord permission bit.
type capability struct {
	Name string
	Bit  int64
}

// toolCapabilities is the static mapping from tool name to the capabilities
// a requester must hold in the target guild. Tools absent from this map
// require membership only.
var toolCapabilities = map[string][]capability{
	ToolCreateChannel: {{"ManageChannels", discordgo.PermissionManageChannels}},
	ToolDeleteChannel: {{"ManageChannels", discordgo.PermissionManageChannels}},
	ToolCreateRole:    {{"ManageRoles", discordgo.PermissionManageRoles}},
	ToolDeleteRole:    {{"ManageRoles", discordgo.PermissionManageRoles}},
	ToolKickMember:    {{"KickMembers", discordgo.PermissionKickMembers}},
	ToolBanMember:     {{"BanMembers", discordgo.PermissionBanMembers}},
	ToolTimeoutMember: {{"ModerateMembers", discordgo.PermissionModerateMembers}},
	ToolRenameGuild:   {{"ManageGuild", discordgo.PermissionManageServer}},
}

// channelTargetedTools act on a channel_id rather than a guild_id. Their
// real authorization target is the channel's owning guild, which must be
// resolved; trusting the origin guild or a guild_id argument would let a
// call reach into a guild the requester was never checked against.
var channelTargetedTools = map[string]struct{}{
	ToolSendMessage:        {},
	ToolReadChannelHistory: {},
	ToolGetChannelInfo:     {},
	ToolDeleteChannel:      {},
}

// guildScopedTools have a guild-scoped effect and therefore pass through the
// gate. Web and memory tools have no guild target and skip it.
var guildScopedTools = map[string]struct{}{
	ToolSendMessage:        {},
	ToolReadChannelHistory: {},
	ToolGetChannelInfo:     {},
	ToolCreateChannel:      {},
	ToolDeleteChannel:      {},
	ToolCreateRole:         {},
	ToolDeleteRole:         {},
	ToolKickMember:         {},
	ToolBanMember:          {},
	ToolTimeoutMember:      {},
	ToolRenameGuild:        {},
}

// Denial is a structured authorization failure. It is surfaced to the model
// as a tool result so the denial can be explained in natural language.
type Denial struct {
	Code    string
	Missing []string
	Detail  string
}

// Result converts the denial into a failed tool result
func (d *Denial) Result() *Result {
	data := map[string]interface{}{"code": d.Code}
	if len(d.Missing) > 0 {
		data["missing_capabilities"] = d.Missing
	}
	return &Result{
		Success: false,
		Error:   d.Code,
		Message: d.Detail,
		Data:    data,
	}
}

// PermissionGate resolves, per tool call, whether the requester may execute
// it in the target guild. Membership and permissions are read from a live
// snapshot fetched inline per call; under concurrent membership changes the
// answer is best-effort, not strongly consistent.
type PermissionGate struct {
	directory GuildDirectory
	logger    *zap.Logger
}

// NewPermissionGate creates a permission gate over the given directory
func NewPermissionGate(directory GuildDirectory) *PermissionGate {
	return &PermissionGate{
		directory: directory,
		logger:    logger.Get(),
	}
}

// TargetGuild resolves the guild a call operates on: an explicit guild_id
// argument wins, otherwise the conversation's origin guild.
func TargetGuild(rc RequestContext, args map[string]interface{}) string {
	if gid, ok := args["guild_id"].(string); ok && gid != "" {
		return gid
	}
	return rc.OriginGuildID
}

// Authorize checks a tool call before dispatch. Returns nil when the call
// may proceed, or a structured denial. The cross-server/DM membership check
// is mandatory and cannot be bypassed by anything in args.
func (g *PermissionGate) Authorize(ctx context.Context, rc RequestContext, toolName string, args map[string]interface{}) *Denial {
	if _, scoped := guildScopedTools[toolName]; !scoped {
		return nil
	}

	targetGuild, denial := g.resolveTargetGuild(ctx, rc, toolName, args)
	if denial != nil {
		return denial
	}
	if targetGuild == "" {
		return &Denial{
			Code:   apperrors.CodeGuildNotFound,
			Detail: "no target guild: this tool needs a guild_id when used from a direct message",
		}
	}

	if !g.directory.BotInGuild(targetGuild) {
		return &Denial{
			Code:   apperrors.CodeGuildNotFound,
			Detail: "target guild not found or bot is not a member of it",
		}
	}

	// Cross-server calls and DM-originated calls require the requester to be
	// a member of the target guild themselves.
	if targetGuild != rc.OriginGuildID || rc.IsDM() {
		member, err := g.directory.IsMember(ctx, targetGuild, rc.RequesterID)
		if err != nil {
			g.logger.Warn("Membership lookup failed",
				zap.String("guild_id", targetGuild),
				zap.String("user_id", rc.RequesterID),
				zap.Error(err),
			)
			return &Denial{
				Code:   apperrors.CodeNotAMember,
				Detail: "could not verify membership in the target server",
			}
		}
		if !member {
			return &Denial{
				Code:   apperrors.CodeNotAMember,
				Detail: "requester is not a member of the target server",
			}
		}
	}

	required := toolCapabilities[toolName]
	if len(required) == 0 {
		return nil
	}

	perms, err := g.directory.MemberPermissions(ctx, targetGuild, rc.RequesterID)
	if err != nil {
		g.logger.Warn("Permission lookup failed",
			zap.String("guild_id", targetGuild),
			zap.String("user_id", rc.RequesterID),
			zap.Error(err),
		)
		missing := make([]string, 0, len(required))
		for _, cap := range required {
			missing = append(missing, cap.Name)
		}
		return &Denial{
			Code:    apperrors.CodePermissionDenied,
			Missing: missing,
			Detail:  "could not verify permissions in the target server",
		}
	}

	var missing []string
	for _, cap := range required {
		if perms&discordgo.PermissionAdministrator != 0 {
			continue
		}
		if perms&cap.Bit == 0 {
			missing = append(missing, cap.Name)
		}
	}
	if len(missing) > 0 {
		return &Denial{
			Code:    apperrors.CodePermissionDenied,
			Missing: missing,
			Detail:  "requester lacks required capabilities in the target server",
		}
	}

	return nil
}

// resolveTargetGuild picks the guild the gate authorizes against. When a
// channel-targeted tool names a channel other than the origin, the
// channel's actual owning guild wins over both the origin guild and any
// guild_id argument.
func (g *PermissionGate) resolveTargetGuild(ctx context.Context, rc RequestContext, toolName string, args map[string]interface{}) (string, *Denial) {
	if _, byChannel := channelTargetedTools[toolName]; byChannel {
		if cid, ok := args["channel_id"].(string); ok && cid != "" && cid != rc.ChannelID {
			guildID, err := g.directory.ChannelGuild(ctx, cid)
			if err != nil {
				g.logger.Warn("Channel guild lookup failed",
					zap.String("channel_id", cid),
					zap.String("tool", toolName),
					zap.Error(err),
				)
				return "", &Denial{
					Code:   apperrors.CodeGuildNotFound,
					Detail: "could not resolve the target channel's server",
				}
			}
			if guildID == "" {
				return "", &Denial{
					Code:   apperrors.CodeGuildNotFound,
					Detail: "target channel does not belong to a server",
				}
			}
			return guildID, nil
		}
	}
	return TargetGuild(rc, args), nil
}
