package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	apperrors "warden/backend/pkg/errors"
)

// ChannelMessage is a simplified Discord message for tool results
type ChannelMessage struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	AuthorID  string `json:"author_id"`
	Author    string `json:"author"`
	Timestamp string `json:"timestamp"`
}

// UserInfo is simplified Discord user information
type UserInfo struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	GlobalName    string `json:"global_name,omitempty"`
	Bot           bool   `json:"bot"`
	AvatarURL     string `json:"avatar_url,omitempty"`
}

// ChannelInfo is simplified Discord channel information
type ChannelInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Topic   string `json:"topic,omitempty"`
	Type    string `json:"type"`
	GuildID string `json:"guild_id,omitempty"`
}

// DiscordExecutor wraps the Discord session for tool execution. It also
// implements GuildDirectory for the permission gate.
type DiscordExecutor struct {
	session *discordgo.Session
	logger  *zap.Logger
}

// NewDiscordExecutor creates a new Discord executor
func NewDiscordExecutor(session *discordgo.Session, logger *zap.Logger) *DiscordExecutor {
	return &DiscordExecutor{
		session: session,
		logger:  logger,
	}
}

// BotInGuild reports whether the bot is a member of the guild
func (d *DiscordExecutor) BotInGuild(guildID string) bool {
	if d.session == nil {
		return false
	}
	if g, err := d.session.State.Guild(guildID); err == nil && g != nil {
		return true
	}
	// State may be cold right after connect; fall back to the API.
	g, err := d.session.Guild(guildID)
	return err == nil && g != nil
}

// IsMember reports whether a user is a member of the guild
func (d *DiscordExecutor) IsMember(ctx context.Context, guildID, userID string) (bool, error) {
	if d.session == nil {
		return false, apperrors.ErrDiscordSessionUnavailable
	}
	if m, err := d.session.State.Member(guildID, userID); err == nil && m != nil {
		return true, nil
	}
	m, err := d.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == 404 {
			return false, nil
		}
		return false, fmt.Errorf("failed to fetch member: %w", err)
	}
	return m != nil, nil
}

// ChannelGuild returns the id of the guild owning a channel, or "" for DM
// channels
func (d *DiscordExecutor) ChannelGuild(ctx context.Context, channelID string) (string, error) {
	if d.session == nil {
		return "", apperrors.ErrDiscordSessionUnavailable
	}
	if ch, err := d.session.State.Channel(channelID); err == nil && ch != nil {
		return ch.GuildID, nil
	}
	ch, err := d.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return "", apperrors.NewDiscordChannelNotFound(channelID)
	}
	return ch.GuildID, nil
}

// MemberPermissions computes the user's effective guild-level permission
// bits from their roles. The guild owner holds all permissions.
func (d *DiscordExecutor) MemberPermissions(ctx context.Context, guildID, userID string) (int64, error) {
	if d.session == nil {
		return 0, apperrors.ErrDiscordSessionUnavailable
	}

	guild, err := d.guild(ctx, guildID)
	if err != nil {
		return 0, err
	}
	if guild.OwnerID == userID {
		return discordgo.PermissionAll, nil
	}

	member, err := d.session.State.Member(guildID, userID)
	if err != nil || member == nil {
		member, err = d.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
		if err != nil {
			return 0, fmt.Errorf("failed to fetch member: %w", err)
		}
	}

	memberRoles := make(map[string]struct{}, len(member.Roles))
	for _, rid := range member.Roles {
		memberRoles[rid] = struct{}{}
	}

	var perms int64
	for _, role := range guild.Roles {
		// The @everyone role shares the guild id.
		if role.ID == guildID {
			perms |= role.Permissions
			continue
		}
		if _, ok := memberRoles[role.ID]; ok {
			perms |= role.Permissions
		}
	}
	return perms, nil
}

func (d *DiscordExecutor) guild(ctx context.Context, guildID string) (*discordgo.Guild, error) {
	if g, err := d.session.State.Guild(guildID); err == nil && g != nil && len(g.Roles) > 0 {
		return g, nil
	}
	g, err := d.session.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, apperrors.NewGuildNotFound(guildID)
	}
	if len(g.Roles) == 0 {
		roles, err := d.session.GuildRoles(guildID, discordgo.WithContext(ctx))
		if err == nil {
			g.Roles = roles
		}
	}
	return g, nil
}

// SendMessage sends a message to a channel and returns its id. Sending is
// not idempotent; callers retry only on rate limits, where the original
// request was rejected before landing.
func (d *DiscordExecutor) SendMessage(ctx context.Context, channelID, content string) (string, error) {
	if d.session == nil {
		return "", apperrors.ErrDiscordSessionUnavailable
	}
	msg, err := d.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

// ReadChannelHistory reads recent messages from a channel, oldest first
func (d *DiscordExecutor) ReadChannelHistory(ctx context.Context, channelID string, limit int, fromUserID string) ([]ChannelMessage, error) {
	if d.session == nil {
		return nil, apperrors.ErrDiscordSessionUnavailable
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	messages, err := d.session.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get channel messages: %w", err)
	}

	var result []ChannelMessage
	for _, msg := range messages {
		if fromUserID != "" && msg.Author.ID != fromUserID {
			continue
		}
		if msg.Author.Bot || strings.TrimSpace(msg.Content) == "" {
			continue
		}
		result = append(result, ChannelMessage{
			ID:        msg.ID,
			Content:   msg.Content,
			AuthorID:  msg.Author.ID,
			Author:    msg.Author.Username,
			Timestamp: msg.Timestamp.Format("2006-01-02 15:04:05"),
		})
	}

	// Reverse to get chronological order
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return result, nil
}

// GetUserInfo gets information about a Discord user
func (d *DiscordExecutor) GetUserInfo(ctx context.Context, userID string) (*UserInfo, error) {
	if d.session == nil {
		return nil, apperrors.ErrDiscordSessionUnavailable
	}

	user, err := d.session.User(userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, apperrors.NewDiscordUserNotFound(userID)
	}

	return &UserInfo{
		ID:            user.ID,
		Username:      user.Username,
		Discriminator: user.Discriminator,
		GlobalName:    user.GlobalName,
		Bot:           user.Bot,
		AvatarURL:     user.AvatarURL("256"),
	}, nil
}

// GetChannelInfo gets information about a Discord channel
func (d *DiscordExecutor) GetChannelInfo(ctx context.Context, channelID string) (*ChannelInfo, error) {
	if d.session == nil {
		return nil, apperrors.ErrDiscordSessionUnavailable
	}

	channel, err := d.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, apperrors.NewDiscordChannelNotFound(channelID)
	}

	return &ChannelInfo{
		ID:      channel.ID,
		Name:    channel.Name,
		Topic:   channel.Topic,
		Type:    channelTypeName(channel.Type),
		GuildID: channel.GuildID,
	}, nil
}

// CreateChannel creates a text channel in a guild
func (d *DiscordExecutor) CreateChannel(ctx context.Context, guildID, name, topic string) (*ChannelInfo, error) {
	if d.session == nil {
		return nil, apperrors.ErrDiscordSessionUnavailable
	}
	channel, err := d.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:  name,
		Type:  discordgo.ChannelTypeGuildText,
		Topic: topic,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}
	return &ChannelInfo{
		ID:      channel.ID,
		Name:    channel.Name,
		Topic:   channel.Topic,
		Type:    channelTypeName(channel.Type),
		GuildID: channel.GuildID,
	}, nil
}

// DeleteChannel deletes a channel
func (d *DiscordExecutor) DeleteChannel(ctx context.Context, channelID string) error {
	if d.session == nil {
		return apperrors.ErrDiscordSessionUnavailable
	}
	_, err := d.session.ChannelDelete(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	return nil
}

// CreateRole creates a role in a guild
func (d *DiscordExecutor) CreateRole(ctx context.Context, guildID, name string) (string, error) {
	if d.session == nil {
		return "", apperrors.ErrDiscordSessionUnavailable
	}
	role, err := d.session.GuildRoleCreate(guildID, &discordgo.RoleParams{Name: name}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to create role: %w", err)
	}
	return role.ID, nil
}

// DeleteRole deletes a role from a guild
func (d *DiscordExecutor) DeleteRole(ctx context.Context, guildID, roleID string) error {
	if d.session == nil {
		return apperrors.ErrDiscordSessionUnavailable
	}
	if err := d.session.GuildRoleDelete(guildID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	return nil
}

// KickMember removes a member from a guild
func (d *DiscordExecutor) KickMember(ctx context.Context, guildID, userID, reason string) error {
	if d.session == nil {
		return apperrors.ErrDiscordSessionUnavailable
	}
	if err := d.session.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to kick member: %w", err)
	}
	return nil
}

// BanMember bans a member from a guild
func (d *DiscordExecutor) BanMember(ctx context.Context, guildID, userID, reason string, deleteDays int) error {
	if d.session == nil {
		return apperrors.ErrDiscordSessionUnavailable
	}
	if deleteDays < 0 {
		deleteDays = 0
	}
	if deleteDays > 7 {
		deleteDays = 7
	}
	if err := d.session.GuildBanCreateWithReason(guildID, userID, reason, deleteDays, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to ban member: %w", err)
	}
	return nil
}

// TimeoutMember times out a member for the given duration
func (d *DiscordExecutor) TimeoutMember(ctx context.Context, guildID, userID string, duration time.Duration) error {
	if d.session == nil {
		return apperrors.ErrDiscordSessionUnavailable
	}
	until := time.Now().Add(duration)
	if err := d.session.GuildMemberTimeout(guildID, userID, &until, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to timeout member: %w", err)
	}
	return nil
}

// RenameGuild renames a guild
func (d *DiscordExecutor) RenameGuild(ctx context.Context, guildID, name string) error {
	if d.session == nil {
		return apperrors.ErrDiscordSessionUnavailable
	}
	if _, err := d.session.GuildEdit(guildID, &discordgo.GuildParams{Name: name}, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to rename guild: %w", err)
	}
	return nil
}

// resultFromError maps a collaborator error into a tool result. Discord
// rate limits carry their suggested retry-after so the orchestrator can
// back off and re-issue the call.
func resultFromError(toolName string, err error) *Result {
	var rle discordgo.RateLimitError
	if errors.As(err, &rle) {
		return &Result{
			Success:    false,
			Error:      apperrors.NewToolRateLimited(toolName, rle.RetryAfter).Message,
			RetryAfter: rle.RetryAfter.Seconds(),
		}
	}
	return Errorf("%v", err)
}

func channelTypeName(t discordgo.ChannelType) string {
	switch t {
	case discordgo.ChannelTypeGuildText:
		return "text"
	case discordgo.ChannelTypeGuildVoice:
		return "voice"
	case discordgo.ChannelTypeDM:
		return "dm"
	case discordgo.ChannelTypeGuildCategory:
		return "category"
	case discordgo.ChannelTypeGuildNews:
		return "news"
	default:
		return fmt.Sprintf("type_%d", int(t))
	}
}
