package tools

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"

	apperrors "warden/backend/pkg/errors"
)

// fakeDirectory is an in-memory guild directory.
type fakeDirectory struct {
	botGuilds map[string]bool
	members   map[string]map[string]bool  // guild -> user -> member
	perms     map[string]map[string]int64 // guild -> user -> bits
	channels  map[string]string           // channel -> owning guild
}

func (f *fakeDirectory) BotInGuild(guildID string) bool {
	return f.botGuilds[guildID]
}

func (f *fakeDirectory) IsMember(_ context.Context, guildID, userID string) (bool, error) {
	return f.members[guildID][userID], nil
}

func (f *fakeDirectory) MemberPermissions(_ context.Context, guildID, userID string) (int64, error) {
	return f.perms[guildID][userID], nil
}

func (f *fakeDirectory) ChannelGuild(_ context.Context, channelID string) (string, error) {
	guildID, ok := f.channels[channelID]
	if !ok {
		return "", fmt.Errorf("unknown channel: %s", channelID)
	}
	return guildID, nil
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		botGuilds: map[string]bool{"guild-1": true, "guild-2": true, "guild-3": true},
		members: map[string]map[string]bool{
			"guild-1": {"user-1": true},
			"guild-2": {"user-1": false},
			"guild-3": {"user-1": true},
		},
		perms: map[string]map[string]int64{
			"guild-1": {"user-1": discordgo.PermissionKickMembers},
			"guild-3": {"user-1": discordgo.PermissionManageChannels},
		},
		channels: map[string]string{
			"chan-1": "guild-1",
			"chan-2": "guild-2",
			"chan-3": "guild-3",
			"dm-9":   "",
		},
	}
}

func originRC() RequestContext {
	return RequestContext{RequesterID: "user-1", OriginGuildID: "guild-1", ChannelID: "chan-1"}
}

func TestUnscopedToolSkipsGate(t *testing.T) {
	gate := NewPermissionGate(newFakeDirectory())

	denial := gate.Authorize(context.Background(), originRC(), ToolWebSearch, map[string]interface{}{"query": "x"})
	assert.Nil(t, denial)

	denial = gate.Authorize(context.Background(), originRC(), ToolSaveMemory, map[string]interface{}{"content": "x"})
	assert.Nil(t, denial)
}

func TestGuildNotFound(t *testing.T) {
	gate := NewPermissionGate(newFakeDirectory())

	denial := gate.Authorize(context.Background(), originRC(), ToolSendMessage,
		map[string]interface{}{"guild_id": "guild-unknown"})
	if assert.NotNil(t, denial) {
		assert.Equal(t, apperrors.CodeGuildNotFound, denial.Code)
	}
}

func TestDMWithoutTargetGuild(t *testing.T) {
	gate := NewPermissionGate(newFakeDirectory())
	rc := RequestContext{RequesterID: "user-1", ChannelID: "dm-1"}

	denial := gate.Authorize(context.Background(), rc, ToolSendMessage, map[string]interface{}{})
	if assert.NotNil(t, denial) {
		assert.Equal(t, apperrors.CodeGuildNotFound, denial.Code)
	}
}

func TestCrossServerRequiresMembership(t *testing.T) {
	gate := NewPermissionGate(newFakeDirectory())

	// user-1 is in guild-1 but not guild-2; targeting guild-2 from guild-1
	// must check and deny.
	denial := gate.Authorize(context.Background(), originRC(), ToolSendMessage,
		map[string]interface{}{"guild_id": "guild-2"})
	if assert.NotNil(t, denial) {
		assert.Equal(t, apperrors.CodeNotAMember, denial.Code)
	}
}

func TestDMOriginChecksMembership(t *testing.T) {
	gate := NewPermissionGate(newFakeDirectory())
	rc := RequestContext{RequesterID: "user-1", ChannelID: "dm-1"}

	denial := gate.Authorize(context.Background(), rc, ToolSendMessage,
		map[string]interface{}{"guild_id": "guild-1"})
	assert.Nil(t, denial)

	denial = gate.Authorize(context.Background(), rc, ToolSendMessage,
		map[string]interface{}{"guild_id": "guild-2"})
	if assert.NotNil(t, denial) {
		assert.Equal(t, apperrors.CodeNotAMember, denial.Code)
	}
}

func TestPermissionDeniedListsMissing(t *testing.T) {
	gate := NewPermissionGate(newFakeDirectory())

	// user-1 holds KickMembers, not BanMembers.
	denial := gate.Authorize(context.Background(), originRC(), ToolBanMember,
		map[string]interface{}{"user_id": "user-9"})
	if assert.NotNil(t, denial) {
		assert.Equal(t, apperrors.CodePermissionDenied, denial.Code)
		assert.Equal(t, []string{"BanMembers"}, denial.Missing)
	}

	denial = gate.Authorize(context.Background(), originRC(), ToolKickMember,
		map[string]interface{}{"user_id": "user-9"})
	assert.Nil(t, denial)
}

func TestAdministratorBypassesCapabilityBits(t *testing.T) {
	dir := newFakeDirectory()
	dir.perms["guild-1"]["user-1"] = discordgo.PermissionAdministrator
	gate := NewPermissionGate(dir)

	denial := gate.Authorize(context.Background(), originRC(), ToolBanMember,
		map[string]interface{}{"user_id": "user-9"})
	assert.Nil(t, denial)
}

func TestChannelTargetResolvesOwningGuild(t *testing.T) {
	gate := NewPermissionGate(newFakeDirectory())

	// chan-2 lives in guild-2, where user-1 is not a member. The origin
	// guild must not be used in its place.
	for _, tool := range []string{ToolDeleteChannel, ToolReadChannelHistory, ToolGetChannelInfo, ToolSendMessage} {
		denial := gate.Authorize(context.Background(), originRC(), tool,
			map[string]interface{}{"channel_id": "chan-2", "content": "x"})
		if assert.NotNil(t, denial, tool) {
			assert.Equal(t, apperrors.CodeNotAMember, denial.Code, tool)
		}
	}
}

func TestChannelGuildOverridesGuildArg(t *testing.T) {
	gate := NewPermissionGate(newFakeDirectory())

	// A guild_id argument naming the origin guild must not relabel a
	// foreign channel.
	denial := gate.Authorize(context.Background(), originRC(), ToolDeleteChannel,
		map[string]interface{}{"channel_id": "chan-2", "guild_id": "guild-1"})
	if assert.NotNil(t, denial) {
		assert.Equal(t, apperrors.CodeNotAMember, denial.Code)
	}
}

func TestChannelTargetAllowsMemberWithCapability(t *testing.T) {
	gate := NewPermissionGate(newFakeDirectory())

	// user-1 is a member of guild-3 and holds ManageChannels there.
	denial := gate.Authorize(context.Background(), originRC(), ToolDeleteChannel,
		map[string]interface{}{"channel_id": "chan-3"})
	assert.Nil(t, denial)
}

func TestUnresolvableChannelDenied(t *testing.T) {
	gate := NewPermissionGate(newFakeDirectory())

	denial := gate.Authorize(context.Background(), originRC(), ToolReadChannelHistory,
		map[string]interface{}{"channel_id": "chan-unknown"})
	if assert.NotNil(t, denial) {
		assert.Equal(t, apperrors.CodeGuildNotFound, denial.Code)
	}

	// A DM channel has no owning guild; reading into it is refused.
	denial = gate.Authorize(context.Background(), originRC(), ToolReadChannelHistory,
		map[string]interface{}{"channel_id": "dm-9"})
	if assert.NotNil(t, denial) {
		assert.Equal(t, apperrors.CodeGuildNotFound, denial.Code)
	}
}

func TestOriginChannelSkipsLookup(t *testing.T) {
	dir := newFakeDirectory()
	delete(dir.channels, "chan-1") // lookup would fail if attempted
	gate := NewPermissionGate(dir)

	denial := gate.Authorize(context.Background(), originRC(), ToolSendMessage,
		map[string]interface{}{"channel_id": "chan-1", "content": "x"})
	assert.Nil(t, denial)
}

func TestArgsCannotBypassMembership(t *testing.T) {
	gate := NewPermissionGate(newFakeDirectory())

	// Model-chosen argument keys must not weaken the check.
	denial := gate.Authorize(context.Background(), originRC(), ToolBanMember, map[string]interface{}{
		"guild_id": "guild-2",
		"bypass":   true,
		"admin":    "yes",
	})
	if assert.NotNil(t, denial) {
		assert.Equal(t, apperrors.CodeNotAMember, denial.Code)
	}
}
