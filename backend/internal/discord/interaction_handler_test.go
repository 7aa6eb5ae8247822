package discord

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"warden/backend/internal/confirm"
	"warden/backend/internal/tools"
)

// fakeInteractionSession records the Discord calls made while resolving a
// button press, in order.
type fakeInteractionSession struct {
	events    []string
	responses []*discordgo.InteractionResponse
	edits     []*discordgo.WebhookEdit
	followups []*discordgo.WebhookParams
}

func (f *fakeInteractionSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.events = append(f.events, "respond")
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeInteractionSession) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.events = append(f.events, "edit")
	f.edits = append(f.edits, edit)
	return &discordgo.Message{}, nil
}

func (f *fakeInteractionSession) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, params *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.events = append(f.events, "followup")
	f.followups = append(f.followups, params)
	return &discordgo.Message{}, nil
}

func (f *fakeInteractionSession) ChannelMessageSend(_ string, _ string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.events = append(f.events, "send")
	return &discordgo.Message{}, nil
}

// recordingDispatcher appends into the shared event log so execution order
// relative to the interaction acknowledgement is observable.
type recordingDispatcher struct {
	session *fakeInteractionSession
	calls   []string
}

func (d *recordingDispatcher) Dispatch(_ context.Context, _ tools.RequestContext, name string, _ map[string]interface{}) *tools.Result {
	d.session.events = append(d.session.events, "dispatch")
	d.calls = append(d.calls, name)
	return &tools.Result{Success: true, Message: "done"}
}

type interactionFixture struct {
	handler    *Handler
	session    *fakeInteractionSession
	dispatcher *recordingDispatcher
	store      *confirm.Store
	pending    *confirm.Pending
}

func newInteractionFixture(t *testing.T) *interactionFixture {
	t.Helper()

	session := &fakeInteractionSession{}
	dispatcher := &recordingDispatcher{session: session}
	store := confirm.NewStore(time.Minute, confirm.SystemClock(), nil, zap.NewNop())
	workflow := confirm.NewWorkflow(store, dispatcher, zap.NewNop())

	pending := store.Create(tools.RequestContext{
		RequesterID:   "user-1",
		OriginGuildID: "guild-1",
		ChannelID:     "chan-1",
	}, []confirm.Action{
		{Tool: tools.ToolDeleteChannel, Args: map[string]interface{}{"channel_id": "chan-9"}},
		{Tool: tools.ToolKickMember, Args: map[string]interface{}{"user_id": "user-9"}},
	})

	return &interactionFixture{
		handler:    &Handler{workflow: workflow, logger: zap.NewNop()},
		session:    session,
		dispatcher: dispatcher,
		store:      store,
		pending:    pending,
	}
}

func buttonPress(customID, actorID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionMessageComponent,
		Data:      discordgo.MessageComponentInteractionData{CustomID: customID},
		ChannelID: "chan-1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: actorID}},
	}}
}

func TestConfirmAcknowledgesBeforeExecuting(t *testing.T) {
	fx := newInteractionFixture(t)

	fx.handler.handleComponent(fx.session, buttonPress("confirm:"+fx.pending.ID, "user-1"))

	want := []string{"respond", "dispatch", "dispatch", "edit"}
	if len(fx.session.events) != len(want) {
		t.Fatalf("expected events %v, got %v", want, fx.session.events)
	}
	for i, e := range want {
		if fx.session.events[i] != e {
			t.Fatalf("expected events %v, got %v", want, fx.session.events)
		}
	}
	if fx.session.responses[0].Type != discordgo.InteractionResponseDeferredMessageUpdate {
		t.Errorf("expected a deferred update ack, got type %d", fx.session.responses[0].Type)
	}
	if got := fx.dispatcher.calls; len(got) != 2 || got[0] != tools.ToolDeleteChannel || got[1] != tools.ToolKickMember {
		t.Errorf("expected actions to run in proposal order, got %v", got)
	}
	if edit := fx.session.edits[0]; edit.Content == nil || !strings.HasPrefix(*edit.Content, "Confirmed.") {
		t.Errorf("expected the prompt edited with the report")
	} else if edit.Components == nil || len(*edit.Components) != 0 {
		t.Errorf("expected the buttons removed")
	}
}

func TestConfirmByStrangerGetsEphemeralFollowup(t *testing.T) {
	fx := newInteractionFixture(t)

	fx.handler.handleComponent(fx.session, buttonPress("confirm:"+fx.pending.ID, "user-2"))

	if len(fx.dispatcher.calls) != 0 {
		t.Fatalf("no actions may run for a stranger, got %v", fx.dispatcher.calls)
	}
	want := []string{"respond", "followup"}
	if len(fx.session.events) != 2 || fx.session.events[0] != want[0] || fx.session.events[1] != want[1] {
		t.Fatalf("expected events %v, got %v", want, fx.session.events)
	}
	fu := fx.session.followups[0]
	if fu.Flags&discordgo.MessageFlagsEphemeral == 0 {
		t.Error("follow-up must be ephemeral")
	}
	if !strings.Contains(fu.Content, "Only the person who asked") {
		t.Errorf("unexpected follow-up content: %q", fu.Content)
	}
	if _, ok := fx.store.Get(fx.pending.ID); !ok {
		t.Error("the batch must stay pending for the requester")
	}
}

func TestConfirmUnknownIDReportsExpired(t *testing.T) {
	fx := newInteractionFixture(t)

	fx.handler.handleComponent(fx.session, buttonPress("confirm:no-such-id", "user-1"))

	if len(fx.dispatcher.calls) != 0 {
		t.Fatalf("no actions may run, got %v", fx.dispatcher.calls)
	}
	if len(fx.session.followups) != 1 || !strings.Contains(fx.session.followups[0].Content, "expired") {
		t.Fatalf("expected an expired follow-up, got %v", fx.session.followups)
	}
}

func TestCancelUpdatesPromptInPlace(t *testing.T) {
	fx := newInteractionFixture(t)

	fx.handler.handleComponent(fx.session, buttonPress("cancel:"+fx.pending.ID, "user-1"))

	if len(fx.dispatcher.calls) != 0 {
		t.Fatalf("cancel must execute nothing, got %v", fx.dispatcher.calls)
	}
	if len(fx.session.events) != 1 || fx.session.events[0] != "respond" {
		t.Fatalf("expected a single respond, got %v", fx.session.events)
	}
	resp := fx.session.responses[0]
	if resp.Type != discordgo.InteractionResponseUpdateMessage {
		t.Errorf("expected an in-place update, got type %d", resp.Type)
	}
	if !strings.Contains(resp.Data.Content, "Cancelled") {
		t.Errorf("unexpected content: %q", resp.Data.Content)
	}
	if _, ok := fx.store.Get(fx.pending.ID); ok {
		t.Error("cancel must remove the pending entry")
	}
}
