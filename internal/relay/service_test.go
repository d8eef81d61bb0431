// ABOUTME: Tests for the relay service: validation, command normalization, outcomes
// ABOUTME: Uses a recording publisher to assert exact channel, event, and payload

package relay

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhaven/mod-gateway/internal/broker"
	"github.com/skyhaven/mod-gateway/internal/state"
)

type published struct {
	channel string
	event   string
	payload any
}

type recordingPublisher struct {
	calls []published
	err   error
}

func (p *recordingPublisher) Publish(channel, event string, payload any) error {
	p.calls = append(p.calls, published{channel: channel, event: event, payload: payload})
	return p.err
}

func newTestService(pub *recordingPublisher) (*Service, *state.Screenshots) {
	screenshots := state.NewScreenshots()
	return NewService(pub, screenshots, nil), screenshots
}

func TestSendPlayerCommand_PrependsSlash(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestService(pub)

	require.NoError(t, svc.SendPlayerCommand("Notch", "fly"))

	require.Len(t, pub.calls, 1)
	call := pub.calls[0]
	assert.Equal(t, ChannelPlayerCommands, call.channel)
	assert.Equal(t, EventPlayerCommand, call.event)
	assert.Equal(t, map[string]string{
		"targetPlayer": "Notch",
		"command":      "/fly",
	}, call.payload)
}

func TestSendPlayerCommand_SlashNotDoubled(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestService(pub)

	require.NoError(t, svc.SendPlayerCommand("Notch", "/fly"))

	require.Len(t, pub.calls, 1)
	assert.Equal(t, map[string]string{
		"targetPlayer": "Notch",
		"command":      "/fly",
	}, pub.calls[0].payload)
}

func TestSendPlayerCommand_Validation(t *testing.T) {
	tests := []struct {
		name    string
		player  string
		command string
	}{
		{name: "empty player", player: "", command: "fly"},
		{name: "whitespace player", player: "   ", command: "fly"},
		{name: "empty command", player: "Notch", command: ""},
		{name: "whitespace command", player: "Notch", command: "  "},
		{name: "both empty", player: "", command: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &recordingPublisher{}
			svc, _ := newTestService(pub)

			err := svc.SendPlayerCommand(tt.player, tt.command)
			assert.ErrorIs(t, err, ErrValidation)
			// Rejected before any network call
			assert.Empty(t, pub.calls)
		})
	}
}

func TestSendPlayerCommand_PublishFailure(t *testing.T) {
	pub := &recordingPublisher{err: broker.ErrPublishFailed}
	svc, _ := newTestService(pub)

	err := svc.SendPlayerCommand("Notch", "fly")
	assert.ErrorIs(t, err, broker.ErrPublishFailed)
}

func TestSendAdminMessage(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestService(pub)

	require.NoError(t, svc.SendAdminMessage("  server restart in 5 minutes  "))

	require.Len(t, pub.calls, 1)
	call := pub.calls[0]
	assert.Equal(t, ChannelAdminMessages, call.channel)
	assert.Equal(t, EventAdminMessage, call.event)
	assert.Equal(t, map[string]string{"message": "server restart in 5 minutes"}, call.payload)
}

func TestSendAdminMessage_Validation(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestService(pub)

	err := svc.SendAdminMessage("   ")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, pub.calls)
}

func TestNotifyScreenshotUpdate(t *testing.T) {
	pub := &recordingPublisher{}
	svc, screenshots := newTestService(pub)

	screenshots.Put("Notch", []byte("image"))
	require.NoError(t, svc.NotifyScreenshotUpdate("Notch"))

	require.Len(t, pub.calls, 1)
	call := pub.calls[0]
	assert.Equal(t, ChannelScreenshots, call.channel)
	assert.Equal(t, EventScreenshotUpdate, call.event)

	payload, ok := call.payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Notch", payload["playerName"])
	assert.NotEmpty(t, payload["timestamp"])
}

func TestNotifyScreenshotUpdate_NoEntryIsNoOp(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestService(pub)

	// No stored screenshot: silent no-op, no publish attempted
	require.NoError(t, svc.NotifyScreenshotUpdate("nobody"))
	assert.Empty(t, pub.calls)
}

func TestNotifyScreenshotUpdate_PublishFailure(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc, screenshots := newTestService(pub)

	screenshots.Put("Notch", []byte("image"))
	assert.Error(t, svc.NotifyScreenshotUpdate("Notch"))
}

func TestOperatorCapability_NeverGrantsPublish(t *testing.T) {
	capability := OperatorCapability()

	assert.NotContains(t, capability[ChannelPlayers], "publish")
	assert.NotContains(t, capability[ChannelScreenshots], "publish")
	assert.Contains(t, capability[ChannelPlayers], "subscribe")
	assert.Contains(t, capability[ChannelPlayers], "presence")
	assert.Contains(t, capability[ChannelPlayers], "history")
	assert.Contains(t, capability[ChannelScreenshots], "history")
}

func TestModCapability_NoCommandHistory(t *testing.T) {
	capability := ModCapability()

	assert.NotContains(t, capability[ChannelPlayerCommands], "history")
	assert.Contains(t, capability[ChannelPlayerCommands], "subscribe")
	assert.Contains(t, capability[ChannelPlayers], "publish")
	assert.Contains(t, capability[ChannelAdminMessages], "subscribe")
	assert.Contains(t, capability[ChannelAdminMessages], "history")
}

func TestCapabilityProfiles_Disjoint(t *testing.T) {
	// The two flows request disjoint capability sets per channel: the
	// operator can never publish where the mod does, and vice versa.
	operator := OperatorCapability()
	mod := ModCapability()

	for channel, ops := range operator {
		for _, op := range ops {
			if op == "publish" {
				t.Errorf("operator profile grants publish on %s", channel)
			}
		}
	}

	_, operatorSeesCommands := operator[ChannelPlayerCommands]
	assert.False(t, operatorSeesCommands, "operator profile must not touch player-commands")

	_, modSeesScreenshots := mod[ChannelScreenshots]
	assert.False(t, modSeesScreenshots, "mod profile must not touch screenshots")
}
