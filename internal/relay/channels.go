// ABOUTME: Channel and event name vocabulary plus the two capability profiles
// ABOUTME: Channel names are wire contract with deployed mod clients - do not rename

package relay

import "github.com/skyhaven/mod-gateway/internal/broker"

// Channel names. Fixed, versionless vocabulary shared with every deployed
// mod client; renaming any of these is a breaking wire change.
const (
	ChannelPlayers        = "players"
	ChannelAdminMessages  = "admin-messages"
	ChannelPlayerCommands = "player-commands"
	ChannelScreenshots    = "screenshots"
)

// Event names published on the channels above.
const (
	EventAdminMessage     = "admin-message"
	EventPlayerCommand    = "player-command"
	EventScreenshotUpdate = "screenshot-update"
)

// OperatorCapability is the dashboard profile: observe players and
// screenshots, never publish.
func OperatorCapability() broker.Capability {
	return broker.Capability{
		ChannelPlayers:     {"subscribe", "presence", "history"},
		ChannelScreenshots: {"subscribe", "history"},
	}
}

// ModCapability is the game client profile: announce presence on players,
// receive broadcasts and targeted commands. No history on player-commands so
// a reconnecting mod cannot replay old commands.
func ModCapability() broker.Capability {
	return broker.Capability{
		ChannelPlayers:        {"publish", "presence", "subscribe"},
		ChannelAdminMessages:  {"subscribe", "history"},
		ChannelPlayerCommands: {"subscribe"},
	}
}
