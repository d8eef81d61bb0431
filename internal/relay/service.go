// ABOUTME: Relay service orchestrating validation, normalization, and channel publish
// ABOUTME: Implements admin broadcast, targeted player command, screenshot notification

package relay

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/skyhaven/mod-gateway/internal/state"
)

// ErrValidation is returned when caller input is malformed or empty. It is
// detected before any network call; the caller must fix the input before
// retrying.
var ErrValidation = errors.New("validation rejected")

// Publisher is the fire-and-forget channel publish the service relays onto.
type Publisher interface {
	Publish(channel, event string, payload any) error
}

// Service relays operator commands and broadcasts onto well-known channels
// and announces screenshot arrivals. Fire-and-forget: a command is either
// rejected, published, or the publish failure is surfaced for the operator
// to resubmit. Mod-side receipt is never observed.
type Service struct {
	publisher   Publisher
	screenshots *state.Screenshots
	logger      *slog.Logger
}

// NewService creates a relay service.
func NewService(publisher Publisher, screenshots *state.Screenshots, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		publisher:   publisher,
		screenshots: screenshots,
		logger:      logger.With("component", "relay"),
	}
}

// SendPlayerCommand publishes a command targeted at a single player. The
// command is normalized to always begin with "/" (prepended when missing,
// never doubled).
func (s *Service) SendPlayerCommand(playerName, command string) error {
	playerName = strings.TrimSpace(playerName)
	command = strings.TrimSpace(command)
	if playerName == "" || command == "" {
		return fmt.Errorf("%w: player name and command are required", ErrValidation)
	}

	if !strings.HasPrefix(command, "/") {
		command = "/" + command
	}

	payload := map[string]string{
		"targetPlayer": playerName,
		"command":      command,
	}
	if err := s.publisher.Publish(ChannelPlayerCommands, EventPlayerCommand, payload); err != nil {
		return err
	}

	s.logger.Info("player command published", "player", playerName, "command", command)
	return nil
}

// SendAdminMessage broadcasts a message to all mod clients.
func (s *Service) SendAdminMessage(message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return fmt.Errorf("%w: message is required", ErrValidation)
	}

	if err := s.publisher.Publish(ChannelAdminMessages, EventAdminMessage, map[string]string{
		"message": message,
	}); err != nil {
		return err
	}

	s.logger.Info("admin message published")
	return nil
}

// NotifyScreenshotUpdate announces that a fresh screenshot for playerName is
// available. A missing entry is a silent no-op, not an error: the store
// write and this notify are two back-to-back boundary calls, and no entry
// means there is nothing to announce.
func (s *Service) NotifyScreenshotUpdate(playerName string) error {
	entry, ok := s.screenshots.Get(playerName)
	if !ok {
		return nil
	}

	return s.publisher.Publish(ChannelScreenshots, EventScreenshotUpdate, map[string]any{
		"playerName": playerName,
		"timestamp":  entry.CapturedAt.UTC().Format(time.RFC3339Nano),
	})
}
