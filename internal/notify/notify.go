package notify

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/vmunix/reqarr/internal/library"
)

// Field is an extra labelled value shown with a notification, such as the season list.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Payload is the content of a notification. The subject is the media title and
// the message its plot; agents decide how to render them.
type Payload struct {
	Subject    string
	Message    string
	Image      string
	Extra      []Field
	NotifyUser *library.User
	Media      *library.Media
	Request    *library.Request
}

// Sink accepts notifications. Sending never fails from the caller's view.
type Sink interface {
	Send(ctx context.Context, kind Kind, p Payload)
}

// Agent delivers notifications to one destination.
type Agent interface {
	Name() string
	ShouldSend(kind Kind) bool
	Send(ctx context.Context, kind Kind, p Payload) error
}

// Manager fans notifications out to every agent that wants them.
type Manager struct {
	agents []Agent
	logger *slog.Logger
}

// NewManager creates a manager over agents.
func NewManager(logger *slog.Logger, agents ...Agent) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{agents: agents, logger: logger}
}

// Send delivers to every interested agent. Agent errors are logged.
func (m *Manager) Send(ctx context.Context, kind Kind, p Payload) {
	_ = m.Deliver(ctx, kind, p)
}

// Deliver is Send with the joined agent errors returned.
func (m *Manager) Deliver(ctx context.Context, kind Kind, p Payload) error {
	var errs []error
	for _, a := range m.agents {
		if !a.ShouldSend(kind) {
			continue
		}
		if err := a.Send(ctx, kind, p); err != nil {
			m.logger.Error("notification delivery failed",
				"agent", a.Name(),
				"kind", kind.String(),
				"subject", p.Subject,
				"error", err)
			errs = append(errs, err)
			continue
		}
		m.logger.Debug("notification sent", "agent", a.Name(), "kind", kind.String(), "subject", p.Subject)
	}
	return errors.Join(errs...)
}

// Agents returns the configured agents.
func (m *Manager) Agents() []Agent { return m.agents }

// Discard is a Sink that drops everything.
type Discard struct{}

func (Discard) Send(context.Context, Kind, Payload) {}

// SeasonsField lists season numbers the way notifications show them.
func SeasonsField(seasons []int) Field {
	parts := make([]string, len(seasons))
	for i, n := range seasons {
		parts[i] = strconv.Itoa(n)
	}
	return Field{Name: "Seasons", Value: strings.Join(parts, ", ")}
}
