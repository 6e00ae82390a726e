package notify

import (
	"context"
	"log/slog"
)

// LogAgent writes notifications to a logger. Useful when no external agent is configured.
type LogAgent struct {
	logger *slog.Logger
	types  Kind
}

// NewLogAgent creates an agent logging kinds in types.
func NewLogAgent(logger *slog.Logger, types Kind) *LogAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogAgent{logger: logger, types: types}
}

func (a *LogAgent) Name() string { return "log" }

func (a *LogAgent) ShouldSend(kind Kind) bool { return a.types.Includes(kind) }

func (a *LogAgent) Send(_ context.Context, kind Kind, p Payload) error {
	attrs := []any{"kind", kind.String(), "subject", p.Subject}
	if p.Request != nil {
		attrs = append(attrs, "request_id", p.Request.ID, "is_4k", p.Request.Is4K)
	}
	if p.Media != nil {
		attrs = append(attrs, "media_id", p.Media.ID)
	}
	if p.NotifyUser != nil {
		attrs = append(attrs, "notify_user", p.NotifyUser.ID)
	}
	for _, f := range p.Extra {
		attrs = append(attrs, f.Name, f.Value)
	}
	a.logger.Info("notification", attrs...)
	return nil
}
