package notify

import (
	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-console/internal/core/domain"
)

// LogSink mirrors every toast into the structured log and returns the
// unsubscribe func.
func LogSink(bus *Bus, log zerolog.Logger) func() {
	log = log.With().Str("component", "notify").Logger()
	return bus.Subscribe(func(n domain.Notification) {
		var ev *zerolog.Event
		switch n.Severity {
		case domain.SeverityError:
			ev = log.Error()
		case domain.SeverityWarning:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		ev.Str("toast_id", n.ID).
			Str("title", n.Title).
			Str("severity", string(n.Severity)).
			Msg(n.Message)
	})
}
