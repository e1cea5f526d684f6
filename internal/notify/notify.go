package notify

import (
	"log/slog"

	"github.com/digitalhat/storefront/internal/events"
)

// Notifier is the transient-message surface. Every user-visible failure
// goes through here; there are no silent failures.
type Notifier interface {
	Info(message string)
	Success(message string)
	Warning(message string)
	Error(message string)
}

// BusNotifier publishes notifications on the event bus for the
// presentation layer to render, and mirrors them to the log.
type BusNotifier struct {
	bus *events.Bus
	log *slog.Logger
}

func NewBusNotifier(bus *events.Bus, log *slog.Logger) *BusNotifier {
	return &BusNotifier{bus: bus, log: log}
}

func (n *BusNotifier) Info(message string)    { n.publish(events.LevelInfo, message) }
func (n *BusNotifier) Success(message string) { n.publish(events.LevelSuccess, message) }
func (n *BusNotifier) Warning(message string) { n.publish(events.LevelWarning, message) }
func (n *BusNotifier) Error(message string)   { n.publish(events.LevelError, message) }

func (n *BusNotifier) publish(level events.Level, message string) {
	switch level {
	case events.LevelWarning:
		n.log.Warn(message, slog.String("surface", "toast"))
	case events.LevelError:
		n.log.Error(message, slog.String("surface", "toast"))
	default:
		n.log.Info(message, slog.String("surface", "toast"))
	}
	n.bus.PublishNotification(events.Notification{Level: level, Message: message})
}
