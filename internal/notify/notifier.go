package notify

import (
	log "github.com/sirupsen/logrus"
)

// Notifier is the fire-and-forget boundary to whatever delivers user
// notifications (SMS, WhatsApp, sockets). Implementations must never block
// business flows; callers invoke Notify from a goroutine and ignore failures.
type Notifier interface {
	Notify(userID uint, event string, message string)
}

// LogNotifier writes notifications to the log. It stands in until a real
// delivery channel is wired up.
type LogNotifier struct{}

func (LogNotifier) Notify(userID uint, event string, message string) {
	log.Printf("notify user %d [%s]: %s", userID, event, message)
}
