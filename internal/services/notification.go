package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/abbasons/ledger/internal/models"
)

// notificationTTL is how long the UI keeps an occasion on screen before
// auto-dismissing it.
const notificationTTL = 3 * time.Second

const notificationKeep = 20

// Notifier collects user-facing occasions (sync results, offline saves) for
// the UI to poll. Every occasion is also emitted as a JSON log line.
type Notifier struct {
	mu     sync.Mutex
	recent []models.Notification
	now    func() time.Time
}

func NewNotifier() *Notifier {
	return &Notifier{now: time.Now}
}

func (n *Notifier) Success(message string) { n.push(message, "success") }
func (n *Notifier) Warning(message string) { n.push(message, "warning") }
func (n *Notifier) Error(message string)   { n.push(message, "error") }

// Recent returns the retained occasions, newest first.
func (n *Notifier) Recent() []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]models.Notification, len(n.recent))
	for i, note := range n.recent {
		out[len(n.recent)-1-i] = note
	}
	return out
}

func (n *Notifier) push(message, severity string) {
	now := n.now()
	note := models.Notification{
		Message:   message,
		Severity:  severity,
		CreatedAt: now,
		ExpiresAt: now.Add(notificationTTL),
	}

	n.mu.Lock()
	n.recent = append(n.recent, note)
	if len(n.recent) > notificationKeep {
		n.recent = n.recent[len(n.recent)-notificationKeep:]
	}
	n.mu.Unlock()

	data, _ := json.Marshal(note)
	log.Printf("NOTIFY: %s", string(data))
}
