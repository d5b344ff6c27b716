// Package alert formats suspicious-access alerts and delivers them to a
// Discord-compatible webhook.
//
// # Delivery contract
//
// Every qualifying access produces exactly one Alert and exactly one delivery
// attempt. WebhookSender.Send performs a single HTTPS POST and succeeds only
// on HTTP 204; anything else is a *DeliveryError that keeps the message text.
// Dispatcher moves delivery off the caller's goroutine: Notify enqueues
// without blocking and workers drain the queue into the sender. Failed
// deliveries are logged at error level with the full message; nothing is
// retried.
package alert

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"stashwatch/internal/event"
	"stashwatch/internal/history"
)

const textPrefix = "[watch-list]"

type Alert struct {
	ID         string
	Actor      string
	Attributed []string
	Location   history.Location
	Kind       event.Kind
	Text       string
	CreatedAt  time.Time
}

func New(ev event.Access, attributed []string) Alert {
	users := make([]string, len(attributed))
	copy(users, attributed)
	return Alert{
		ID:         uuid.NewString(),
		Actor:      ev.Actor,
		Attributed: users,
		Location:   ev.Location,
		Kind:       ev.Kind,
		Text:       FormatText(ev, users),
		CreatedAt:  time.Now().UTC(),
	}
}

// FormatText renders the operator-facing message, e.g.
// "[watch-list] alice, carol stocked a container that bob opened: (world: overworld, x:10, y:64, z:10)".
func FormatText(ev event.Access, attributed []string) string {
	return fmt.Sprintf("%s %s stocked a container that %s %s: %s",
		textPrefix,
		strings.Join(attributed, ", "),
		ev.Actor,
		verb(ev.Kind),
		ev.Location,
	)
}

func verb(k event.Kind) string {
	if k == event.KindDestroy {
		return "broke"
	}
	return "opened"
}
