package gateway

import (
	"stashwatch/internal/event"
	"stashwatch/internal/history"
)

const (
	TypeInteract = "interact"
	TypeBreak    = "break"

	// ActionRightClickBlock is the only interaction that counts as opening a container.
	ActionRightClickBlock = "RIGHT_CLICK_BLOCK"
)

// Raw is an event as the game-server bridge sends it.
type Raw struct {
	Type   string `json:"type" binding:"required"`
	Action string `json:"action,omitempty"`
	Player string `json:"player" binding:"required"`
	World  string `json:"world" binding:"required"`
	X      *int   `json:"x" binding:"required"`
	Y      *int   `json:"y" binding:"required"`
	Z      *int   `json:"z" binding:"required"`
}

// Translate maps a raw bridge event onto an access event. It reports false
// for every event that is not a right-click on a block or a block break, and
// for events missing a player, world or coordinate.
func Translate(r Raw) (event.Access, bool) {
	if r.Player == "" || r.World == "" || r.X == nil || r.Y == nil || r.Z == nil {
		return event.Access{}, false
	}

	var kind event.Kind
	switch r.Type {
	case TypeInteract:
		if r.Action != ActionRightClickBlock {
			return event.Access{}, false
		}
		kind = event.KindInteract
	case TypeBreak:
		kind = event.KindDestroy
	default:
		return event.Access{}, false
	}

	return event.Access{
		Actor: r.Player,
		Location: history.Location{
			World: r.World,
			X:     *r.X,
			Y:     *r.Y,
			Z:     *r.Z,
		},
		Kind: kind,
	}, true
}
