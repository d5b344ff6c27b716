package history

import (
	"fmt"
	"time"
)

type Location struct {
	World string
	X     int
	Y     int
	Z     int
}

func (l Location) String() string {
	return fmt.Sprintf("(world: %s, x:%d, y:%d, z:%d)", l.World, l.X, l.Y, l.Z)
}

type Record struct {
	User     string
	Location Location
	Time     time.Time
}
