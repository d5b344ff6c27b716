package event

import "stashwatch/internal/history"

type Kind int

const (
	KindUnknown Kind = iota
	// KindInteract is a right-click on a block.
	KindInteract
	KindDestroy
)

func (k Kind) String() string {
	switch k {
	case KindInteract:
		return "interact"
	case KindDestroy:
		return "destroy"
	default:
		return "unknown"
	}
}

func (k Kind) Valid() bool {
	return k == KindInteract || k == KindDestroy
}

// Access is one real-time container access, consumed once by the correlator.
type Access struct {
	Actor    string
	Location history.Location
	Kind     Kind
}
