package history

import (
	"strings"
)

// Action flags mirror the lookup flags of the block logger. A Filter keeps
// every flag it was built with; combinations are never pruned, so
// container+place stays "item placed into a container" and never widens to a
// bare block placement.
type Action uint8

const (
	ActionBreak Action = 1 << iota
	ActionPlace
	ActionInteract
	ActionContainer
)

var actionNames = []struct {
	action Action
	name   string
}{
	{ActionContainer, "container"},
	{ActionPlace, "place"},
	{ActionBreak, "break"},
	{ActionInteract, "interact"},
}

type Filter struct {
	flags Action
}

func NewFilter(actions ...Action) Filter {
	var f Filter
	for _, a := range actions {
		f.flags |= a
	}
	return f
}

// ItemStored matches items put into a container.
func ItemStored() Filter {
	return NewFilter(ActionContainer, ActionPlace)
}

// ItemRemoved matches items taken out of a container.
func ItemRemoved() Filter {
	return NewFilter(ActionContainer, ActionBreak)
}

func (f Filter) Has(a Action) bool {
	return f.flags&a == a
}

func (f Filter) IsZero() bool {
	return f.flags == 0
}

func (f Filter) String() string {
	if f.IsZero() {
		return "none"
	}
	parts := make([]string, 0, len(actionNames))
	for _, an := range actionNames {
		if f.Has(an.action) {
			parts = append(parts, an.name)
		}
	}
	return strings.Join(parts, "+")
}

type Log int

const (
	LogBlock Log = iota
	LogContainer
)

// Row action codes as stored by the block logger.
const (
	RowRemoved     = 0
	RowAdded       = 1
	RowInteraction = 2
	RowAnyAction   = -1
)

// Source is one (log, action) pair a backend has to read.
type Source struct {
	Log    Log
	Action int
}

func Sources(f Filter) ([]Source, error) {
	if f.IsZero() {
		return nil, ErrEmptyFilter
	}

	var out []Source
	if f.Has(ActionContainer) {
		switch {
		case f.Has(ActionPlace) && f.Has(ActionBreak):
			out = append(out, Source{LogContainer, RowAdded}, Source{LogContainer, RowRemoved})
		case f.Has(ActionPlace):
			out = append(out, Source{LogContainer, RowAdded})
		case f.Has(ActionBreak):
			out = append(out, Source{LogContainer, RowRemoved})
		default:
			out = append(out, Source{LogContainer, RowAnyAction})
		}
		if f.Has(ActionInteract) {
			out = append(out, Source{LogBlock, RowInteraction})
		}
		return out, nil
	}

	if f.Has(ActionBreak) {
		out = append(out, Source{LogBlock, RowRemoved})
	}
	if f.Has(ActionPlace) {
		out = append(out, Source{LogBlock, RowAdded})
	}
	if f.Has(ActionInteract) {
		out = append(out, Source{LogBlock, RowInteraction})
	}
	return out, nil
}
