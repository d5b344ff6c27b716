// Package index keeps the set of container locations stocked by watched users.
//
// An Index is built once from a single bulk history query and never mutated
// afterwards. Holder publishes a built Index atomically so readers never see
// a partially built one, and lets a future reload replace it wholesale.
package index

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"stashwatch/internal/history"
	"stashwatch/internal/watch"
)

var ErrBuild = errors.New("building history index")

type Block struct {
	X, Y, Z int
}

type Index struct {
	worlds map[string]map[Block]struct{}
	size   int
}

func Build(ctx context.Context, q history.Querier, watchList watch.List, lookback time.Duration) (*Index, error) {
	records, err := q.Query(ctx, history.Query{
		Filter:   history.ItemStored(),
		Users:    watchList.Users(),
		Lookback: lookback,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}
	return FromRecords(records), nil
}

func FromRecords(records []history.Record) *Index {
	idx := &Index{worlds: make(map[string]map[Block]struct{})}
	for _, r := range records {
		blocks, ok := idx.worlds[r.Location.World]
		if !ok {
			blocks = make(map[Block]struct{})
			idx.worlds[r.Location.World] = blocks
		}
		b := Block{r.Location.X, r.Location.Y, r.Location.Z}
		if _, seen := blocks[b]; seen {
			continue
		}
		blocks[b] = struct{}{}
		idx.size++
	}
	return idx
}

func (i *Index) Lookup(loc history.Location) bool {
	if i == nil {
		return false
	}
	blocks, ok := i.worlds[loc.World]
	if !ok {
		return false
	}
	_, ok = blocks[Block{loc.X, loc.Y, loc.Z}]
	return ok
}

// Len is the number of distinct locations across all worlds.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return i.size
}

func (i *Index) WorldLen(world string) int {
	if i == nil {
		return 0
	}
	return len(i.worlds[world])
}

func (i *Index) Worlds() []string {
	if i == nil {
		return nil
	}
	worlds := make([]string, 0, len(i.worlds))
	for w := range i.worlds {
		worlds = append(worlds, w)
	}
	sort.Strings(worlds)
	return worlds
}

// Holder is the installed Index. The zero value holds nothing and reports
// every location as absent.
type Holder struct {
	current atomic.Pointer[Index]
}

func (h *Holder) Install(idx *Index) {
	h.current.Store(idx)
}

// Swap installs idx and returns the previously installed Index.
func (h *Holder) Swap(idx *Index) *Index {
	return h.current.Swap(idx)
}

func (h *Holder) Load() *Index {
	return h.current.Load()
}

func (h *Holder) Ready() bool {
	return h.current.Load() != nil
}

func (h *Holder) Lookup(loc history.Location) bool {
	return h.current.Load().Lookup(loc)
}
