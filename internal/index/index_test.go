package index

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stashwatch/internal/history"
	"stashwatch/internal/watch"
)

type fakeQuerier struct {
	records []history.Record
	err     error
	queries []history.Query
}

func (f *fakeQuerier) Query(ctx context.Context, q history.Query) ([]history.Record, error) {
	f.queries = append(f.queries, q)
	return f.records, f.err
}

func mustWatch(t *testing.T, users ...string) watch.List {
	t.Helper()
	l, err := watch.New(users)
	require.NoError(t, err)
	return l
}

func TestBuildIssuesOneBulkQuery(t *testing.T) {
	q := &fakeQuerier{}
	_, err := Build(context.Background(), q, mustWatch(t, "alice", "carol"), 28*24*time.Hour)
	require.NoError(t, err)

	require.Len(t, q.queries, 1)
	got := q.queries[0]
	assert.Equal(t, history.ItemStored(), got.Filter)
	assert.Equal(t, []string{"alice", "carol"}, got.Users)
	assert.Nil(t, got.Location)
	assert.Equal(t, 28*24*time.Hour, got.Lookback)
}

func TestBuildFailure(t *testing.T) {
	q := &fakeQuerier{err: errors.New("connection refused")}
	idx, err := Build(context.Background(), q, mustWatch(t, "alice"), time.Hour)
	assert.Nil(t, idx)
	assert.ErrorIs(t, err, ErrBuild)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestLookupPartitionsByWorld(t *testing.T) {
	chest := history.Location{World: "overworld", X: 10, Y: 64, Z: 10}
	idx := FromRecords([]history.Record{
		{User: "alice", Location: chest},
		{User: "carol", Location: chest},
		{User: "alice", Location: history.Location{World: "the_end", X: 0, Y: 50, Z: 0}},
	})

	assert.True(t, idx.Lookup(chest))
	assert.False(t, idx.Lookup(history.Location{World: "nether", X: 10, Y: 64, Z: 10}))
	assert.False(t, idx.Lookup(history.Location{World: "overworld", X: 10, Y: 65, Z: 10}))

	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, 1, idx.WorldLen("overworld"))
	assert.Equal(t, 0, idx.WorldLen("nether"))
	assert.Equal(t, []string{"overworld", "the_end"}, idx.Worlds())
}

func TestNilIndex(t *testing.T) {
	var idx *Index
	assert.False(t, idx.Lookup(history.Location{World: "overworld"}))
	assert.Zero(t, idx.Len())
	assert.Nil(t, idx.Worlds())
}

func TestHolder(t *testing.T) {
	var h Holder
	loc := history.Location{World: "overworld", X: 1, Y: 2, Z: 3}

	assert.False(t, h.Ready())
	assert.False(t, h.Lookup(loc))

	first := FromRecords([]history.Record{{User: "alice", Location: loc}})
	h.Install(first)
	assert.True(t, h.Ready())
	assert.True(t, h.Lookup(loc))

	prev := h.Swap(FromRecords(nil))
	assert.Same(t, first, prev)
	assert.False(t, h.Lookup(loc))
}
