package history

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSQLAllLocations(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	q := Query{
		Filter:   ItemStored(),
		Users:    []string{"alice", "carol"},
		Lookback: 28 * 24 * time.Hour,
	}

	sql, args, err := BuildSQL("co_", q, now, QuestionPlaceholder)
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM co_container r")
	assert.NotContains(t, sql, "co_block")
	assert.Contains(t, sql, `u."user" IN (?, ?)`)
	assert.NotContains(t, sql, "w.world =")
	assert.True(t, strings.HasSuffix(sql, "ORDER BY logged_at DESC"))

	wantSince := now.Add(-28 * 24 * time.Hour).Unix()
	assert.Equal(t, []any{wantSince, RowAdded, "alice", "carol"}, args)
}

func TestBuildSQLExactLocationDollar(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	q := Query{
		Filter:   ItemStored(),
		Users:    []string{"alice"},
		Location: &Location{World: "overworld", X: 10, Y: 64, Z: 10},
		Lookback: time.Hour,
	}

	sql, args, err := BuildSQL("co_", q, now, DollarPlaceholder)
	require.NoError(t, err)

	assert.Contains(t, sql, "r.time >= $1")
	assert.Contains(t, sql, "r.action = $2")
	assert.Contains(t, sql, `u."user" IN ($3)`)
	assert.Contains(t, sql, "w.world = $4 AND r.x = $5 AND r.y = $6 AND r.z = $7")
	assert.Equal(t, []any{now.Add(-time.Hour).Unix(), RowAdded, "alice", "overworld", 10, 64, 10}, args)
}

func TestBuildSQLUnionForMultipleSources(t *testing.T) {
	q := Query{
		Filter:   NewFilter(ActionPlace, ActionBreak),
		Users:    []string{"alice"},
		Lookback: time.Hour,
	}
	sql, args, err := BuildSQL("", q, time.Now(), DollarPlaceholder)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(sql, "UNION ALL"))
	assert.Contains(t, sql, "FROM block r")
	assert.Len(t, args, 6)
}

func TestBuildSQLRejectsBadInput(t *testing.T) {
	valid := Query{Filter: ItemStored(), Users: []string{"alice"}, Lookback: time.Hour}

	_, _, err := BuildSQL("co_; DROP TABLE x", valid, time.Now(), QuestionPlaceholder)
	assert.Error(t, err)

	noUsers := valid
	noUsers.Users = nil
	_, _, err = BuildSQL("co_", noUsers, time.Now(), QuestionPlaceholder)
	assert.ErrorIs(t, err, ErrNoUsers)

	noFilter := valid
	noFilter.Filter = Filter{}
	_, _, err = BuildSQL("co_", noFilter, time.Now(), QuestionPlaceholder)
	assert.ErrorIs(t, err, ErrEmptyFilter)

	noLookback := valid
	noLookback.Lookback = 0
	_, _, err = BuildSQL("co_", noLookback, time.Now(), QuestionPlaceholder)
	assert.Error(t, err)
}

func TestBuildKnownUsersSQL(t *testing.T) {
	query, args, err := BuildKnownUsersSQL("co_", []string{"alice", "carol"}, DollarPlaceholder)
	require.NoError(t, err)
	assert.Equal(t, `SELECT DISTINCT u."user" FROM co_user u WHERE u."user" IN ($1, $2) ORDER BY u."user"`, query)
	assert.Equal(t, []any{"alice", "carol"}, args)

	_, _, err = BuildKnownUsersSQL("co_", nil, QuestionPlaceholder)
	assert.ErrorIs(t, err, ErrNoUsers)

	_, _, err = BuildKnownUsersSQL("co; --", []string{"alice"}, QuestionPlaceholder)
	assert.Error(t, err)
}
