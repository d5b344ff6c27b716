package validate

import (
	"context"
	"errors"
	"testing"
	"time"

	"stashwatch/internal/history"
	"stashwatch/internal/watch"
)

type mockChecker struct {
	known      []string
	knownErr   error
	records    []history.Record
	queryErr   error
	lastQuery  history.Query
	lastLookup []string
}

func (m *mockChecker) KnownUsers(ctx context.Context, users []string) ([]string, error) {
	m.lastLookup = users
	return m.known, m.knownErr
}

func (m *mockChecker) Query(ctx context.Context, q history.Query) ([]history.Record, error) {
	m.lastQuery = q
	return m.records, m.queryErr
}

func mustWatch(t *testing.T, users ...string) watch.List {
	t.Helper()
	l, err := watch.New(users)
	if err != nil {
		t.Fatalf("watch list: %v", err)
	}
	return l
}

func codes(report *Report) map[string]string {
	out := make(map[string]string)
	for _, issue := range report.Issues {
		out[issue.Code+"|"+issue.Player] = string(issue.Severity)
	}
	return out
}

const window = 28 * 24 * time.Hour

func TestRun_Clean(t *testing.T) {
	checker := &mockChecker{
		known: []string{"alice", "carol"},
		records: []history.Record{
			{User: "alice"}, {User: "carol"}, {User: "alice"},
		},
	}
	report, err := Run(context.Background(), checker, mustWatch(t, "alice", "carol"), window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Issues) != 0 {
		t.Fatalf("expected no issues, got %+v", report.Issues)
	}
	if report.Stocked["alice"] != 2 || report.Stocked["carol"] != 1 {
		t.Fatalf("unexpected stocked counts: %v", report.Stocked)
	}
	if checker.lastQuery.Filter != history.ItemStored() || checker.lastQuery.Lookback != window || checker.lastQuery.Location != nil {
		t.Fatalf("unexpected query: %+v", checker.lastQuery)
	}
}

func TestRun_UnknownAndIdlePlayers(t *testing.T) {
	checker := &mockChecker{
		known:   []string{"alice", "carol"},
		records: []history.Record{{User: "alice"}},
	}
	report, err := Run(context.Background(), checker, mustWatch(t, "alice", "carol", "alcie"), window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := codes(report)
	if got["unknown_player|alcie"] != "warning" {
		t.Fatalf("expected unknown player warning, got %v", got)
	}
	if got["no_recent_stocking|carol"] != "warning" {
		t.Fatalf("expected idle player warning, got %v", got)
	}
	if _, ok := got["no_recent_stocking|alcie"]; ok {
		t.Fatalf("unknown players should not also be reported idle")
	}
	if report.HasErrors() {
		t.Fatalf("warnings only expected")
	}
}

func TestRun_NoKnownPlayers(t *testing.T) {
	report, err := Run(context.Background(), &mockChecker{}, mustWatch(t, "alice"), window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.HasErrors() {
		t.Fatalf("expected an error issue, got %+v", report.Issues)
	}
	if _, ok := codes(report)["no_known_players|"]; !ok {
		t.Fatalf("expected no_known_players, got %+v", report.Issues)
	}
}

func TestRun_EmptyIndex(t *testing.T) {
	report, err := Run(context.Background(), &mockChecker{known: []string{"alice"}}, mustWatch(t, "alice"), window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := codes(report)["empty_history_index|"]; !ok {
		t.Fatalf("expected empty index warning, got %+v", report.Issues)
	}
}

func TestRun_Failures(t *testing.T) {
	if _, err := Run(context.Background(), &mockChecker{knownErr: errors.New("no such table: co_user")}, mustWatch(t, "alice"), window); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := Run(context.Background(), &mockChecker{known: []string{"alice"}, queryErr: errors.New("timeout")}, mustWatch(t, "alice"), window); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := Run(context.Background(), nil, mustWatch(t, "alice"), window); err == nil {
		t.Fatalf("expected error")
	}
}
