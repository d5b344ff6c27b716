// Package validate checks the history store against the configured watch
// list, catching misspelled player names and an empty lookback window before
// the engine runs blind.
package validate

import (
	"context"
	"fmt"
	"time"

	"stashwatch/internal/history"
	"stashwatch/internal/watch"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeUnknownPlayer     = "unknown_player"
	codeNoKnownPlayers    = "no_known_players"
	codeNoRecentStocking  = "no_recent_stocking"
	codeEmptyHistoryIndex = "empty_history_index"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Player   string
}

type Report struct {
	Issues []Issue
	// Stocked counts stocking records per watched player inside the window.
	Stocked map[string]int
}

func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Checker is a history store that can also resolve player names.
type Checker interface {
	history.Querier
	KnownUsers(ctx context.Context, users []string) ([]string, error)
}

func Run(ctx context.Context, checker Checker, watchList watch.List, lookback time.Duration) (*Report, error) {
	if checker == nil {
		return nil, fmt.Errorf("history checker is required")
	}
	users := watchList.Users()
	if len(users) == 0 {
		return nil, watch.ErrEmpty
	}

	issues := make([]Issue, 0)

	known, err := checker.KnownUsers(ctx, users)
	if err != nil {
		return nil, fmt.Errorf("resolve players: %w", err)
	}
	knownSet := make(map[string]struct{}, len(known))
	for _, u := range known {
		knownSet[u] = struct{}{}
	}
	for _, u := range users {
		if _, ok := knownSet[u]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarn,
				Code:     codeUnknownPlayer,
				Message:  "player never appears in the history log",
				Player:   u,
			})
		}
	}
	if len(known) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeNoKnownPlayers,
			Message:  "no watched player appears in the history log; check the DSN and table prefix",
		})
	}

	records, err := checker.Query(ctx, history.Query{
		Filter:   history.ItemStored(),
		Users:    users,
		Lookback: lookback,
	})
	if err != nil {
		return nil, fmt.Errorf("query stocking history: %w", err)
	}
	stocked := make(map[string]int, len(users))
	for _, r := range records {
		stocked[r.User]++
	}
	for _, u := range users {
		if _, ok := knownSet[u]; ok && stocked[u] == 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarn,
				Code:     codeNoRecentStocking,
				Message:  fmt.Sprintf("no containers stocked in the last %s", lookback),
				Player:   u,
			})
		}
	}
	if len(records) == 0 && len(known) > 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeEmptyHistoryIndex,
			Message:  "the history index would be empty; no access can raise an alert",
		})
	}

	return &Report{Issues: issues, Stocked: stocked}, nil
}
