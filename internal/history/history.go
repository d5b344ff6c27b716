package history

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Querier is the historical block/container log.
type Querier interface {
	Query(ctx context.Context, q Query) ([]Record, error)
}

// Store is a Querier backed by a database the process opened itself.
type Store interface {
	Querier
	// KnownUsers returns the subset of users the log has ever recorded.
	KnownUsers(ctx context.Context, users []string) ([]string, error)
	Ping(ctx context.Context) error
	EnsureSchema(ctx context.Context) error
	Close(ctx context.Context) error
}

var (
	ErrEmptyFilter = errors.New("action filter is empty")
	ErrNoUsers     = errors.New("at least one user is required")
)

type Query struct {
	Filter Filter
	Users  []string
	// Location restricts the query to one block; nil means every location.
	Location *Location
	Lookback time.Duration
}

func (q Query) Validate() error {
	if q.Filter.IsZero() {
		return ErrEmptyFilter
	}
	if len(q.Users) == 0 {
		return ErrNoUsers
	}
	if q.Lookback <= 0 {
		return fmt.Errorf("lookback must be positive, got %s", q.Lookback)
	}
	return nil
}

// Since returns the oldest unix timestamp the query covers.
func (q Query) Since(now time.Time) int64 {
	return now.Add(-q.Lookback).Unix()
}
