package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"stashwatch/internal/history"
)

// KnownUsers returns the subset of users present in the user table.
func (c *Client) KnownUsers(ctx context.Context, users []string) ([]string, error) {
	query, args, err := history.BuildKnownUsersSQL(c.prefix, users, history.DollarPlaceholder)
	if err != nil {
		return nil, fmt.Errorf("building user query: %w", err)
	}

	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	known, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collecting user rows: %w", err)
	}
	return known, nil
}
