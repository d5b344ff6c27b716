package sqlite

import (
	"context"
	"fmt"

	"stashwatch/internal/history"
)

// KnownUsers returns the subset of users present in the user table.
func (c *Client) KnownUsers(ctx context.Context, users []string) ([]string, error) {
	query, args, err := history.BuildKnownUsersSQL(c.prefix, users, history.QuestionPlaceholder)
	if err != nil {
		return nil, fmt.Errorf("building user query: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var known []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		known = append(known, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}
	return known, nil
}
