package sqlite

import (
	"context"
	"fmt"
	"time"

	"stashwatch/internal/history"
)

func (c *Client) Query(ctx context.Context, q history.Query) ([]history.Record, error) {
	query, args, err := history.BuildSQL(c.prefix, q, c.now(), history.QuestionPlaceholder)
	if err != nil {
		return nil, fmt.Errorf("building history query: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []history.Record
	for rows.Next() {
		var r history.Record
		var loggedAt int64
		if err := rows.Scan(&r.User, &r.Location.World, &r.Location.X, &r.Location.Y, &r.Location.Z, &loggedAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		r.Time = time.Unix(loggedAt, 0)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history rows: %w", err)
	}
	return records, nil
}
