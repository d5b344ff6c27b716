package sqlite

import (
	"context"
	"fmt"
	"strings"
)

// EnsureSchema creates the block logger tables. Production databases already
// have them; this exists for local fixtures and tests.
func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS {p}user (
		rowid INTEGER PRIMARY KEY,
		time  INTEGER NOT NULL DEFAULT 0,
		user  TEXT NOT NULL,
		uuid  TEXT
	);

	CREATE TABLE IF NOT EXISTS {p}world (
		rowid INTEGER PRIMARY KEY,
		id    INTEGER NOT NULL,
		world TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS {p}container (
		rowid       INTEGER PRIMARY KEY,
		time        INTEGER NOT NULL,
		user        INTEGER NOT NULL,
		wid         INTEGER NOT NULL,
		x           INTEGER NOT NULL,
		y           INTEGER NOT NULL,
		z           INTEGER NOT NULL,
		type        INTEGER NOT NULL DEFAULT 0,
		data        INTEGER NOT NULL DEFAULT 0,
		amount      INTEGER NOT NULL DEFAULT 0,
		metadata    BLOB,
		action      INTEGER NOT NULL,
		rolled_back INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS {p}block (
		rowid       INTEGER PRIMARY KEY,
		time        INTEGER NOT NULL,
		user        INTEGER NOT NULL,
		wid         INTEGER NOT NULL,
		x           INTEGER NOT NULL,
		y           INTEGER NOT NULL,
		z           INTEGER NOT NULL,
		type        INTEGER NOT NULL DEFAULT 0,
		data        INTEGER NOT NULL DEFAULT 0,
		meta        BLOB,
		blockdata   BLOB,
		action      INTEGER NOT NULL,
		rolled_back INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS {p}container_index ON {p}container (wid, x, z, time);
	CREATE INDEX IF NOT EXISTS {p}container_user_index ON {p}container (user, time);
	CREATE INDEX IF NOT EXISTS {p}block_index ON {p}block (wid, x, z, time);
	CREATE INDEX IF NOT EXISTS {p}block_user_index ON {p}block (user, time);
	CREATE UNIQUE INDEX IF NOT EXISTS {p}user_name_index ON {p}user (user);
	CREATE UNIQUE INDEX IF NOT EXISTS {p}world_id_index ON {p}world (id);
	`
	ddl = strings.ReplaceAll(ddl, "{p}", c.prefix)

	if _, err := c.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
