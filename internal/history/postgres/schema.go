package postgres

import (
	"context"
	"fmt"
	"strings"
)

// EnsureSchema creates the block logger tables for a replicated log. All DDL
// runs in one implicit transaction and is idempotent.
func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS {p}user (
    rowid  BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    time   BIGINT NOT NULL DEFAULT 0,
    "user" TEXT NOT NULL,
    uuid   TEXT,
    CONSTRAINT uq_{p}user_name UNIQUE ("user")
);

CREATE TABLE IF NOT EXISTS {p}world (
    rowid BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    id    INTEGER NOT NULL,
    world TEXT NOT NULL,
    CONSTRAINT uq_{p}world_id UNIQUE (id)
);

CREATE TABLE IF NOT EXISTS {p}container (
    rowid       BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    time        BIGINT NOT NULL,
    "user"      BIGINT NOT NULL,
    wid         INTEGER NOT NULL,
    x           INTEGER NOT NULL,
    y           INTEGER NOT NULL,
    z           INTEGER NOT NULL,
    type        INTEGER NOT NULL DEFAULT 0,
    data        INTEGER NOT NULL DEFAULT 0,
    amount      INTEGER NOT NULL DEFAULT 0,
    metadata    BYTEA,
    action      SMALLINT NOT NULL,
    rolled_back SMALLINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS {p}block (
    rowid       BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    time        BIGINT NOT NULL,
    "user"      BIGINT NOT NULL,
    wid         INTEGER NOT NULL,
    x           INTEGER NOT NULL,
    y           INTEGER NOT NULL,
    z           INTEGER NOT NULL,
    type        INTEGER NOT NULL DEFAULT 0,
    data        INTEGER NOT NULL DEFAULT 0,
    meta        BYTEA,
    blockdata   BYTEA,
    action      SMALLINT NOT NULL,
    rolled_back SMALLINT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_{p}container_location ON {p}container (wid, x, z, time);
CREATE INDEX IF NOT EXISTS idx_{p}container_user ON {p}container ("user", time);
CREATE INDEX IF NOT EXISTS idx_{p}block_location ON {p}block (wid, x, z, time);
CREATE INDEX IF NOT EXISTS idx_{p}block_user ON {p}block ("user", time);
`
	ddl = strings.ReplaceAll(ddl, "{p}", c.prefix)

	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
