package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stashwatch/internal/history"

	_ "modernc.org/sqlite"
)

var _ history.Store = (*Client)(nil)

type Options struct {
	TablePrefix string
	// ReadOnly keeps the process from writing to a database the game server owns.
	ReadOnly bool
}

type Client struct {
	db     *sql.DB
	prefix string
	now    func() time.Time
}

func New(ctx context.Context, dsn string, opts Options) (*Client, error) {
	if err := history.ValidateTablePrefix(opts.TablePrefix); err != nil {
		return nil, err
	}

	driverDSN, err := parseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing sqlite DSN: %w", err)
	}

	pragmas := []string{"busy_timeout(30000)"}
	if opts.ReadOnly {
		pragmas = append(pragmas, "query_only(1)")
	}
	driverDSN = withPragmas(driverDSN, pragmas...)

	db, err := sql.Open("sqlite", driverDSN)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if isMemory(driverDSN) {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite: %w", err)
	}

	return &Client{db: db, prefix: opts.TablePrefix, now: time.Now}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging sqlite: %w", err)
	}
	return nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.db.Close()
}
