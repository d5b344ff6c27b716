package mcp

import (
	"context"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"stashwatch/internal/history"
	"stashwatch/internal/index"
	"stashwatch/internal/watch"
)

// Attributor resolves the watched stockers of a location.
type Attributor interface {
	Attribute(ctx context.Context, actor string, loc history.Location) ([]string, error)
}

// IndexSource yields the currently installed index, or nil before one is.
type IndexSource interface {
	Load() *index.Index
}

type Server struct {
	index      IndexSource
	attributor Attributor
	watch      watch.List
	lookback   time.Duration
	mcp        *sdk.Server
}

func NewServer(idx IndexSource, attributor Attributor, watchList watch.List, lookback time.Duration, version string) *Server {
	s := &Server{
		index:      idx,
		attributor: attributor,
		watch:      watchList,
		lookback:   lookback,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "stashwatch",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
