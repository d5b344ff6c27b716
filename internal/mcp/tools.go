package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"stashwatch/internal/history"
)

type LocationInput struct {
	World string `json:"world" jsonschema:"world name"`
	X     int    `json:"x" jsonschema:"block x coordinate"`
	Y     int    `json:"y" jsonschema:"block y coordinate"`
	Z     int    `json:"z" jsonschema:"block z coordinate"`
}

type AttributeLocationInput struct {
	World   string `json:"world" jsonschema:"world name"`
	X       int    `json:"x" jsonschema:"block x coordinate"`
	Y       int    `json:"y" jsonschema:"block y coordinate"`
	Z       int    `json:"z" jsonschema:"block z coordinate"`
	Exclude string `json:"exclude,omitempty" jsonschema:"player to leave out, usually the one accessing the container"`
}

type IndexStatsInput struct{}

type GetWatchlistInput struct{}

type LookupLocationOutput struct {
	Location string `json:"location"`
	Indexed  bool   `json:"indexed"`
}

type AttributeLocationOutput struct {
	Location string   `json:"location"`
	Indexed  bool     `json:"indexed"`
	Players  []string `json:"players"`
}

type WorldStatsOutput struct {
	World     string `json:"world"`
	Locations int    `json:"locations"`
}

type IndexStatsOutput struct {
	Installed bool               `json:"installed"`
	Locations int                `json:"locations"`
	Worlds    []WorldStatsOutput `json:"worlds"`
}

type WatchlistOutput struct {
	Players  []string `json:"players"`
	Lookback string   `json:"lookback"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "lookup_location",
		Description: "Report whether a watched player stocked the container at a location",
	}, s.handleLookupLocation)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "attribute_location",
		Description: "List the watched players who stocked the container at a location",
	}, s.handleAttributeLocation)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "index_stats",
		Description: "Count indexed container locations per world",
	}, s.handleIndexStats)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_watchlist",
		Description: "Return the watched players and the history lookback window",
	}, s.handleGetWatchlist)
}

func (in LocationInput) location() (history.Location, error) {
	if in.World == "" {
		return history.Location{}, fmt.Errorf("world is required")
	}
	return history.Location{World: in.World, X: in.X, Y: in.Y, Z: in.Z}, nil
}

func (s *Server) handleLookupLocation(ctx context.Context, req *sdk.CallToolRequest, input LocationInput) (*sdk.CallToolResult, LookupLocationOutput, error) {
	loc, err := input.location()
	if err != nil {
		return nil, LookupLocationOutput{}, err
	}
	return nil, LookupLocationOutput{
		Location: loc.String(),
		Indexed:  s.index.Load().Lookup(loc),
	}, nil
}

func (s *Server) handleAttributeLocation(ctx context.Context, req *sdk.CallToolRequest, input AttributeLocationInput) (*sdk.CallToolResult, AttributeLocationOutput, error) {
	loc, err := LocationInput{World: input.World, X: input.X, Y: input.Y, Z: input.Z}.location()
	if err != nil {
		return nil, AttributeLocationOutput{}, err
	}
	players, err := s.attributor.Attribute(ctx, input.Exclude, loc)
	if err != nil {
		return nil, AttributeLocationOutput{}, err
	}
	return nil, AttributeLocationOutput{
		Location: loc.String(),
		Indexed:  s.index.Load().Lookup(loc),
		Players:  append([]string{}, players...),
	}, nil
}

func (s *Server) handleIndexStats(ctx context.Context, req *sdk.CallToolRequest, input IndexStatsInput) (*sdk.CallToolResult, IndexStatsOutput, error) {
	idx := s.index.Load()
	out := IndexStatsOutput{
		Installed: idx != nil,
		Locations: idx.Len(),
		Worlds:    []WorldStatsOutput{},
	}
	for _, world := range idx.Worlds() {
		out.Worlds = append(out.Worlds, WorldStatsOutput{World: world, Locations: idx.WorldLen(world)})
	}
	return nil, out, nil
}

func (s *Server) handleGetWatchlist(ctx context.Context, req *sdk.CallToolRequest, input GetWatchlistInput) (*sdk.CallToolResult, WatchlistOutput, error) {
	return nil, WatchlistOutput{
		Players:  s.watch.Users(),
		Lookback: s.lookback.String(),
	}, nil
}
