package plugins

import (
	"context"

	"github.com/va6996/flightsearch/plugins/flights"
)

// FlightClient defines the interface for flight search interaction
type FlightClient interface {
	GetServerInfo(ctx context.Context) (*flights.ServerInfo, error)
	SearchFlights(ctx context.Context, req flights.SearchRequest) (*flights.SearchResult, error)
	SearchMCP(ctx context.Context, req flights.SearchRequest) (*flights.MCPEnvelope, error)
}

var _ FlightClient = (*flights.Client)(nil)
