// Package scenario walks through the example searches against a running
// flight-search server, one step after another.
package scenario

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	logcontext "github.com/va6996/flightsearch/context"
	"github.com/va6996/flightsearch/display"
	"github.com/va6996/flightsearch/log"
	"github.com/va6996/flightsearch/plugins"
	"github.com/va6996/flightsearch/plugins/flights"
)

// Driver runs the fixed sequence of example calls and writes what it finds
// to Out
type Driver struct {
	Client  plugins.FlightClient
	BaseURL string
	Out     io.Writer
	// Now anchors the relative travel dates
	Now func() time.Time
}

// NewDriver creates a driver that reports on out
func NewDriver(client plugins.FlightClient, baseURL string, out io.Writer) *Driver {
	return &Driver{
		Client:  client,
		BaseURL: baseURL,
		Out:     out,
		Now:     time.Now,
	}
}

type step struct {
	title string
	run   func(ctx context.Context) error
}

// steps builds the example sequence with dates relative to now
func (d *Driver) steps(now time.Time) []step {
	days := func(n int) time.Time { return now.AddDate(0, 0, n) }

	return []step{
		{
			title: "Getting server information",
			run: func(ctx context.Context) error {
				info, err := d.Client.GetServerInfo(ctx)
				if err != nil {
					return err
				}
				fmt.Fprint(d.Out, display.ServerInfo(info))
				return nil
			},
		},
		{
			title: "Searching for one-way flight (JFK → LAX)",
			run: d.search(flights.OneWay("JFK", "LAX", days(1), 1, flights.CabinEconomy)),
		},
		{
			title: "Searching for round-trip flight (SFO ⇄ NYC)",
			run: d.search(flights.RoundTrip("SFO", "NYC", days(7), days(14), 2, flights.CabinBusiness)),
		},
		{
			title: "Searching using MCP endpoint (LHR → TYO)",
			run: func(ctx context.Context) error {
				envelope, err := d.Client.SearchMCP(ctx, flights.OneWay("LHR", "TYO", days(30), 1, flights.CabinFirst))
				if err != nil {
					return err
				}
				fmt.Fprint(d.Out, display.MCPResult(envelope))
				return nil
			},
		},
	}
}

func (d *Driver) search(req flights.SearchRequest) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		result, err := d.Client.SearchFlights(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprint(d.Out, display.SearchResult(result))
		return nil
	}
}

// Run executes every step in order and stops at the first failure, which is
// both reported on Out and returned.
func (d *Driver) Run(ctx context.Context) error {
	ctx, requestID := logcontext.EnsureRequestID(ctx)
	log.Debugf(ctx, "Starting example run %s against %s", requestID, d.BaseURL)

	fmt.Fprintln(d.Out, "Flight Search Client Example")
	fmt.Fprintln(d.Out, strings.Repeat("=", 80))

	for i, s := range d.steps(d.Now()) {
		fmt.Fprintf(d.Out, "\n%d. %s...\n", i+1, s.title)
		if err := s.run(ctx); err != nil {
			log.Errorf(ctx, "Step %d (%s) failed: %v", i+1, s.title, err)
			fmt.Fprint(d.Out, display.Failure(err, d.BaseURL))
			return fmt.Errorf("step %d (%s): %w", i+1, s.title, err)
		}
	}

	fmt.Fprintln(d.Out, "\nAll examples completed successfully!")
	return nil
}
