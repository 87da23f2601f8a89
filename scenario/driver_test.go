package scenario

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/va6996/flightsearch/plugins/flights"
)

var fixedNow = time.Date(2026, 10, 18, 15, 4, 5, 0, time.UTC)

// echoServer answers every search with a result built from the request it
// received, so the rendered output shows exactly what was sent
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()

	offer := flights.FlightOffer{
		Airline: "Delta", FlightNumber: "DL 100", DepartureTime: "08:00", ArrivalTime: "11:30",
		Duration: "5h 30m", Stops: 0, Price: 249.99, Currency: "USD",
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/":
			json.NewEncoder(w).Encode(flights.ServerInfo{Name: "Google Flights MCP Server", Version: "1.0.0", Description: "MCP Server for searching Google Flights"})
		case "/api/flights/search":
			q := r.URL.Query()
			passengers, _ := strconv.Atoi(q.Get("passengers"))
			result := flights.SearchResult{
				Origin: q.Get("origin"), Destination: q.Get("destination"), DepartureDate: q.Get("departureDate"),
				Passengers: passengers, CabinClass: q.Get("cabinClass"), Flights: []flights.FlightOffer{offer},
				SearchURL: "https://www.google.com/travel/flights",
			}
			if _, ok := q["returnDate"]; ok {
				ret := q.Get("returnDate")
				result.ReturnDate = &ret
			}
			json.NewEncoder(w).Encode(result)
		case "/api/mcp/search":
			var body flights.MCPSearchBody
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(flights.MCPEnvelope{Tool: "search_flights", Content: &flights.SearchResult{
				Origin: body.Origin, Destination: body.Destination, DepartureDate: body.DepartureDate,
				ReturnDate: body.ReturnDate, Passengers: body.Passengers, CabinClass: body.CabinClass,
				Flights: []flights.FlightOffer{offer}, SearchURL: "https://www.google.com/travel/flights",
			}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newDriver(baseURL string, out *bytes.Buffer) *Driver {
	d := NewDriver(flights.NewClient(baseURL, 5*time.Second), baseURL, out)
	d.Now = func() time.Time { return fixedNow }
	return d
}

// section returns the output between the heading of step n and the next one
func section(out string, n int) string {
	start := strings.Index(out, "\n"+strconv.Itoa(n)+". ")
	if start < 0 {
		return ""
	}
	rest := out[start+1:]
	if end := strings.Index(rest, "\n"+strconv.Itoa(n+1)+". "); end >= 0 {
		return rest[:end]
	}
	return rest
}

func TestDriver_Run(t *testing.T) {
	ts := echoServer(t)
	defer ts.Close()

	var out bytes.Buffer
	require.NoError(t, newDriver(ts.URL, &out).Run(context.Background()))
	text := out.String()

	t.Run("ServerInfo", func(t *testing.T) {
		s := section(text, 1)
		assert.Contains(t, s, "Server: Google Flights MCP Server")
		assert.Contains(t, s, "Version: 1.0.0")
	})

	t.Run("OneWayJFKToLAX", func(t *testing.T) {
		s := section(text, 2)
		assert.Contains(t, s, "Flight Search Results: JFK → LAX")
		assert.Equal(t, 1, strings.Count(s, "Departure: 2026-10-19\n"))
		assert.NotContains(t, s, "Return:")
		assert.Contains(t, s, "Passengers: 1 | Class: Economy")
	})

	t.Run("RoundTripSFOToNYC", func(t *testing.T) {
		s := section(text, 3)
		assert.Contains(t, s, "Flight Search Results: SFO → NYC")
		assert.Contains(t, s, "Departure: 2026-10-25\n")
		assert.Contains(t, s, "Return: 2026-11-01\n")
		assert.Contains(t, s, "Passengers: 2 | Class: Business")
	})

	t.Run("MCP", func(t *testing.T) {
		s := section(text, 4)
		assert.Contains(t, s, "MCP Tool: search_flights")
		assert.Contains(t, s, "Flight Search Results: LHR → TYO")
		assert.Contains(t, s, "Departure: 2026-11-17\n")
		assert.NotContains(t, s, "Return:")
		assert.Contains(t, s, "Passengers: 1 | Class: First")
	})

	assert.Contains(t, text, "All examples completed successfully!")
}

func TestDriver_Run_ServerUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	baseURL := ts.URL
	ts.Close()

	var out bytes.Buffer
	err := newDriver(baseURL, &out).Run(context.Background())

	require.Error(t, err)
	assert.True(t, flights.IsConnectionUnavailable(err))
	assert.Contains(t, err.Error(), "step 1")

	text := out.String()
	assert.Contains(t, text, "Could not connect to the server.")
	assert.Contains(t, text, "Make sure the server is running on "+baseURL)
	assert.NotContains(t, text, "2. Searching")
	assert.NotContains(t, text, "All examples completed successfully!")
}

// stubSearcher fails the call named in failOn and records the requests it saw
type stubSearcher struct {
	failOn   string
	requests []flights.SearchRequest
}

func (s *stubSearcher) GetServerInfo(ctx context.Context) (*flights.ServerInfo, error) {
	if s.failOn == "info" {
		return nil, errors.New("info failed")
	}
	return &flights.ServerInfo{Name: "stub", Version: "0", Description: "stub"}, nil
}

func (s *stubSearcher) SearchFlights(ctx context.Context, req flights.SearchRequest) (*flights.SearchResult, error) {
	s.requests = append(s.requests, req)
	if s.failOn == "search" {
		return nil, &flights.Error{Kind: flights.ErrMalformedResponse, Op: "SearchFlights", Err: &flights.MalformedError{Problems: []string{"missing flights"}}}
	}
	return &flights.SearchResult{Origin: req.Origin, Destination: req.Destination, Passengers: req.Passengers, CabinClass: string(req.CabinClass)}, nil
}

func (s *stubSearcher) SearchMCP(ctx context.Context, req flights.SearchRequest) (*flights.MCPEnvelope, error) {
	s.requests = append(s.requests, req)
	return &flights.MCPEnvelope{Tool: "search_flights", Content: &flights.SearchResult{Origin: req.Origin, Destination: req.Destination}}, nil
}

func TestDriver_Requests(t *testing.T) {
	stub := &stubSearcher{}
	var out bytes.Buffer
	d := NewDriver(stub, "http://stub", &out)
	d.Now = func() time.Time { return fixedNow }

	require.NoError(t, d.Run(context.Background()))
	require.Len(t, stub.requests, 3)

	oneWay, roundTrip, mcp := stub.requests[0], stub.requests[1], stub.requests[2]

	assert.Equal(t, flights.TripOneWay, oneWay.TripType())
	assert.Equal(t, fixedNow.AddDate(0, 0, 1), oneWay.DepartureDate)
	assert.Equal(t, flights.CabinEconomy, oneWay.CabinClass)

	assert.Equal(t, flights.TripRoundTrip, roundTrip.TripType())
	assert.Equal(t, fixedNow.AddDate(0, 0, 7), roundTrip.DepartureDate)
	assert.Equal(t, fixedNow.AddDate(0, 0, 14), *roundTrip.ReturnDate)
	assert.Equal(t, 2, roundTrip.Passengers)
	assert.Equal(t, flights.CabinBusiness, roundTrip.CabinClass)

	assert.Equal(t, flights.TripOneWay, mcp.TripType())
	assert.Equal(t, fixedNow.AddDate(0, 0, 30), mcp.DepartureDate)
	assert.Equal(t, flights.CabinFirst, mcp.CabinClass)
}

func TestDriver_StopsAtFirstFailure(t *testing.T) {
	t.Run("MalformedSearch", func(t *testing.T) {
		stub := &stubSearcher{failOn: "search"}
		var out bytes.Buffer
		d := NewDriver(stub, "http://stub", &out)

		err := d.Run(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, flights.ErrMalformedResponse)
		assert.Contains(t, err.Error(), "step 2")
		assert.Len(t, stub.requests, 1, "no further searches after the first failure")
		assert.Contains(t, out.String(), "malformed response")
		assert.NotContains(t, out.String(), "3. Searching")
	})

	t.Run("GenericFailure", func(t *testing.T) {
		stub := &stubSearcher{failOn: "info"}
		var out bytes.Buffer

		err := NewDriver(stub, "http://stub", &out).Run(context.Background())
		require.Error(t, err)
		assert.Empty(t, stub.requests)
		assert.Contains(t, out.String(), "Error: info failed")
	})
}
