// Package display renders flight search results as plain text.
//
// Every function here is pure: it reads its input and returns a string,
// leaving writing to the caller.
package display

import (
	"errors"
	"fmt"
	"strings"

	"github.com/va6996/flightsearch/plugins/flights"
	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

const ruleWidth = 80

var rule = strings.Repeat("=", ruleWidth)

// CabinClass turns a wire cabin class into its display form,
// e.g. "premium_economy" becomes "Premium Economy".
func CabinClass(cabin string) string {
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Title(language.English).String(strings.ReplaceAll(cabin, "_", " "))
}

// Price formats an amount with two decimals and no digit grouping after its
// currency code
func Price(amount float64, code string) string {
	return fmt.Sprintf("%s %.2f", CurrencyCode(code), amount)
}

// CurrencyCode canonicalizes an ISO 4217 code. Codes x/text does not know
// are upper-cased and shown anyway.
func CurrencyCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	unit, err := currency.ParseISO(code)
	if err != nil {
		return code
	}
	return unit.String()
}

// SearchResult renders the header, one block per flight in the order the
// server returned them, and the search URL.
func SearchResult(r *flights.SearchResult) string {
	var b strings.Builder

	b.WriteString("\n" + rule + "\n")
	fmt.Fprintf(&b, "Flight Search Results: %s → %s\n", r.Origin, r.Destination)
	fmt.Fprintf(&b, "Departure: %s\n", r.DepartureDate)
	if r.IsRoundTrip() {
		fmt.Fprintf(&b, "Return: %s\n", *r.ReturnDate)
	}
	fmt.Fprintf(&b, "Passengers: %d | Class: %s\n", r.Passengers, CabinClass(r.CabinClass))
	b.WriteString(rule + "\n\n")

	if len(r.Flights) == 0 {
		b.WriteString("No flights found.\n\n")
	}
	for i, f := range r.Flights {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, f.Airline, f.FlightNumber)
		fmt.Fprintf(&b, "   Departure: %s | Arrival: %s\n", f.DepartureTime, f.ArrivalTime)
		fmt.Fprintf(&b, "   Duration: %s | Stops: %d\n", f.Duration, f.Stops)
		fmt.Fprintf(&b, "   Price: %s\n\n", Price(f.Price, f.Currency))
	}

	fmt.Fprintf(&b, "Search URL: %s\n", r.SearchURL)
	b.WriteString(rule + "\n")
	return b.String()
}

// MCPResult renders the reporting tool followed by the unwrapped result
func MCPResult(e *flights.MCPEnvelope) string {
	return fmt.Sprintf("MCP Tool: %s\n", e.Tool) + SearchResult(e.Content)
}

// ServerInfo renders the server metadata
func ServerInfo(info *flights.ServerInfo) string {
	return fmt.Sprintf("   Server: %s\n   Version: %s\n   Description: %s\n", info.Name, info.Version, info.Description)
}

// Failure explains err to a person, with remediation when the server could
// not be reached at all.
func Failure(err error, baseURL string) string {
	switch {
	case errors.Is(err, flights.ErrConnectionUnavailable):
		return fmt.Sprintf("\nError: Could not connect to the server.\n   Make sure the server is running on %s\n", baseURL)
	case errors.Is(err, flights.ErrMalformedResponse):
		return fmt.Sprintf("\nError: The server sent a malformed response.\n   %v\n", err)
	default:
		return fmt.Sprintf("\nError: %v\n", err)
	}
}
