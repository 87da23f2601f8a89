package flights

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format both endpoints expect
const DateLayout = "2006-01-02"

// CabinClass is the passenger service tier
type CabinClass string

const (
	CabinEconomy        CabinClass = "economy"
	CabinPremiumEconomy CabinClass = "premium_economy"
	CabinBusiness       CabinClass = "business"
	CabinFirst          CabinClass = "first"
)

// Valid reports whether c is one of the four known tiers
func (c CabinClass) Valid() bool {
	switch c {
	case CabinEconomy, CabinPremiumEconomy, CabinBusiness, CabinFirst:
		return true
	}
	return false
}

// TripType distinguishes one-way from round-trip searches
type TripType int

const (
	TripOneWay TripType = iota
	TripRoundTrip
)

func (t TripType) String() string {
	if t == TripRoundTrip {
		return "round_trip"
	}
	return "one_way"
}

// SearchRequest is a logical search intent, independent of endpoint
type SearchRequest struct {
	Origin        string
	Destination   string
	DepartureDate time.Time
	// ReturnDate is nil for one-way trips
	ReturnDate *time.Time
	Passengers int
	CabinClass CabinClass
}

// OneWay builds a one-way search request
func OneWay(origin, destination string, departure time.Time, passengers int, cabin CabinClass) SearchRequest {
	return SearchRequest{
		Origin:        origin,
		Destination:   destination,
		DepartureDate: departure,
		Passengers:    passengers,
		CabinClass:    cabin,
	}
}

// RoundTrip builds a round-trip search request. A return date before the
// departure is left for the server to reject.
func RoundTrip(origin, destination string, departure, ret time.Time, passengers int, cabin CabinClass) SearchRequest {
	r := OneWay(origin, destination, departure, passengers, cabin)
	r.ReturnDate = &ret
	return r
}

// TripType derives the trip type from the presence of a return date
func (r SearchRequest) TripType() TripType {
	if r.ReturnDate != nil {
		return TripRoundTrip
	}
	return TripOneWay
}

// cabin lower-cases and trims the cabin class. Unknown values pass through
// untouched so the server's validation error reaches the caller.
func (r SearchRequest) cabin() string {
	return strings.ToLower(strings.TrimSpace(string(r.CabinClass)))
}

func (r SearchRequest) departure() string {
	return r.DepartureDate.Format(DateLayout)
}

// Query encodes r for GET /api/flights/search. The server treats the mere
// presence of returnDate as a round-trip, so the key is omitted entirely for
// one-way searches.
func (r SearchRequest) Query() url.Values {
	q := url.Values{}
	q.Set("origin", r.Origin)
	q.Set("destination", r.Destination)
	q.Set("departureDate", r.departure())
	q.Set("passengers", strconv.Itoa(r.Passengers))
	q.Set("cabinClass", r.cabin())
	if r.TripType() == TripRoundTrip {
		q.Set("returnDate", r.ReturnDate.Format(DateLayout))
	}
	return q
}

// MCPSearchBody is the JSON body of POST /api/mcp/search
type MCPSearchBody struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	// ReturnDate is always serialized; null marks a one-way search.
	ReturnDate *string `json:"returnDate"`
	Passengers int     `json:"passengers"`
	CabinClass string  `json:"cabinClass"`
}

// MCPBody encodes r for the unified endpoint, which tells trip types apart
// by the value of returnDate rather than by its presence.
func (r SearchRequest) MCPBody() MCPSearchBody {
	body := MCPSearchBody{
		Origin:        r.Origin,
		Destination:   r.Destination,
		DepartureDate: r.departure(),
		Passengers:    r.Passengers,
		CabinClass:    r.cabin(),
	}
	if r.TripType() == TripRoundTrip {
		ret := r.ReturnDate.Format(DateLayout)
		body.ReturnDate = &ret
	}
	return body
}
