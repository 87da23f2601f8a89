package flights

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ServerInfo is the metadata served at GET /
type ServerInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// HealthStatus is the reply of GET /api/health
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Service   string    `json:"service"`
}

// Healthy reports whether the server described itself as healthy
func (h *HealthStatus) Healthy() bool {
	return strings.EqualFold(h.Status, "healthy")
}

// FlightOffer is a single flight as priced by the server
type FlightOffer struct {
	Airline       string  `json:"airline"`
	FlightNumber  string  `json:"flightNumber"`
	DepartureTime string  `json:"departureTime"`
	ArrivalTime   string  `json:"arrivalTime"`
	Duration      string  `json:"duration"`
	Stops         int     `json:"stops"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
}

// SearchResult is the endpoint-agnostic view of a flight search response
type SearchResult struct {
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	DepartureDate string  `json:"departureDate"`
	ReturnDate    *string `json:"returnDate,omitempty"`
	Passengers    int     `json:"passengers"`
	CabinClass    string  `json:"cabinClass"`
	// Flights keeps the server's order.
	Flights   []FlightOffer `json:"flights"`
	SearchURL string        `json:"searchUrl"`
}

// IsRoundTrip reports whether the result carries a return date
func (r *SearchResult) IsRoundTrip() bool {
	return r.ReturnDate != nil && *r.ReturnDate != ""
}

// MCPEnvelope wraps a SearchResult returned by the unified endpoint
type MCPEnvelope struct {
	Tool    string        `json:"tool"`
	Content *SearchResult `json:"content"`
}

var (
	serverInfoKeys   = []string{"name", "version", "description"}
	healthKeys       = []string{"status", "timestamp", "version", "service"}
	envelopeKeys     = []string{"tool", "content"}
	searchResultKeys = []string{"origin", "destination", "departureDate", "passengers", "cabinClass", "flights", "searchUrl"}
	flightOfferKeys  = []string{"airline", "flightNumber", "departureTime", "arrivalTime", "duration", "stops", "price", "currency"}
)

// MalformedError lists what was wrong with a response document. It matches
// ErrMalformedResponse under errors.Is.
type MalformedError struct {
	Problems []string
	Err      error
}

func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot decode: %v", e.Err)
	}
	return strings.Join(e.Problems, "; ")
}

func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedResponse
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// DecodeServerInfo decodes the GET / document
func DecodeServerInfo(data []byte) (*ServerInfo, error) {
	doc, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	if problems := missingKeys(doc, "", serverInfoKeys); len(problems) > 0 {
		return nil, &MalformedError{Problems: problems}
	}

	var info ServerInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, &MalformedError{Err: err}
	}
	return &info, nil
}

// DecodeHealthStatus decodes the GET /api/health document
func DecodeHealthStatus(data []byte) (*HealthStatus, error) {
	doc, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	if problems := missingKeys(doc, "", healthKeys); len(problems) > 0 {
		return nil, &MalformedError{Problems: problems}
	}

	var health HealthStatus
	if err := json.Unmarshal(data, &health); err != nil {
		return nil, &MalformedError{Err: err}
	}
	return &health, nil
}

// DecodeSearchResult decodes the GET /api/flights/search document, which is
// the search result itself.
func DecodeSearchResult(data []byte) (*SearchResult, error) {
	return decodeSearchResult(data, "")
}

// DecodeMCPEnvelope decodes the POST /api/mcp/search document and unwraps
// its content into the same SearchResult shape the REST endpoint yields.
func DecodeMCPEnvelope(data []byte) (*MCPEnvelope, error) {
	doc, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	if problems := missingKeys(doc, "", envelopeKeys); len(problems) > 0 {
		return nil, &MalformedError{Problems: problems}
	}

	var tool string
	if err := json.Unmarshal(doc["tool"], &tool); err != nil {
		return nil, &MalformedError{Err: err}
	}

	content, err := decodeSearchResult(doc["content"], "content.")
	if err != nil {
		return nil, err
	}
	return &MCPEnvelope{Tool: tool, Content: content}, nil
}

func decodeSearchResult(data []byte, prefix string) (*SearchResult, error) {
	doc, err := decodeObject(data)
	if err != nil {
		return nil, err
	}

	problems := missingKeys(doc, prefix, searchResultKeys)
	if raw, ok := doc["flights"]; ok && !isNull(raw) {
		var offers []map[string]json.RawMessage
		if err := json.Unmarshal(raw, &offers); err != nil {
			return nil, &MalformedError{Err: err}
		}
		for i, offer := range offers {
			problems = append(problems, missingKeys(offer, fmt.Sprintf("%sflights[%d].", prefix, i), flightOfferKeys)...)
		}
	}
	if len(problems) > 0 {
		return nil, &MalformedError{Problems: problems}
	}

	var result SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &MalformedError{Err: err}
	}
	for i, f := range result.Flights {
		if f.Stops < 0 {
			problems = append(problems, fmt.Sprintf("%sflights[%d].stops is negative", prefix, i))
		}
	}
	if len(problems) > 0 {
		return nil, &MalformedError{Problems: problems}
	}
	return &result, nil
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedError{Err: err}
	}
	if doc == nil {
		return nil, &MalformedError{Problems: []string{"document is null"}}
	}
	return doc, nil
}

// missingKeys names every key absent from doc or set to null
func missingKeys(doc map[string]json.RawMessage, prefix string, keys []string) []string {
	var missing []string
	for _, key := range keys {
		raw, ok := doc[key]
		if !ok || isNull(raw) {
			missing = append(missing, fmt.Sprintf("missing %s%s", prefix, key))
		}
	}
	return missing
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
