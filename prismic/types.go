package prismic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// TimeLayout is the timestamp layout used by the document API.
const TimeLayout = "2006-01-02T15:04:05-0700"

// Time is a timestamp in the API's wire format.
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.Parse(TimeLayout, s)
	if err != nil {
		// Some endpoints emit RFC 3339 with a colon in the offset.
		parsed, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("prismic: parse time %q: %w", s, err)
		}
	}
	t.Time = parsed
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(TimeLayout))
}

// Document is a single content record.
type Document struct {
	ID                   string          `json:"id"`
	UID                  string          `json:"uid,omitempty"`
	Type                 string          `json:"type"`
	Href                 string          `json:"href,omitempty"`
	Tags                 []string        `json:"tags"`
	FirstPublicationDate *Time           `json:"first_publication_date"`
	LastPublicationDate  *Time           `json:"last_publication_date"`
	Lang                 string          `json:"lang,omitempty"`
	Data                 json.RawMessage `json:"data"`
}

// DecodeData unmarshals the document's data fields into v. A document with
// no data leaves v untouched.
func (d Document) DecodeData(v any) error {
	if len(d.Data) == 0 || bytes.Equal(d.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(d.Data, v); err != nil {
		return fmt.Errorf("prismic: decode %s document %q: %w", d.Type, d.ID, err)
	}
	return nil
}

// Response is one page of query results. NextPage is the cursor for the
// following page, empty when there is none.
type Response struct {
	Page             int        `json:"page"`
	ResultsPerPage   int        `json:"results_per_page"`
	ResultsSize      int        `json:"results_size"`
	TotalResultsSize int        `json:"total_results_size"`
	TotalPages       int        `json:"total_pages"`
	NextPage         *string    `json:"next_page"`
	PrevPage         *string    `json:"prev_page"`
	Results          []Document `json:"results"`
}

// Next returns the next-page cursor or "".
func (r *Response) Next() string {
	if r == nil || r.NextPage == nil {
		return ""
	}
	return *r.NextPage
}

// Ref is a content release reference; the master ref points at published content.
type Ref struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	IsMasterRef bool   `json:"isMasterRef"`
}

// API describes the repository entry point.
type API struct {
	Refs []Ref `json:"refs"`
}

// Master returns the master ref, or "" if the API lists none.
func (a API) Master() string {
	for _, r := range a.Refs {
		if r.IsMasterRef {
			return r.Ref
		}
	}
	return ""
}
