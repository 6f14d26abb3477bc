// Package prismic is a small client for the Prismic document API. It covers
// the query shapes a read-only site needs: predicate search, lookup by UID,
// and following pagination cursors.
package prismic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/pejamp/spacetraveling/prismic"

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("prismic: document not found")
	// ErrForeignCursor is returned when a cursor does not point at the
	// configured API host.
	ErrForeignCursor = errors.New("prismic: cursor does not belong to the API endpoint")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("prismic: api returned %d", e.StatusCode)
	}
	return fmt.Sprintf("prismic: api returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to one repository's API endpoint, e.g.
// https://spacetraveling.cdn.prismic.io/api/v2.
type Client struct {
	endpoint    *url.URL
	accessToken string
	httpClient  *http.Client
	tracer      trace.Tracer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the request timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: d}
	}
}

// NewClient returns a client for endpoint. accessToken may be empty for
// public repositories.
func NewClient(endpoint, accessToken string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("prismic: parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("prismic: endpoint %q must be an absolute http(s) URL", endpoint)
	}
	c := &Client{
		endpoint:    u,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		tracer:      otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// API fetches the repository entry point.
func (c *Client) API(ctx context.Context) (API, error) {
	ctx, span := c.tracer.Start(ctx, "prismic.API")
	defer span.End()

	var api API
	u := *c.endpoint
	u.RawQuery = c.withToken(url.Values{}).Encode()
	if err := c.get(ctx, u.String(), &api); err != nil {
		recordError(span, err)
		return API{}, err
	}
	return api, nil
}

// MasterRef returns the ref of the currently published content.
func (c *Client) MasterRef(ctx context.Context) (string, error) {
	api, err := c.API(ctx)
	if err != nil {
		return "", err
	}
	ref := api.Master()
	if ref == "" {
		return "", errors.New("prismic: api lists no master ref")
	}
	return ref, nil
}

// Query searches documents matching all predicates.
func (c *Client) Query(ctx context.Context, preds []Predicate, opts QueryOptions) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "prismic.Query", trace.WithAttributes(
		attribute.String("prismic.q", EncodeQuery(preds)),
		attribute.Int("prismic.page_size", opts.PageSize),
		attribute.Bool("prismic.preview", opts.Ref != ""),
	))
	defer span.End()

	ref := opts.Ref
	if ref == "" {
		var err error
		if ref, err = c.MasterRef(ctx); err != nil {
			recordError(span, err)
			return nil, err
		}
	}

	v := url.Values{}
	v.Set("ref", ref)
	v.Set("q", EncodeQuery(preds))
	if len(opts.Fetch) > 0 {
		v.Set("fetch", strings.Join(opts.Fetch, ","))
	}
	if opts.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.Page > 0 {
		v.Set("page", strconv.Itoa(opts.Page))
	}
	if len(opts.Orderings) > 0 {
		v.Set("orderings", EncodeOrderings(opts.Orderings))
	}

	u := *c.endpoint
	u.Path += "/documents/search"
	u.RawQuery = c.withToken(v).Encode()

	var resp Response
	if err := c.get(ctx, u.String(), &resp); err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("prismic.results", len(resp.Results)))
	stripTokens(&resp)
	return &resp, nil
}

// GetByUID returns the document of docType with the given uid, or ErrNotFound.
func (c *Client) GetByUID(ctx context.Context, docType, uid string, opts QueryOptions) (*Document, error) {
	return c.first(ctx, []Predicate{At(UIDPath(docType), uid)}, opts)
}

// GetByID returns the document with the given id, or ErrNotFound.
func (c *Client) GetByID(ctx context.Context, id string, opts QueryOptions) (*Document, error) {
	return c.first(ctx, []Predicate{At(PathID, id)}, opts)
}

func (c *Client) first(ctx context.Context, preds []Predicate, opts QueryOptions) (*Document, error) {
	opts.PageSize = 1
	resp, err := c.Query(ctx, preds, opts)
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, ErrNotFound
	}
	return &resp.Results[0], nil
}

// FetchPage follows a next_page cursor returned by an earlier query. The
// cursor is used as-is apart from adding the access token; it must point at
// the client's endpoint host.
func (c *Client) FetchPage(ctx context.Context, cursor string) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "prismic.FetchPage")
	defer span.End()

	u, err := url.Parse(cursor)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("prismic: parse cursor: %w", err)
	}
	if !c.Owns(u) {
		recordError(span, ErrForeignCursor)
		return nil, ErrForeignCursor
	}
	if c.accessToken != "" && u.Query().Get("access_token") == "" {
		u.RawQuery = c.withToken(u.Query()).Encode()
	}

	var resp Response
	if err := c.get(ctx, u.String(), &resp); err != nil {
		recordError(span, err)
		return nil, err
	}
	stripTokens(&resp)
	return &resp, nil
}

// Owns reports whether u points at the client's API host.
func (c *Client) Owns(u *url.URL) bool {
	return strings.EqualFold(u.Scheme, c.endpoint.Scheme) && strings.EqualFold(u.Host, c.endpoint.Host)
}

func (c *Client) withToken(v url.Values) url.Values {
	if c.accessToken != "" {
		v.Set("access_token", c.accessToken)
	}
	return v
}

// stripTokens removes the access token the API echoes into pagination
// cursors. Cursors are rendered into pages; FetchPage adds the token back.
func stripTokens(resp *Response) {
	for _, cur := range []*string{resp.NextPage, resp.PrevPage} {
		if cur == nil {
			continue
		}
		u, err := url.Parse(*cur)
		if err != nil {
			continue
		}
		q := u.Query()
		if !q.Has("access_token") {
			continue
		}
		q.Del("access_token")
		u.RawQuery = q.Encode()
		*cur = u.String()
	}
}

func (c *Client) get(ctx context.Context, rawURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("prismic: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("prismic: request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decodeAPIError(res)
	}
	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return fmt.Errorf("prismic: decode response: %w", err)
	}
	return nil
}

func decodeAPIError(res *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	apiErr := &APIError{StatusCode: res.StatusCode}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
