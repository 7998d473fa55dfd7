package postcode

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DefaultBaseURL is the public postcodes.io API root.
const DefaultBaseURL = "https://api.postcodes.io"

// Operation names stamped on the request context by Client.
const (
	OpLookupPostcode             = "lookup_postcode"
	OpQueryPostcode              = "query_postcode"
	OpBulkLookup                 = "bulk_lookup"
	OpRandomPostcodes            = "random_postcodes"
	OpAutoComplete               = "autocomplete"
	OpFindNearestPostcode        = "nearest_postcode"
	OpReverseGeocodePostcode     = "reverse_geocode"
	OpBulkReverseGeocodePostcode = "bulk_reverse_geocode"
	OpValidatePostcode           = "validate_postcode"
)

type operationKey struct{}

// ContextWithOperation returns a copy of ctx carrying the operation name.
// Middleware transports read it with OperationFromContext.
func ContextWithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey{}, op)
}

// OperationFromContext returns the operation name set by Client, or "".
func OperationFromContext(ctx context.Context) string {
	op, _ := ctx.Value(operationKey{}).(string)
	return op
}

// Client is a postcodes.io API client. It holds no mutable state and is
// safe for concurrent use.
type Client struct {
	baseURL   string
	transport Transport
	log       *slog.Logger
}

type clientConfig struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	transport  Transport
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*clientConfig)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(c *clientConfig) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithTransport replaces the default HTTPTransport. WithHTTPClient and
// WithUserAgent are ignored when it is set.
func WithTransport(t Transport) Option {
	return func(c *clientConfig) { c.transport = t }
}

// WithHTTPClient sets the *http.Client used by the default transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

// WithUserAgent sets the User-Agent sent by the default transport.
func WithUserAgent(ua string) Option {
	return func(c *clientConfig) { c.userAgent = ua }
}

// WithLogger sets the logger receiving one debug line per request.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient returns a new postcodes.io Client.
func NewClient(opts ...Option) *Client {
	cfg := clientConfig{
		baseURL: DefaultBaseURL,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	t := cfg.transport
	if t == nil {
		t = NewHTTPTransport(cfg.httpClient, cfg.userAgent)
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.baseURL, "/"),
		transport: t,
		log:       cfg.log,
	}
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LookupPostcode returns the record for a postcode. The API answers 404 for
// unknown postcodes, see IsNotFound.
func (c *Client) LookupPostcode(ctx context.Context, postcode string) (*PostcodeResponse, error) {
	return get[PostcodeResponse](ctx, c, OpLookupPostcode, c.baseURL+"/postcodes/"+postcode)
}

// QueryPostcode searches for postcodes starting with postcode. A zero limit
// leaves the API default of 10.
func (c *Client) QueryPostcode(ctx context.Context, postcode string, limit int) (*QueryResponse, error) {
	u := c.baseURL + "/postcodes/?q=" + url.QueryEscape(postcode)
	if limit != 0 {
		u += "&limit=" + strconv.Itoa(limit)
	}
	return get[QueryResponse](ctx, c, OpQueryPostcode, u)
}

// BulkLookup looks up to 100 postcodes in one request. Filters restrict the
// attributes returned for each result.
func (c *Client) BulkLookup(ctx context.Context, postcodes []string, filters ...Filter) (*BulkLookupResponse, error) {
	u := c.baseURL + "/postcodes"
	if len(filters) > 0 {
		u += "?filter=" + JoinFilters(filters)
	}
	return post[BulkLookupResponse](ctx, c, OpBulkLookup, u, &BulkLookupRequest{Postcodes: postcodes})
}

// GetRandomPostcodes returns a random postcode, optionally restricted to the
// given outcodes.
func (c *Client) GetRandomPostcodes(ctx context.Context, outcodes ...string) (*PostcodeResponse, error) {
	u := c.baseURL + "/random/postcodes"
	if len(outcodes) > 0 {
		u += "?outcode=" + strings.Join(outcodes, ",")
	}
	return get[PostcodeResponse](ctx, c, OpRandomPostcodes, u)
}

// AutoComplete returns the postcodes completing a partial postcode.
func (c *Client) AutoComplete(ctx context.Context, postcode string, limit int) (*AutoCompleteResponse, error) {
	u := c.baseURL + "/postcodes/" + escapePath(postcode) + "/autocomplete"
	if limit != 0 {
		u += "?limit=" + strconv.Itoa(limit)
	}
	return get[AutoCompleteResponse](ctx, c, OpAutoComplete, u)
}

// FindNearestPostcode returns the postcodes nearest to postcode, closest
// first. params may be nil.
func (c *Client) FindNearestPostcode(ctx context.Context, postcode string, params *NearestParams) (*NearestResponse, error) {
	u := c.baseURL + "/postcodes/" + escapePath(postcode) + "/nearest"
	if !IsEmpty(params) {
		u += "?" + BuildQueryString(params)
	}
	return get[NearestResponse](ctx, c, OpFindNearestPostcode, u)
}

// ReverseGeocodePostcode returns the postcodes nearest to a coordinate.
// params may be nil.
func (c *Client) ReverseGeocodePostcode(ctx context.Context, lat, lon float64, params *ReverseGeocodeParams) (*ReverseGeocodeResponse, error) {
	u := c.baseURL + "/postcodes?lon=" + formatCoord(lon) + "&lat=" + formatCoord(lat)
	if !IsEmpty(params) {
		u += "&" + BuildQueryString(params)
	}
	return get[ReverseGeocodeResponse](ctx, c, OpReverseGeocodePostcode, u)
}

// BulkReverseGeocodePostcode reverse geocodes up to 100 coordinates in one
// request. req is sent as the body as given; params may be nil.
func (c *Client) BulkReverseGeocodePostcode(ctx context.Context, req *BulkReverseGeocodeRequest, params *BulkReverseGeocodeParams) (*BulkReverseGeocodeResponse, error) {
	u := c.baseURL + "/postcodes"
	if !IsEmpty(params) {
		u += "?" + BuildQueryString(params)
	}
	return post[BulkReverseGeocodeResponse](ctx, c, OpBulkReverseGeocodePostcode, u, req)
}

// ValidatePostcode reports whether postcode exists in the API's dataset.
func (c *Client) ValidatePostcode(ctx context.Context, postcode string) (*ValidateResponse, error) {
	return get[ValidateResponse](ctx, c, OpValidatePostcode, c.baseURL+"/postcodes/"+escapePath(postcode)+"/validate")
}

func get[T any](ctx context.Context, c *Client, op, u string) (*T, error) {
	ctx = ContextWithOperation(ctx, op)
	c.log.DebugContext(ctx, "calling postcodes.io", "op", op, "method", http.MethodGet, "url", u)
	var out T
	if err := c.transport.Get(ctx, u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func post[T any](ctx context.Context, c *Client, op, u string, body any) (*T, error) {
	ctx = ContextWithOperation(ctx, op)
	c.log.DebugContext(ctx, "calling postcodes.io", "op", op, "method", http.MethodPost, "url", u)
	var out T
	if err := c.transport.Post(ctx, u, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
