package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/postcodes-io/api"
	"github.com/yourusername/postcodes-io/postcode"
)

type fakeLooker struct {
	got string
	err error
}

func (f *fakeLooker) LookupPostcode(_ context.Context, pc string) (*postcode.PostcodeResponse, error) {
	f.got = pc
	if f.err != nil {
		return nil, f.err
	}
	return &postcode.PostcodeResponse{Status: 200, Result: &postcode.Result{Postcode: pc}}, nil
}

type fakeBatch struct {
	got     []string
	filters []postcode.Filter
	err     error
}

func (f *fakeBatch) Lookup(_ context.Context, pcs []string, filters ...postcode.Filter) ([]postcode.BulkLookupResult, error) {
	f.got, f.filters = pcs, filters
	if f.err != nil {
		return nil, f.err
	}
	out := make([]postcode.BulkLookupResult, len(pcs))
	for i, pc := range pcs {
		out[i] = postcode.BulkLookupResult{Query: pc}
	}
	return out, nil
}

func newServer(l *fakeLooker, b *fakeBatch, g prometheus.Gatherer) *httptest.Server {
	return httptest.NewServer(api.NewServer(l, b, g, nil).Handler())
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	srv := newServer(&fakeLooker{}, &fakeBatch{}, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestLookup(t *testing.T) {
	l := &fakeLooker{}
	srv := newServer(l, &fakeBatch{}, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/postcodes/SW1A%201AA")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body postcode.PostcodeResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "SW1A 1AA", l.got)
	require.NotNil(t, body.Result)
	assert.Equal(t, "SW1A 1AA", body.Result.Postcode)
}

func TestLookupRelaysAPIStatus(t *testing.T) {
	l := &fakeLooker{err: &postcode.ResponseError{StatusCode: http.StatusNotFound, Message: "Postcode not found"}}
	srv := newServer(l, &fakeBatch{}, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/postcodes/NOPE")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]any
	decodeBody(t, resp, &body)
	assert.Equal(t, "Postcode not found", body["error"])
}

func TestLookupTransportFailure(t *testing.T) {
	srv := newServer(&fakeLooker{err: errors.New("dial tcp: connection refused")}, &fakeBatch{}, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/postcodes/IP4")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestBulk(t *testing.T) {
	b := &fakeBatch{}
	srv := newServer(&fakeLooker{}, b, nil)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/postcodes/bulk", "application/json",
		strings.NewReader(`{"postcodes":["SW1A1AA","EC1A1BB"],"filter":["postcode"]}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body postcode.BulkLookupResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, []string{"SW1A1AA", "EC1A1BB"}, b.got)
	assert.Equal(t, []postcode.Filter{postcode.FilterPostcode}, b.filters)
	require.Len(t, body.Result, 2)
	assert.Equal(t, "EC1A1BB", body.Result[1].Query)
}

func TestBulkRejectsBadInput(t *testing.T) {
	srv := newServer(&fakeLooker{}, &fakeBatch{}, nil)
	defer srv.Close()

	tooMany := make([]string, api.MaxBulkPostcodes+1)
	for i := range tooMany {
		tooMany[i] = "IP4"
	}
	large, err := json.Marshal(map[string][]string{"postcodes": tooMany})
	require.NoError(t, err)

	for name, body := range map[string]string{
		"not json": "{",
		"empty":    `{"postcodes":[]}`,
		"too many": string(large),
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/postcodes/bulk", "application/json", strings.NewReader(body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "postcodes_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	srv := newServer(&fakeLooker{}, &fakeBatch{}, reg)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "postcodes_test_total 1")
}
