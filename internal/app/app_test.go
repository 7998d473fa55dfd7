package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/postcodes-io/internal/app"
	"github.com/yourusername/postcodes-io/internal/config"
)

func TestNewWiresClient(t *testing.T) {
	t.Setenv(config.EnvConfigFile, "")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":200,"result":true}`)
	}))
	defer srv.Close()

	var logs bytes.Buffer
	a, err := app.New(context.Background(), app.Overrides{BaseURL: srv.URL, LogLevel: "debug"}, &logs)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, a.Client.BaseURL())

	resp, err := a.Client.ValidatePostcode(context.Background(), "SW1A1AA")
	require.NoError(t, err)
	assert.True(t, resp.Result)

	assert.Contains(t, logs.String(), "calling postcodes.io")
	assert.Contains(t, logs.String(), "component=postcodes")

	n, err := testutil.GatherAndCount(a.Registry, "postcodes_client_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewRejectsBadOverride(t *testing.T) {
	t.Setenv(config.EnvConfigFile, "")
	_, err := app.New(context.Background(), app.Overrides{BaseURL: "not a url"}, io.Discard)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))

	_, err = app.New(context.Background(), app.Overrides{LogLevel: "chatty"}, io.Discard)
	assert.EqualError(t, err, "unknown log level: chatty")
}
