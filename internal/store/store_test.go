package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/postcodes-io/internal/store"
	"github.com/yourusername/postcodes-io/postcode"
)

func openStore(t *testing.T, clock clockwork.Clock) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "data", "results.db"), store.WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	s := openStore(t, clock)

	lat, lon := 51.501009, -0.141588
	results := []postcode.BulkLookupResult{
		{Query: "sw1a 1aa", Result: &postcode.Result{Postcode: "SW1A 1AA", Latitude: &lat, Longitude: &lon, AdminDistrict: "Westminster"}},
		{Query: "NOPE", Result: nil},
	}

	id, err := s.SaveRun(ctx, results)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	recs, err := s.Records(ctx, id)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "sw1a 1aa", recs[0].Query)
	assert.Equal(t, "SW1A1AA", recs[0].Key)
	require.NotNil(t, recs[0].Result)
	assert.Equal(t, "Westminster", recs[0].Result.AdminDistrict)
	require.NotNil(t, recs[0].Result.Latitude)
	assert.InDelta(t, lat, *recs[0].Result.Latitude, 1e-9)

	assert.Equal(t, "NOPE", recs[1].Query)
	assert.Nil(t, recs[1].Result)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, 2, runs[0].Total)
	assert.Equal(t, 1, runs[0].Found)
	assert.True(t, runs[0].CreatedAt.Equal(clock.Now()))
}

func TestRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	s := openStore(t, clock)

	first, err := s.SaveRun(ctx, nil)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := s.SaveRun(ctx, []postcode.BulkLookupResult{{Query: "IP4"}})
	require.NoError(t, err)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)
}

func TestRecordsUnknownRun(t *testing.T) {
	s := openStore(t, clockwork.NewFakeClock())
	_, err := s.Records(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, store.ErrNoRun))
}
