// Package batch looks up postcode lists longer than one bulk request allows.
package batch

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/postcodes-io/postcode"
)

// MaxBulkSize is the most postcodes postcodes.io accepts per bulk request.
const MaxBulkSize = 100

// BulkLooker is the part of postcode.Client used by Runner.
type BulkLooker interface {
	BulkLookup(ctx context.Context, postcodes []string, filters ...postcode.Filter) (*postcode.BulkLookupResponse, error)
}

// Runner splits postcode lists into bulk requests and issues them
// concurrently.
type Runner struct {
	client      BulkLooker
	concurrency int
	log         *slog.Logger
}

// New creates a Runner issuing at most concurrency requests at once.
func New(client BulkLooker, concurrency int, log *slog.Logger) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Runner{client: client, concurrency: concurrency, log: log}
}

// Lookup returns one result per input postcode, in input order. The first
// failed request cancels the rest and its error is returned.
func (r *Runner) Lookup(ctx context.Context, postcodes []string, filters ...postcode.Filter) ([]postcode.BulkLookupResult, error) {
	chunks := Chunk(postcodes, MaxBulkSize)
	parts := make([][]postcode.BulkLookupResult, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			resp, err := r.client.BulkLookup(ctx, chunk, filters...)
			if err != nil {
				return fmt.Errorf("bulk lookup %d/%d: %w", i+1, len(chunks), err)
			}
			parts[i] = resp.Result
			r.log.DebugContext(ctx, "bulk chunk done", "chunk", i+1, "of", len(chunks), "size", len(chunk))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]postcode.BulkLookupResult, 0, len(postcodes))
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}

// Chunk splits s into consecutive slices of at most size elements.
func Chunk(s []string, size int) [][]string {
	var out [][]string
	for len(s) > size {
		out = append(out, s[:size:size])
		s = s[size:]
	}
	if len(s) > 0 {
		out = append(out, s)
	}
	return out
}
