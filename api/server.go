// Package api provides a lightweight HTTP gateway in front of postcodes.io.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourusername/postcodes-io/postcode"
)

// MaxBulkPostcodes bounds POST /api/postcodes/bulk.
const MaxBulkPostcodes = 500

// Looker is the part of postcode.Client used by the gateway.
type Looker interface {
	LookupPostcode(ctx context.Context, pc string) (*postcode.PostcodeResponse, error)
}

// BatchLooker looks up postcode lists of any length, see batch.Runner.
type BatchLooker interface {
	Lookup(ctx context.Context, postcodes []string, filters ...postcode.Filter) ([]postcode.BulkLookupResult, error)
}

// Server is the HTTP API server.
type Server struct {
	client   Looker
	batch    BatchLooker
	gatherer prometheus.Gatherer
	log      *slog.Logger
}

// NewServer creates a new API Server. A nil gatherer disables /metrics.
func NewServer(client Looker, batch BatchLooker, gatherer prometheus.Gatherer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{client: client, batch: batch, gatherer: gatherer, log: log}
}

// Routes registers all API routes.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/postcodes/{postcode}", s.handleLookup)
	mux.HandleFunc("POST /api/postcodes/bulk", s.handleBulk)
	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

// Handler returns the routes on a fresh mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Routes(mux)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "postcodes.io gateway"})
}

// GET /api/postcodes/{postcode}
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	pc := r.PathValue("postcode")
	resp, err := s.client.LookupPostcode(r.Context(), pc)
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /api/postcodes/bulk with {"postcodes": ["SW1A1AA", "EC1A1BB"]}
func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Postcodes []string          `json:"postcodes"`
		Filter    []postcode.Filter `json:"filter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(body.Postcodes) == 0 || len(body.Postcodes) > MaxBulkPostcodes {
		writeError(w, http.StatusBadRequest, "provide between 1 and 500 postcodes")
		return
	}
	results, err := s.batch.Lookup(r.Context(), body.Postcodes, body.Filter...)
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postcode.BulkLookupResponse{Status: http.StatusOK, Result: results})
}

// writeUpstreamError relays API errors with their status; anything else is
// a 502.
func (s *Server) writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	var re *postcode.ResponseError
	if errors.As(err, &re) {
		msg := re.Message
		if msg == "" {
			msg = http.StatusText(re.StatusCode)
		}
		writeError(w, re.StatusCode, msg)
		return
	}
	s.log.ErrorContext(r.Context(), "postcodes.io request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusBadGateway, "upstream request failed")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"status": status, "error": msg})
}

// ListenAndServe serves the routes on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	s.log.InfoContext(ctx, "gateway listening", "addr", addr)
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
