// Command postcodes is a command line client for postcodes.io.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yourusername/postcodes-io/api"
	"github.com/yourusername/postcodes-io/internal/app"
	"github.com/yourusername/postcodes-io/internal/store"
	"github.com/yourusername/postcodes-io/postcode"
)

const banner = `
╔══════════════════════════════════════════════╗
║          UK Postcode Lookup (postcodes.io)   ║
╚══════════════════════════════════════════════╝
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type cli struct {
	out        io.Writer
	errOut     io.Writer
	overrides  app.Overrides
	jsonOutput bool
	app        *app.App
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "postcodes",
		Short:         "UK postcode lookup, geocoding and autocomplete",
		Long:          banner + "Query the free postcodes.io API from the command line.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context(), c.overrides, c.errOut)
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&c.overrides.ConfigPath, "config", "", "YAML config file (default $POSTCODES_CONFIG)")
	root.PersistentFlags().StringVar(&c.overrides.BaseURL, "base-url", "", "postcodes.io API root")
	root.PersistentFlags().StringVar(&c.overrides.LogLevel, "log-level", "", "debug, info, warn or error")
	root.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "Output raw API responses as JSON")

	root.AddCommand(
		c.lookupCmd(),
		c.bulkCmd(),
		c.queryCmd(),
		c.randomCmd(),
		c.autocompleteCmd(),
		c.nearestCmd(),
		c.reverseCmd(),
		c.bulkReverseCmd(),
		c.validateCmd(),
		c.runsCmd(),
		c.serveCmd(),
	)
	return root
}

func (c *cli) lookupCmd() *cobra.Command {
	var (
		filters []string
		dbPath  string
	)
	cmd := &cobra.Command{
		Use:     "lookup [POSTCODE...]",
		Short:   "Look up one or more postcodes",
		Args:    cobra.MinimumNArgs(1),
		Example: "  postcodes lookup SW1A1AA\n  postcodes lookup SW1A1AA EC1A1BB --db results.db",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 && dbPath == "" && len(filters) == 0 {
				resp, err := c.app.Client.LookupPostcode(ctx, args[0])
				if err != nil {
					return err
				}
				return c.print(resp, func() { printResult(c.out, args[0], resp.Result) })
			}
			return c.runBatch(ctx, args, toFilters(filters), dbPath)
		},
	}
	cmd.Flags().StringSliceVar(&filters, "filter", nil, "Attributes to keep, e.g. postcode,longitude,latitude")
	cmd.Flags().StringVar(&dbPath, "db", "", "Record the results in this SQLite file")
	return cmd
}

func (c *cli) bulkCmd() *cobra.Command {
	var (
		filters []string
		dbPath  string
		file    string
	)
	cmd := &cobra.Command{
		Use:     "bulk [POSTCODE...]",
		Short:   "Look up a list of postcodes, 100 per request",
		Example: "  postcodes bulk --file postcodes.txt --db results.db\n  cat postcodes.txt | postcodes bulk --file -",
		RunE: func(cmd *cobra.Command, args []string) error {
			pcs := append([]string(nil), args...)
			if file != "" {
				fromFile, err := readPostcodes(cmd.InOrStdin(), file)
				if err != nil {
					return err
				}
				pcs = append(pcs, fromFile...)
			}
			if len(pcs) == 0 {
				return errors.New("no postcodes given")
			}
			return c.runBatch(cmd.Context(), pcs, toFilters(filters), dbPath)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Read postcodes from a file, one per line (- for stdin)")
	cmd.Flags().StringSliceVar(&filters, "filter", nil, "Attributes to keep, e.g. postcode,longitude,latitude")
	cmd.Flags().StringVar(&dbPath, "db", "", "Record the results in this SQLite file")
	return cmd
}

func (c *cli) runBatch(ctx context.Context, pcs []string, filters []postcode.Filter, dbPath string) error {
	results, err := c.app.Batch.Lookup(ctx, pcs, filters...)
	if err != nil {
		return err
	}
	if dbPath != "" {
		if err := c.record(ctx, dbPath, results); err != nil {
			return err
		}
	}
	return c.print(postcode.BulkLookupResponse{Status: 200, Result: results}, func() {
		for i, r := range results {
			printResult(c.out, r.Query, r.Result)
			if i < len(results)-1 {
				fmt.Fprintln(c.out)
			}
		}
	})
}

// readPostcodes reads one postcode per line, skipping blanks and # comments.
func readPostcodes(stdin io.Reader, name string) ([]string, error) {
	r := stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var pcs []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pcs = append(pcs, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return pcs, nil
}

func (c *cli) queryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "query POSTCODE",
		Short: "Search postcodes by prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := c.app.Client.QueryPostcode(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			return c.print(resp, func() {
				for _, r := range resp.Result {
					fmt.Fprintf(c.out, "%-10s %s, %s\n", r.Postcode, r.AdminDistrict, r.Country)
				}
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum matches (API default 10, max 100)")
	return cmd
}

func (c *cli) randomCmd() *cobra.Command {
	var outcodes []string
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Fetch a random postcode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := c.app.Client.GetRandomPostcodes(cmd.Context(), outcodes...)
			if err != nil {
				return err
			}
			return c.print(resp, func() { printResult(c.out, "random", resp.Result) })
		},
	}
	cmd.Flags().StringSliceVar(&outcodes, "outcode", nil, "Restrict to outcodes, e.g. SW1,CM8")
	return cmd
}

func (c *cli) autocompleteCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "autocomplete PARTIAL",
		Short: "Complete a partial postcode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := c.app.Client.AutoComplete(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			return c.print(resp, func() {
				for _, pc := range resp.Result {
					fmt.Fprintln(c.out, pc)
				}
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum completions")
	return cmd
}

// geoFlags are the optional limit/radius/widesearch flags. Only flags the
// user actually passed are sent.
type geoFlags struct {
	limit      int
	radius     int
	widesearch bool
}

func (g *geoFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&g.limit, "limit", 0, "Maximum postcodes returned")
	cmd.Flags().IntVar(&g.radius, "radius", 0, "Search radius in metres (max 2000)")
	cmd.Flags().BoolVar(&g.widesearch, "widesearch", false, "Search up to 20km")
}

func (g *geoFlags) values(cmd *cobra.Command) (limit, radius *int, widesearch *bool) {
	if cmd.Flags().Changed("limit") {
		limit = postcode.Int(g.limit)
	}
	if cmd.Flags().Changed("radius") {
		radius = postcode.Int(g.radius)
	}
	if cmd.Flags().Changed("widesearch") {
		widesearch = postcode.Bool(g.widesearch)
	}
	return limit, radius, widesearch
}

func (c *cli) nearestCmd() *cobra.Command {
	var g geoFlags
	cmd := &cobra.Command{
		Use:   "nearest POSTCODE",
		Short: "List the postcodes nearest to a postcode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, radius, wide := g.values(cmd)
			params := &postcode.NearestParams{Limit: limit, Radius: radius, Widesearch: wide}
			resp, err := c.app.Client.FindNearestPostcode(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			return c.print(resp, func() { printDistances(c.out, resp.Result) })
		},
	}
	g.register(cmd)
	return cmd
}

func (c *cli) reverseCmd() *cobra.Command {
	var (
		g        geoFlags
		lat, lon float64
	)
	cmd := &cobra.Command{
		Use:     "reverse --lat LAT --lon LON",
		Short:   "List the postcodes nearest to a coordinate",
		Args:    cobra.NoArgs,
		Example: "  postcodes reverse --lat 51.501009 --lon -0.141588 --limit 3",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, radius, wide := g.values(cmd)
			params := &postcode.ReverseGeocodeParams{Limit: limit, Radius: radius, Widesearch: wide}
			resp, err := c.app.Client.ReverseGeocodePostcode(cmd.Context(), lat, lon, params)
			if err != nil {
				return err
			}
			return c.print(resp, func() { printDistances(c.out, resp.Result) })
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	g.register(cmd)
	return cmd
}

func (c *cli) bulkReverseCmd() *cobra.Command {
	var (
		g       geoFlags
		points  []string
		filters []string
	)
	cmd := &cobra.Command{
		Use:     "bulk-reverse --point LON,LAT[,RADIUS[,LIMIT]]...",
		Short:   "Reverse geocode up to 100 coordinates in one request",
		Args:    cobra.NoArgs,
		Example: "  postcodes bulk-reverse --point -0.141588,51.501009 --point 0.629834,51.792645,500,2",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &postcode.BulkReverseGeocodeRequest{}
			for _, p := range points {
				loc, err := parseGeolocation(p)
				if err != nil {
					return err
				}
				req.Geolocations = append(req.Geolocations, loc)
			}
			limit, radius, wide := g.values(cmd)
			params := &postcode.BulkReverseGeocodeParams{Limit: limit, Radius: radius, Widesearch: wide}
			if cmd.Flags().Changed("filter") {
				params.Filter = toFilters(filters)
			}
			resp, err := c.app.Client.BulkReverseGeocodePostcode(cmd.Context(), req, params)
			if err != nil {
				return err
			}
			return c.print(resp, func() {
				for _, r := range resp.Result {
					fmt.Fprintf(c.out, "%s,%s\n", formatFloat(r.Query.Longitude), formatFloat(r.Query.Latitude))
					printDistances(c.out, r.Result)
				}
			})
		},
	}
	cmd.Flags().StringArrayVar(&points, "point", nil, "Coordinate as LON,LAT[,RADIUS[,LIMIT]] (repeatable)")
	cmd.Flags().StringSliceVar(&filters, "filter", nil, "Attributes to keep, e.g. postcode,longitude,latitude")
	_ = cmd.MarkFlagRequired("point")
	g.register(cmd)
	return cmd
}

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate POSTCODE",
		Short: "Check that a postcode exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := c.app.Client.ValidatePostcode(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.print(resp, func() {
				fmt.Fprintf(c.out, "%s %s\n", icon(resp.Result), args[0])
			})
		},
	}
}

func (c *cli) runsCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "runs [RUN_ID]",
		Short: "List recorded lookup runs, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			if len(args) == 0 {
				runs, err := s.Runs(cmd.Context())
				if err != nil {
					return err
				}
				return c.print(runs, func() {
					for _, r := range runs {
						fmt.Fprintf(c.out, "%s  %s  %d/%d found\n", r.ID, r.CreatedAt.Format(time.DateTime), r.Found, r.Total)
					}
				})
			}

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}
			recs, err := s.Records(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.print(recs, func() {
				for _, r := range recs {
					printResult(c.out, r.Query, r.Result)
				}
			})
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "results.db", "SQLite file written by lookup --db")
	return cmd
}

func (c *cli) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.app.Config.Addr
			}
			srv := api.NewServer(c.app.Client, c.app.Batch, c.app.Registry, c.app.Log.With("component", "api"))
			err := srv.ListenAndServe(cmd.Context(), addr)
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :5001)")
	return cmd
}

func (c *cli) record(ctx context.Context, dbPath string, results []postcode.BulkLookupResult) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.SaveRun(ctx, results)
	if err != nil {
		return err
	}
	c.app.Log.InfoContext(ctx, "recorded run", "run_id", id, "db", dbPath, "results", len(results))
	return nil
}

// print writes v as JSON with --json, otherwise calls human.
func (c *cli) print(v any, human func()) error {
	if c.jsonOutput {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	human()
	return nil
}

func toFilters(s []string) []postcode.Filter {
	out := make([]postcode.Filter, len(s))
	for i, f := range s {
		out[i] = postcode.Filter(strings.TrimSpace(f))
	}
	return out
}

// parseGeolocation parses LON,LAT[,RADIUS[,LIMIT]].
func parseGeolocation(s string) (postcode.Geolocation, error) {
	var loc postcode.Geolocation
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 4 {
		return loc, fmt.Errorf("invalid point %q: want LON,LAT[,RADIUS[,LIMIT]]", s)
	}
	var err error
	if loc.Longitude, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
		return loc, fmt.Errorf("invalid point %q: longitude: %w", s, err)
	}
	if loc.Latitude, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
		return loc, fmt.Errorf("invalid point %q: latitude: %w", s, err)
	}
	if len(parts) > 2 {
		if loc.Radius, err = strconv.Atoi(strings.TrimSpace(parts[2])); err != nil {
			return loc, fmt.Errorf("invalid point %q: radius: %w", s, err)
		}
	}
	if len(parts) > 3 {
		if loc.Limit, err = strconv.Atoi(strings.TrimSpace(parts[3])); err != nil {
			return loc, fmt.Errorf("invalid point %q: limit: %w", s, err)
		}
	}
	return loc, nil
}

func printResult(w io.Writer, query string, r *postcode.Result) {
	sep := strings.Repeat("─", 52)
	fmt.Fprintf(w, "%s\n", sep)
	if r == nil {
		fmt.Fprintf(w, "  ✗ %s: not found\n", query)
		return
	}
	fmt.Fprintf(w, "  Postcode: %s\n", r.Postcode)
	fmt.Fprintf(w, "%s\n", sep)
	fmt.Fprintf(w, "  Region:   %s\n", r.Region)
	fmt.Fprintf(w, "  District: %s\n", r.AdminDistrict)
	fmt.Fprintf(w, "  Ward:     %s\n", r.AdminWard)
	fmt.Fprintf(w, "  Country:  %s\n", r.Country)
	if r.Latitude != nil && r.Longitude != nil {
		fmt.Fprintf(w, "  Lat/Lon:  %.6f, %.6f\n", *r.Latitude, *r.Longitude)
	}
}

func printDistances(w io.Writer, ds []postcode.Distance) {
	for _, d := range ds {
		fmt.Fprintf(w, "  %-10s %7.1fm  %s\n", d.Postcode, d.Distance, d.AdminDistrict)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func icon(b bool) string {
	if b {
		return "✓"
	}
	return "✗"
}
