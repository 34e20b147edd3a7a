package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/astrogo/fitsio"

	"github.com/viant/phoenixgrid/config"
	"github.com/viant/phoenixgrid/fits"
	"github.com/viant/phoenixgrid/grid"
	"github.com/viant/phoenixgrid/httpapi"
	"github.com/viant/phoenixgrid/internal/app"
	"github.com/viant/phoenixgrid/logging"
	"github.com/viant/phoenixgrid/source"
	"github.com/viant/phoenixgrid/spectrum"
)

// errUsage marks bad invocations; run exits with status 2 for them.
var errUsage = errors.New("usage")

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, env *env, args []string) error
}

var commands = []command{
	{"sources", "list configured sources", cmdSources},
	{"axes", "print the distinct values of every axis", cmdAxes},
	{"nearest", "print the single closest grid node", cmdNearest},
	{"weights", "print the interpolation nodes and weights", cmdWeights},
	{"neighbors", "print the k closest grid nodes", cmdNeighbors},
	{"spectrum", "interpolate a spectrum (CSV, JSON or FITS)", cmdSpectrum},
	{"download", "copy the closest node's file to a directory", cmdDownload},
	{"catalog", "show or refresh stored listings", cmdCatalog},
	{"serve", "serve the JSON HTTP API", cmdServe},
}

type env struct {
	app    *app.App
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("phoenix", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "HCL configuration file (default $"+config.EnvConfig+", else the public grids)")
	logLevel := global.String("log-level", "", "debug, info, warn or error (overrides the configuration)")
	logFormat := global.String("log-format", "", "text or json (overrides the configuration)")
	global.Usage = func() { usage(global) }
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		usage(global)
		return 2
	}

	cfg, err := config.Resolve(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, stderr)

	name, rest := global.Arg(0), global.Args()[1:]
	for _, c := range commands {
		if c.name != name {
			continue
		}
		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		defer a.Close()
		err = c.run(ctx, &env{app: a, logger: logger, stdout: stdout, stderr: stderr}, rest)
		switch {
		case err == nil:
			return 0
		case errors.Is(err, flag.ErrHelp):
			return 0
		case errors.Is(err, errUsage):
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 2
		default:
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
	}
	fmt.Fprintf(stderr, "error: unknown command %q\n", name)
	usage(global)
	return 2
}

func usage(global *flag.FlagSet) {
	w := global.Output()
	fmt.Fprintln(w, "phoenix: query PHOENIX stellar atmosphere grids\n\nUsage:\n  phoenix [global flags] <command> [flags]\n\nCommands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w, "\nGlobal flags:")
	global.PrintDefaults()
}

// queryFlags registers the shared source and parameter flags.
type queryFlags struct {
	source string
	teff   float64
	logg   float64
	feh    float64
	alpha  float64
	json   bool
}

func newFlagSet(name string, env *env, q *queryFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	if q != nil {
		fs.StringVar(&q.source, "source", "hires", "grid source name")
		fs.Float64Var(&q.teff, "teff", 5800, "effective temperature (K)")
		fs.Float64Var(&q.logg, "logg", 4.5, "surface gravity (log g)")
		fs.Float64Var(&q.feh, "feh", 0, "metallicity [Fe/H]")
		fs.Float64Var(&q.alpha, "alpha", 0, "alpha enhancement [alpha/M]")
		fs.BoolVar(&q.json, "json", false, "print JSON")
	}
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: %s: unexpected arguments %v", errUsage, fs.Name(), fs.Args())
	}
	return nil
}

func (q *queryFlags) query() grid.Query {
	return grid.Query{Teff: q.teff, Logg: q.logg, FeH: q.feh, Alpha: q.alpha}
}

func emitJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func cmdSources(_ context.Context, env *env, args []string) error {
	fs := newFlagSet("sources", env, nil)
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parse(fs, args); err != nil {
		return err
	}
	names := env.app.Registry.Names()
	if *asJSON {
		return emitJSON(env.stdout, names)
	}
	for _, n := range names {
		fmt.Fprintln(env.stdout, n)
	}
	return nil
}

func cmdAxes(ctx context.Context, env *env, args []string) error {
	var q queryFlags
	if err := parse(newFlagSet("axes", env, &q), args); err != nil {
		return err
	}
	_, idx, err := env.app.Registry.Index(ctx, q.source)
	if err != nil {
		return err
	}
	values := make(map[string][]float64, len(grid.Axes))
	for _, a := range grid.Axes {
		values[a.String()] = idx.AxisValues(a)
	}
	if q.json {
		return emitJSON(env.stdout, values)
	}
	fmt.Fprintf(env.stdout, "%s: %d records\n", q.source, idx.Len())
	for _, a := range grid.Axes {
		fmt.Fprintf(env.stdout, "%-6s %s\n", a, joinFloats(values[a.String()]))
	}
	return nil
}

func cmdNearest(ctx context.Context, env *env, args []string) error {
	var q queryFlags
	if err := parse(newFlagSet("nearest", env, &q), args); err != nil {
		return err
	}
	rec, err := nearest(ctx, env, q.source, q.query())
	if err != nil {
		return err
	}
	if q.json {
		return emitJSON(env.stdout, rec)
	}
	fmt.Fprintln(env.stdout, rec)
	return nil
}

// nearest answers from the catalog when one is configured and builds the
// source index otherwise.
func nearest(ctx context.Context, env *env, name string, q grid.Query) (grid.Record, error) {
	if l, ok := env.app.Listers[name]; ok {
		return l.Nearest(ctx, q)
	}
	_, idx, err := env.app.Registry.Index(ctx, name)
	if err != nil {
		return grid.Record{}, err
	}
	return grid.NearestSingle(idx, q)
}

func cmdWeights(ctx context.Context, env *env, args []string) error {
	var q queryFlags
	fs := newFlagSet("weights", env, &q)
	modeName := fs.String("mode", "linear", "linear or nearest")
	if err := parse(fs, args); err != nil {
		return err
	}
	mode, err := grid.ParseMode(*modeName)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	_, idx, err := env.app.Registry.Index(ctx, q.source)
	if err != nil {
		return err
	}
	weighted, err := grid.Select(idx, q.query(), mode)
	if err != nil {
		return err
	}
	if q.json {
		return emitJSON(env.stdout, weighted)
	}
	tw := tabwriter.NewWriter(env.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TEFF\tLOGG\tFEH\tALPHA\tWEIGHT\tLOCATOR")
	for _, w := range weighted {
		fmt.Fprintf(tw, "%d\t%.2f\t%+.2f\t%+.2f\t%.6f\t%s\n", w.Teff, w.Logg, w.FeH, w.Alpha, w.Weight, w.Locator)
	}
	return tw.Flush()
}

func cmdNeighbors(ctx context.Context, env *env, args []string) error {
	var q queryFlags
	fs := newFlagSet("neighbors", env, &q)
	k := fs.Int("k", 8, "number of neighbours")
	if err := parse(fs, args); err != nil {
		return err
	}
	_, idx, err := env.app.Registry.Index(ctx, q.source)
	if err != nil {
		return err
	}
	neighbors, err := idx.Neighbors(q.query(), *k)
	if err != nil {
		return err
	}
	if q.json {
		return emitJSON(env.stdout, neighbors)
	}
	tw := tabwriter.NewWriter(env.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TEFF\tLOGG\tFEH\tALPHA\tDISTANCE\tLOCATOR")
	for _, n := range neighbors {
		fmt.Fprintf(tw, "%d\t%.2f\t%+.2f\t%+.2f\t%.4f\t%s\n", n.Teff, n.Logg, n.FeH, n.Alpha, n.Distance, n.Locator)
	}
	return tw.Flush()
}

func cmdSpectrum(ctx context.Context, env *env, args []string) error {
	var q queryFlags
	fs := newFlagSet("spectrum", env, &q)
	modeName := fs.String("mode", "linear", "linear or nearest")
	out := fs.String("out", "", "output file; .fits, .json or CSV otherwise (default stdout)")
	waveUnit := fs.String("wavelength-unit", "", "convert wavelengths, e.g. nm or um")
	fluxUnit := fs.String("flux-unit", "", "convert flux density, e.g. \"erg/(s cm2 Angstrom)\"")
	parallel := fs.Int("parallel", source.DefaultParallelism, "concurrent spectrum loads")
	if err := parse(fs, args); err != nil {
		return err
	}
	mode, err := grid.ParseMode(*modeName)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	src, idx, err := env.app.Registry.Index(ctx, q.source)
	if err != nil {
		return err
	}
	start := time.Now()
	s, weighted, err := source.Spectrum(ctx, src, idx, q.query(), mode, *parallel)
	if err != nil {
		return err
	}
	if s, err = spectrum.Convert(s, spectrum.ParseUnit(*waveUnit), spectrum.ParseUnit(*fluxUnit)); err != nil {
		return err
	}
	env.logger.Info("spectrum interpolated", "source", q.source, "query", q.query().String(), "nodes", len(weighted), "points", s.Len(), "elapsed", time.Since(start))

	w := env.stdout
	format := "csv"
	if q.json {
		format = "json"
	}
	if *out != "" {
		switch strings.ToLower(filepath.Ext(*out)) {
		case ".fits", ".fit":
			format = "fits"
		case ".json":
			format = "json"
		}
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	switch format {
	case "fits":
		err = writeFITS(w, s, q.query())
	case "json":
		err = emitJSON(w, s)
	default:
		err = writeCSV(w, s)
	}
	if err != nil {
		return err
	}
	if f, ok := w.(*os.File); ok && f != os.Stdout {
		return f.Close()
	}
	return nil
}

func writeCSV(w io.Writer, s *spectrum.Spectrum) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"wavelength[" + string(s.WavelengthUnit) + "]", "flux[" + string(s.FluxUnit) + "]"}); err != nil {
		return err
	}
	for i := range s.Wavelength {
		if err := cw.Write([]string{
			strconv.FormatFloat(s.Wavelength[i], 'g', -1, 64),
			strconv.FormatFloat(s.Flux[i], 'g', -1, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeFITS(w io.Writer, s *spectrum.Spectrum, q grid.Query) error {
	return fits.WriteTable(w, "SPECTRUM", []fits.TableColumn{
		{Name: "WAVELENGTH", Unit: string(s.WavelengthUnit), Float64s: s.Wavelength},
		{Name: "FLUX", Unit: string(s.FluxUnit), Float64s: s.Flux},
	},
		fitsio.Card{Name: "TEFF", Value: q.Teff, Comment: "effective temperature [K]"},
		fitsio.Card{Name: "LOGG", Value: q.Logg, Comment: "surface gravity [log cgs]"},
		fitsio.Card{Name: "FEH", Value: q.FeH, Comment: "metallicity [Fe/H]"},
		fitsio.Card{Name: "ALPHA", Value: q.Alpha, Comment: "alpha enhancement [alpha/M]"},
	)
}

func cmdDownload(ctx context.Context, env *env, args []string) error {
	var q queryFlags
	fs := newFlagSet("download", env, &q)
	dir := fs.String("dir", ".", "destination directory")
	if err := parse(fs, args); err != nil {
		return err
	}
	src, idx, err := env.app.Registry.Index(ctx, q.source)
	if err != nil {
		return err
	}
	rec, err := grid.NearestSingle(idx, q.query())
	if err != nil {
		return err
	}
	dest, err := source.Save(ctx, src, rec, *dir)
	if err != nil {
		return err
	}
	fmt.Fprintln(env.stdout, dest)
	return nil
}

func cmdCatalog(ctx context.Context, env *env, args []string) error {
	fs := newFlagSet("catalog", env, nil)
	refresh := fs.String("refresh", "", "drop and re-list the stored listing of this source")
	if err := parse(fs, args); err != nil {
		return err
	}
	store := env.app.Catalog
	if store == nil {
		return errors.New("no catalog block in the configuration")
	}
	if *refresh != "" {
		if _, err := env.app.Registry.Find(*refresh); err != nil {
			return err
		}
		if err := store.Remove(ctx, *refresh); err != nil {
			return err
		}
		env.app.Registry.Forget(*refresh)
		if _, _, err := env.app.Registry.Index(ctx, *refresh); err != nil {
			return err
		}
	}
	names, err := store.Sources(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(env.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tRECORDS\tLISTED")
	for _, name := range names {
		records, err := store.Records(ctx, name)
		if err != nil {
			return err
		}
		listedAt, _, err := store.ListedAt(ctx, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", name, len(records), listedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func cmdServe(ctx context.Context, env *env, args []string) error {
	fs := newFlagSet("serve", env, nil)
	addr := fs.String("addr", env.app.Config.Server.Addr, "listen address")
	parallel := fs.Int("parallel", source.DefaultParallelism, "concurrent spectrum loads per request")
	if err := parse(fs, args); err != nil {
		return err
	}
	srv := httpapi.NewServer(*addr, httpapi.New(env.app.Registry, *parallel, env.logger))
	errc := make(chan error, 1)
	go func() { errc <- srv.Run() }()
	env.logger.Info("serving", "addr", *addr, "sources", env.app.Registry.Names())
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdown)
}

func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}
