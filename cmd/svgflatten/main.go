// Command svgflatten replaces the clipped elements of an SVG file
// by plain paths, and removes the clip definitions.
//
// Defaults are read from the SVGFLATTEN_* environment variables,
// command line flags override them.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/beevik/etree"

	"github.com/benoitkugler/svgflatten/internal/config"
	"github.com/benoitkugler/svgflatten/svgflatten"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	var (
		output     = flag.String("o", "", "Output file (default: standard output)")
		strict     = flag.Bool("strict", false, "Exit with status 1 if some element is skipped")
		check      = flag.Bool("check", false, "Only resolve the clip definitions and report the issues")
		tolerance  = flag.Float64("tolerance", cfg.Tolerance, "Maximal curve flattening error, in user units")
		precision  = flag.Float64("precision", cfg.Precision, "Grid steps per user unit of the clipper backend")
		trace      = flag.Bool("trace", cfg.Trace, "Intersect filled content as regions (false: clip outlines only)")
		backend    = flag.String("backend", cfg.Backend, "Polygon clipping backend: clipper or polyclip")
		background = flag.String("background", strings.Join(cfg.Background, ","), "Comma separated background colors to sweep (empty to disable)")
		logLevel   = flag.String("log", cfg.LogLevel, "Log level: debug, info, warn or error")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] input.svg\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg.Tolerance, cfg.Precision, cfg.Trace, cfg.Backend, cfg.LogLevel = *tolerance, *precision, *trace, *backend, *logLevel
	cfg.Background = nil
	for _, c := range strings.Split(*background, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cfg.Background = append(cfg.Background, c)
		}
	}

	level, err := cfg.Level()
	if err != nil {
		slog.Error("invalid log level", "error", err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	svgflatten.SetLogger(logger)

	clipOpts, err := cfg.ClipOptions()
	if err != nil {
		slog.Error("invalid options", "error", err)
		os.Exit(2)
	}

	if *check {
		ok, err := runCheck(flag.Arg(0), os.Stdout)
		if err != nil {
			slog.Error("check", "error", err)
			os.Exit(1)
		}
		if !ok {
			os.Exit(1)
		}
		return
	}

	opts := svgflatten.Options{Clip: clipOpts, BackgroundColors: cfg.Background}
	skipped, err := run(flag.Arg(0), *output, opts)
	if err != nil {
		slog.Error("flatten", "error", err)
		os.Exit(1)
	}
	if *strict && skipped != 0 {
		os.Exit(1)
	}
}

func readFile(path string) (*etree.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return svgflatten.ReadDocument(f)
}

// run flattens the input file and writes the result,
// returning the number of skipped elements.
func run(input, output string, opts svgflatten.Options) (int, error) {
	doc, err := readFile(input)
	if err != nil {
		return 0, err
	}
	res, err := svgflatten.Flatten(doc, opts)
	if err != nil {
		return 0, err
	}
	for _, is := range res.Issues {
		fmt.Fprintln(os.Stderr, "skipped:", is)
	}

	res.Document.Indent(2)
	if output == "" {
		_, err = res.Document.WriteTo(os.Stdout)
		return res.Skipped(), err
	}
	return res.Skipped(), res.Document.WriteToFile(output)
}

// runCheck lists the clip definitions of the input file,
// and returns false if some reference can't be resolved.
func runCheck(input string, w io.Writer) (bool, error) {
	doc, err := readFile(input)
	if err != nil {
		return false, err
	}
	var resolver svgflatten.Resolver
	defs, issues := resolver.Resolve(doc)

	ids := make([]string, 0, len(defs))
	for id := range defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		def := defs[id]
		status := "ok"
		if def.Err != nil {
			status = def.Err.Error()
		}
		units := "userSpaceOnUse"
		if def.BoundingBoxUnits {
			units = "objectBoundingBox"
		}
		fmt.Fprintf(w, "<%s id=%q> %s, %d operations: %s\n", def.Tag, id, units, len(def.Path), status)
	}
	for _, is := range issues {
		fmt.Fprintln(w, "issue:", is)
	}
	return len(issues) == 0, nil
}
