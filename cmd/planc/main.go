// Package main provides planc, the one-shot floorplan compiler: it loads a
// plan file, compiles every floor, writes OBJ/MTL and JSON output, and exits
// non-zero when the plan carries blocking errors.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/planforge/planforge/internal/config"
	"github.com/planforge/planforge/internal/engine/pipeline"
	"github.com/planforge/planforge/internal/export"
	"github.com/planforge/planforge/internal/observability"
	"github.com/planforge/planforge/internal/plan"
)

func main() {
	start := time.Now()

	planPath := flag.String("plan", "", "path to plan YAML file")
	configPath := flag.String("config", "", "path to configuration file; empty = defaults")
	outDir := flag.String("out", ".", "output directory")
	format := flag.String("format", "obj", "output format: obj, json, or all")
	flag.Parse()

	if *planPath == "" {
		fmt.Fprintln(os.Stderr, "usage: planc -plan <file> [-config <file>] [-out <dir>] [-format obj|json|all]")
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	p, err := plan.LoadFromFile(*planPath)
	if err != nil {
		logger.Fatal("loading plan", zap.Error(err))
	}

	res, err := pipeline.New(cfg, nil, logger).Compile(context.Background(), p)
	if err != nil {
		logger.Fatal("compiling plan", zap.Error(err))
	}
	for _, d := range res.Diagnostics.All() {
		fmt.Fprintln(os.Stderr, d.String())
	}

	base := strings.TrimSuffix(filepath.Base(*planPath), filepath.Ext(*planPath))
	if err := write(*outDir, base, *format, res); err != nil {
		logger.Fatal("writing output", zap.Error(err))
	}

	fmt.Printf("compiled %s in %s\n", p.Name, time.Since(start).Round(time.Millisecond))
	if res.HasErrors() {
		os.Exit(2)
	}
}

func write(dir, base, format string, res *pipeline.Result) error {
	if format == "obj" || format == "all" {
		if err := export.SaveOBJ(dir, base, res); err != nil {
			return err
		}
	}
	if format == "json" || format == "all" {
		f, err := os.Create(filepath.Join(dir, base+".json"))
		if err != nil {
			return fmt.Errorf("create json: %w", err)
		}
		defer f.Close()
		if err := export.WriteJSON(f, res); err != nil {
			return err
		}
	}
	if format != "obj" && format != "json" && format != "all" {
		return fmt.Errorf("unknown format %q (supported: obj, json, all)", format)
	}
	return nil
}
