// Package main provides planwatch, the live recompiler: it watches a plan
// file and rebuilds its outputs on every save, debounced, until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/planforge/planforge/internal/config"
	"github.com/planforge/planforge/internal/engine/pipeline"
	"github.com/planforge/planforge/internal/export"
	"github.com/planforge/planforge/internal/observability"
	"github.com/planforge/planforge/internal/plan"
	"github.com/planforge/planforge/internal/watch"
)

func main() {
	planPath := flag.String("plan", "", "path to plan YAML file")
	configPath := flag.String("config", "", "path to configuration file; empty = defaults")
	outDir := flag.String("out", "", "output directory; empty = config watch.output or plan directory")
	flag.Parse()

	if *planPath == "" {
		fmt.Fprintln(os.Stderr, "usage: planwatch -plan <file> [-config <file>] [-out <dir>]")
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

	dir := *outDir
	if dir == "" {
		dir = cfg.Watch.Output
	}
	if dir == "" {
		dir = filepath.Dir(*planPath)
	}
	base := strings.TrimSuffix(filepath.Base(*planPath), filepath.Ext(*planPath))

	compiler := pipeline.New(cfg, nil, logger)
	build := func(ctx context.Context, gen uint64) error {
		p, err := plan.LoadFromFile(*planPath)
		if err != nil {
			return fmt.Errorf("loading plan: %w", err)
		}
		res, err := compiler.Compile(ctx, p)
		if err != nil {
			return err
		}
		for _, d := range res.Diagnostics.All() {
			logger.Warn("diagnostic",
				zap.Uint64("generation", gen),
				zap.String("detail", d.String()))
		}
		// A superseded build never overwrites the newer generation's output.
		if err := ctx.Err(); err != nil {
			return err
		}
		return export.SaveOBJ(dir, base, res)
	}

	runner := watch.NewRunner(cfg.Watch.Debounce, build, logger)
	watcher := watch.NewWatcher(*planPath, runner, logger)

	sup := watch.NewSupervisor(logger)
	sup.Add("runner", runner)
	sup.Add("watcher", watcher)

	// Initial build before the first change arrives.
	runner.Trigger()

	if err := sup.Run(); err != nil {
		logger.Fatal("watch loop failed", zap.Error(err))
	}
}
