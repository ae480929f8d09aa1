// Command promote runs one bronze-to-silver promotion: it classifies the
// period's order lines and, unless disabled, refreshes every dimension.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"lakeetl/internal/audit"
	"lakeetl/internal/config"
	"lakeetl/internal/engine"
	"lakeetl/internal/metrics"
	"lakeetl/internal/metrics/prompush"
	"lakeetl/internal/objstore"
	"lakeetl/internal/period"
	"lakeetl/internal/pipeline"
)

func main() {
	var (
		cfgPath  string
		month    string
		payload  string
		validate bool
	)
	flag.StringVar(&cfgPath, "config", "configs/run.json", "run config JSON path")
	flag.StringVar(&month, "month", "", "period to promote (YYYY-MM)")
	flag.StringVar(&payload, "payload", "", "invocation payload JSON (overrides -month)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	dims := flag.Bool("dims", true, "refresh dimensions in this run")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}
	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fatalf("configuration is invalid: %v", cfgPath)
	}
	if validate {
		log.Printf("configuration is valid: %v", cfgPath)
		return
	}

	inv, err := invocation(cfg, month, payload, *dims)
	if err != nil {
		fatalf("%v", err)
	}

	initMetrics(cfg, *verbose)
	defer flushMetrics()

	ctx := context.Background()

	store, err := objstore.NewS3Store(ctx, cfg.Lake.Bucket, objstore.S3Config{
		Region:       cfg.Lake.Region,
		Endpoint:     cfg.Lake.Endpoint,
		UsePathStyle: cfg.Lake.UsePathStyle,
	})
	if err != nil {
		fatalf("object store: %v", err)
	}

	control, closeControl, err := audit.OpenSQLite(ctx, cfg.Control.DSN)
	if err != nil {
		fatalf("control store: %v", err)
	}
	defer closeControl()

	r := pipeline.NewRunner(store, audit.Logger{Store: control}, engine.NewLocal(), cfg.Run.PollInterval())
	start := time.Now()

	var failed bool
	for _, p := range inv.Periods {
		log.Printf("promote: run=%s period=%s dims=%v", r.RunID, p, inv.RefreshDims)
		if err := r.Promote(ctx, p, inv.RefreshDims); err != nil {
			log.Printf("promote: period=%s: %v", p, err)
			failed = true
		}
	}
	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
	if failed {
		os.Exit(1)
	}
}

// invocation normalizes the -payload / -month flags into run periods.
func invocation(cfg config.Config, month, payload string, dims bool) (pipeline.Invocation, error) {
	if payload != "" {
		return pipeline.ParsePayload([]byte(payload), dims)
	}
	if month == "" {
		return pipeline.Invocation{}, fmt.Errorf("one of -month or -payload is required")
	}
	p, err := period.Parse(month)
	if err != nil {
		return pipeline.Invocation{}, err
	}
	return pipeline.Invocation{Periods: []period.Period{p}, RefreshDims: dims}, nil
}

func initMetrics(cfg config.Config, verbose bool) {
	if cfg.Metrics.PushgatewayURL == "" {
		if verbose {
			log.Printf("metrics: disabled")
		}
		return
	}
	b, err := prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
	if err != nil {
		log.Printf("metrics: failed to init push backend: %v; using nop", err)
		return
	}
	log.Printf("metrics: url=%v job=%v", cfg.Metrics.PushgatewayURL, cfg.Job)
	metrics.SetBackend(b)
}

func flushMetrics() {
	if err := metrics.Flush(); err != nil {
		log.Printf("metrics: flush error: %v", err)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
