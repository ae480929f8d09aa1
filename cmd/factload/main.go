// Command factload loads one or more periods of order lines into fact_sales,
// idempotently. A period already present is skipped; backfills run the
// periods concurrently since each period is independent.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"lakeetl/internal/audit"
	"lakeetl/internal/config"
	"lakeetl/internal/engine"
	"lakeetl/internal/factload"
	"lakeetl/internal/metrics"
	"lakeetl/internal/metrics/prompush"
	"lakeetl/internal/objstore"
	"lakeetl/internal/period"
	"lakeetl/internal/pipeline"
)

// backfillWorkers caps concurrent period loads so a long backfill does not
// exhaust the destination's connection budget.
const backfillWorkers = 4

func main() {
	var (
		cfgPath string
		month   string
		months  string
		key     string
		payload string
	)
	flag.StringVar(&cfgPath, "config", "configs/run.json", "run config JSON path")
	flag.StringVar(&month, "month", "", "period to load (YYYY-MM)")
	flag.StringVar(&months, "months", "", "comma-separated backfill list of periods")
	flag.StringVar(&key, "key", "", "object key trigger (alternative to -month)")
	flag.StringVar(&payload, "payload", "", "invocation payload JSON (overrides other selectors)")
	overwrite := flag.Bool("overwrite", false, "replace periods that are already loaded")
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

	inv, err := invocation(month, months, key, payload, *overwrite)
	if err != nil {
		fatalf("%v", err)
	}

	initMetrics(cfg, *verbose)
	defer flushMetrics()

	ctx := context.Background()

	periods := inv.Periods
	if inv.Key != "" {
		d := factload.RecognizeKey(inv.Key)
		if d.Status != factload.KeyAccepted {
			log.Printf("factload: key=%s status=%s", inv.Key, d.Status)
			return
		}
		periods = append(periods, d.Period)
	}

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

	facts, closeFacts, err := factload.NewPostgresFactStore(ctx, cfg.Fact.DSN, cfg.Fact.Table)
	if err != nil {
		fatalf("fact store: %v", err)
	}
	defer closeFacts()
	if cfg.Fact.AutoCreateTable {
		if err := facts.EnsureSchema(ctx); err != nil {
			fatalf("fact schema: %v", err)
		}
	}

	c := &factload.Controller{
		Source:     factload.BronzeSource{Store: store, Source: cfg.Lake.Source},
		Store:      facts,
		Engine:     engine.NewLocal(),
		Audit:      audit.Logger{Store: control},
		RunID:      uuid.NewString(),
		SourceName: cfg.Lake.Source,
		Poll:       cfg.Run.PollInterval(),
	}

	// Periods are independent increments; load them concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(backfillWorkers)
	var mu sync.Mutex
	outcomes := make(map[string]factload.Outcome, len(periods))
	for _, p := range periods {
		p := p
		g.Go(func() error {
			out, err := c.LoadPeriod(gctx, p, inv.Overwrite)
			metrics.RecordLoadOutcome(out.Status)
			mu.Lock()
			outcomes[p.Key()] = out
			mu.Unlock()
			return err
		})
	}
	err = g.Wait()

	for pm, out := range outcomes {
		log.Printf("factload: period=%s status=%s rows=%d", pm, out.Status, out.Rows)
	}
	if err != nil {
		fatalf("%v", err)
	}
}

// invocation normalizes the flag selectors into one invocation.
func invocation(month, months, key, payload string, overwrite bool) (pipeline.Invocation, error) {
	if payload != "" {
		return pipeline.ParsePayload([]byte(payload), false)
	}

	inv := pipeline.Invocation{Overwrite: overwrite, Key: key}
	var list []string
	if month != "" {
		list = append(list, month)
	}
	if months != "" {
		list = append(list, strings.Split(months, ",")...)
	}
	for _, m := range list {
		p, err := period.Parse(m)
		if err != nil {
			return pipeline.Invocation{}, err
		}
		inv.Periods = append(inv.Periods, p)
	}
	if len(inv.Periods) == 0 && inv.Key == "" {
		return pipeline.Invocation{}, fmt.Errorf("one of -month, -months, -key, or -payload is required")
	}
	return inv, nil
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
