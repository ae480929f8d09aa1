// Command nextmonth proposes the next period to process, based on the last
// SUCCEEDED orders run in the control store and bounded by the configured end
// month. One-shot by default; with -cron it runs as a daemon and emits the
// decision on every tick, for an operator or trigger to act on.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"lakeetl/internal/audit"
	"lakeetl/internal/config"
	"lakeetl/internal/schedule"
)

func main() {
	var (
		cfgPath  string
		cronSpec string
	)
	flag.StringVar(&cfgPath, "config", "configs/run.json", "run config JSON path")
	flag.StringVar(&cronSpec, "cron", "", `cron schedule for daemon mode (e.g. "0 6 * * *"); empty runs once`)
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

	start, end, err := cfg.Run.Window()
	if err != nil {
		fatalf("%v", err)
	}

	ctx := context.Background()
	control, closeControl, err := audit.OpenSQLite(ctx, cfg.Control.DSN)
	if err != nil {
		fatalf("control store: %v", err)
	}
	defer closeControl()

	pl := schedule.Planner{
		Audit: control,
		Table: "orders",
		Start: start,
		End:   end,
	}

	if cronSpec == "" {
		if err := emit(ctx, pl); err != nil {
			fatalf("%v", err)
		}
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(cronSpec, func() {
		if err := emit(ctx, pl); err != nil {
			log.Printf("nextmonth: %v", err)
		}
	}); err != nil {
		fatalf("cron spec: %v", err)
	}
	c.Start()
	log.Printf("nextmonth: daemon started schedule=%q", cronSpec)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	<-c.Stop().Done()
}

// emit prints the planning decision. PROCEED decisions are printed as the
// invocation payload the loaders accept, so the output can be piped straight
// into a trigger.
func emit(ctx context.Context, pl schedule.Planner) error {
	d, err := pl.Next(ctx)
	if err != nil {
		return err
	}
	switch d.Status {
	case schedule.StatusProceed:
		out, _ := json.Marshal(map[string]any{
			"status":     d.Status,
			"run_months": []string{d.Period.Key()},
		})
		fmt.Println(string(out))
	default:
		out, _ := json.Marshal(map[string]any{
			"status": d.Status,
			"reason": d.Reason,
		})
		fmt.Println(string(out))
	}
	return nil
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
