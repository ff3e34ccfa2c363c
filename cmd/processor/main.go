// Command processor runs lead searches from the command line against the
// configured store, without the HTTP gateway.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"leadscout/config"
	"leadscout/internal/app"
	"leadscout/internal/pipeline"
	"leadscout/internal/worker"
)

type options struct {
	businessType string
	locations    []string
	radius       int
	user         string
	seed         int64
	limit        int
	timeout      time.Duration
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := pflag.NewFlagSet("processor", pflag.ContinueOnError)
	fs.StringVarP(&o.businessType, "type", "t", "", "business type to search for, e.g. plumber")
	fs.StringArrayVarP(&o.locations, "location", "l", nil, "location to search; repeat for several searches")
	fs.IntVarP(&o.radius, "radius", "r", 10, "search radius in miles")
	fs.StringVarP(&o.user, "user", "u", "", "user id owning the searches (random when empty)")
	fs.Int64Var(&o.seed, "seed", 0, "seed for synthetic data (overrides SYNTHETIC_SEED)")
	fs.IntVar(&o.limit, "limit", 0, "businesses per search (overrides PIPELINE_RESULT_LIMIT)")
	fs.DurationVar(&o.timeout, "timeout", 10*time.Minute, "overall time limit")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.businessType == "" || len(o.locations) == 0 {
		return o, fmt.Errorf("--type and at least one --location are required")
	}
	return o, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if opts.seed != 0 {
		cfg.Synthetic.Seed = opts.seed
	}
	if opts.limit > 0 {
		cfg.Pipeline.ResultLimit = opts.limit
	}
	log := config.InitLogger(cfg.Logging.Level, cfg.Logging.Format)

	userID := uuid.New()
	if opts.user != "" {
		if userID, err = uuid.Parse(opts.user); err != nil {
			log.WithError(err).Fatal("Invalid --user")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	components, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize components")
	}
	defer components.Close()

	reports, failed := runAll(ctx, components.Pipeline, cfg.Worker, userID, opts, log)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, r := range reports {
		if err := enc.Encode(r); err != nil {
			log.WithError(err).Error("Could not write report")
		}
	}
	log.WithFields(logrus.Fields{"completed": len(reports), "failed": failed}).Info("Processor finished")
	if failed > 0 {
		components.Close()
		os.Exit(1)
	}
}

// runAll queues one search per location on a dispatcher and waits for all of them.
func runAll(ctx context.Context, orch *pipeline.Orchestrator, wc config.WorkerConfig, userID uuid.UUID, opts options, log *logrus.Logger) ([]*pipeline.Report, int) {
	queue := wc.QueueSize
	if queue < len(opts.locations) {
		queue = len(opts.locations)
	}
	dispatcher := worker.NewDispatcher(wc.Count, queue, log.WithField("component", "dispatcher"))
	dispatcher.Run(ctx)

	var (
		mu      sync.Mutex
		reports []*pipeline.Report
		failed  int
	)
	markFailed := func() {
		mu.Lock()
		failed++
		mu.Unlock()
	}
	for _, location := range opts.locations {
		run, err := orch.Start(ctx, pipeline.Request{
			UserID:       userID,
			BusinessType: opts.businessType,
			Location:     location,
			Radius:       opts.radius,
		})
		if err != nil {
			log.WithError(err).WithField("location", location).Error("Search not started")
			markFailed()
			continue
		}
		job := worker.NewJob(run.ID(), func(ctx context.Context) error {
			report, err := run.Execute(ctx)
			if err != nil {
				markFailed()
				return err
			}
			mu.Lock()
			reports = append(reports, report)
			mu.Unlock()
			return nil
		})
		if err := dispatcher.SubmitJob(job); err != nil {
			run.Abandon(context.Background())
			log.WithError(err).WithField("location", location).Error("Search not queued")
			markFailed()
		}
	}

	dispatcher.Stop()
	return reports, failed
}
