// Package app assembles the search pipeline from configuration. Both the
// HTTP gateway and the processor CLI build their components here.
package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"leadscout/config"
	"leadscout/internal/aiclient"
	"leadscout/internal/analyzer"
	"leadscout/internal/extractor"
	"leadscout/internal/lock"
	"leadscout/internal/pipeline"
	"leadscout/internal/scriptgen"
	"leadscout/internal/source"
	"leadscout/internal/store"
	"leadscout/internal/store/memory"
	"leadscout/internal/store/sqlstore"
	"leadscout/internal/store/supabase"
)

const lockPrefix = "leadscout:"

// Components are the long-lived pieces of a running pipeline.
type Components struct {
	Store    store.Store
	Live     *source.Live
	AI       *aiclient.AIClient
	Analyzer *analyzer.Analyzer
	Scripts  *scriptgen.Generator
	Locker   lock.Locker
	Pipeline *pipeline.Orchestrator

	closers []func() error
}

// Build opens the store and wires every component. Close releases them.
func Build(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*Components, error) {
	st, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	c := &Components{Store: st}
	c.closers = append(c.closers, st.Close)

	seed := cfg.Synthetic.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	// Each consumer locks its own generator, so they must not share one.
	extractRNG := rand.New(rand.NewSource(seed))
	syntheticRNG := rand.New(rand.NewSource(seed + 1))

	c.Live = source.NewLive(source.LiveConfig{
		APIKey:  cfg.Firecrawl.APIKey,
		BaseURL: cfg.Firecrawl.BaseURL,
		Timeout: cfg.Firecrawl.Timeout,
	}, extractor.New(extractRNG), log.WithField("component", "live_source"))

	// The fallback treats a nil primary as "not configured".
	var primary source.Adapter
	if c.Live.Configured() {
		primary = c.Live
	} else {
		log.Warn("FIRECRAWL_API_KEY not set, searches will use synthetic data")
	}
	src := source.NewFallback(primary, source.NewSynthetic(syntheticRNG), log.WithField("component", "source"))

	c.AI = aiclient.NewAIClient(aiclient.Config{
		APIKey:  cfg.AI.APIKey,
		BaseURL: cfg.AI.BaseURL,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	}, log.WithField("component", "ai"))
	c.closers = append(c.closers, c.AI.Close)
	if !c.AI.Configured() {
		log.Warn("AI_API_KEY not set, analysis and script generation will fail")
	}

	c.Analyzer, err = analyzer.New(c.AI, log.WithField("component", "analyzer"))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("building analyzer: %w", err)
	}
	c.Scripts = scriptgen.New(c.AI, log.WithField("component", "scriptgen"))

	c.Locker, err = newLocker(ctx, cfg.Redis, c)
	if err != nil {
		c.Close()
		return nil, err
	}

	tracker := pipeline.NewTracker()
	progressLog := log.WithField("component", "progress")
	tracker.OnUpdate(func(id uuid.UUID, p pipeline.Progress) {
		progressLog.WithFields(logrus.Fields{
			"search_id": id,
			"step":      p.Step,
			"progress":  p.Percent,
		}).Debug("Search progress")
	})

	c.Pipeline = pipeline.New(st, src, c.Analyzer, c.Locker, tracker, pipeline.Options{
		ResultLimit:         cfg.Pipeline.ResultLimit,
		DedupWindow:         cfg.Pipeline.DedupWindow,
		AnalysisConcurrency: cfg.Pipeline.AnalysisConcurrency,
	}, log.WithField("component", "pipeline"))
	return c, nil
}

// Close releases components in reverse order of creation.
func (c *Components) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

// OpenStore connects the configured store driver.
func OpenStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverSupabase:
		client, err := config.InitSupabase(cfg.Supabase)
		if err != nil {
			return nil, err
		}
		return supabase.New(client, log.WithField("component", "store")), nil
	case config.DriverPostgres, config.DriverSQLite:
		dialect, err := sqlstore.DialectFor(cfg.Store.Driver)
		if err != nil {
			return nil, err
		}
		st, err := sqlstore.Open(ctx, dialect, cfg.Store.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
		}
		return st, nil
	case config.DriverMemory, "":
		log.Warn("Using in-memory store, data is lost on restart")
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func newLocker(ctx context.Context, cfg config.RedisConfig, c *Components) (lock.Locker, error) {
	if cfg.Address == "" {
		return lock.NewMemory(), nil
	}
	client := lock.NewRedisClient(cfg.Address, cfg.Password, cfg.DB)
	c.closers = append(c.closers, client.Close)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Address, err)
	}
	return lock.NewRedis(client, lockPrefix), nil
}
