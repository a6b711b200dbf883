package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Aryanshaw/bitespeed-client/internal/config"
	"github.com/Aryanshaw/bitespeed-client/internal/identifier"
	"github.com/Aryanshaw/bitespeed-client/internal/logger"
	"github.com/Aryanshaw/bitespeed-client/internal/storage"
	"github.com/Aryanshaw/bitespeed-client/pkg/bitespeed"
	"github.com/Aryanshaw/bitespeed-client/pkg/httpclient"
	"github.com/Aryanshaw/bitespeed-client/pkg/publishers"
	"github.com/Aryanshaw/bitespeed-client/pkg/sources"
)

// Runner represents the identifier runtime. It manages the pass loop,
// coordinating between sources, the identification service, and publishers.
// It also handles journal initialization and cleanup.
type Runner struct {
	cfg          *config.Config
	sourceReg    *sources.Registry
	fanout       *publishers.Fanout
	client       *bitespeed.Client
	passService  *identifier.Service
	pollInterval time.Duration
	log          logger.Logger
	store        storage.Store
}

// NewRunner builds an identifier runtime from config files.
func NewRunner(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	sourceReg, err := sources.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources registry: %w", err)
	}
	sourceList := sourceReg.Enabled()
	sourceIDs := make([]string, 0, len(sourceList))
	for _, s := range sourceList {
		sourceIDs = append(sourceIDs, s.ID)
	}
	log.InfoObj("sources registry loaded", "sources_meta", map[string]any{
		"count": len(sourceIDs),
		"ids":   sourceIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubRegistry := publishers.DefaultRegistry()
	pubClients, err := publishers.BuildAll(ctx, pubRegistry, enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count": fanout.Size(),
		"ids":   fanout.IDs(),
	})

	storeOpts := storage.Options{
		SubmissionTTL:   cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("journal initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"submission_ttl_seconds":   int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	httpClient := httpclient.NewRestyClient(cfg.RequestTimeout)
	client := bitespeed.New(cfg.ServiceBaseURL, httpClient, log)
	passService := identifier.NewService(sources.DefaultReaderRegistry(httpClient), client, fanout, log, store)

	return &Runner{
		cfg:          cfg,
		sourceReg:    sourceReg,
		fanout:       fanout,
		client:       client,
		passService:  passService,
		pollInterval: cfg.PollInterval,
		log:          log,
		store:        store,
	}, nil
}

// Run starts the identification loop until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	if r == nil || r.passService == nil {
		return fmt.Errorf("runner is not initialized")
	}
	defer r.closeStore()
	defer r.closeFanout()

	enabled := r.sourceReg.Enabled()
	if len(enabled) == 0 {
		r.log.WarnObj("no sources configured; identifier idle", "sources_file", r.cfg.SourcesFile)
		<-ctx.Done()
		return ctx.Err()
	}

	// Startup reachability probe; the loop keeps going either way and the
	// per-pass gate decides whether work happens.
	r.log.InfoObj("identification service probe", "probe_result", map[string]any{
		"base_url": r.client.BaseURL(),
		"healthy":  r.client.CheckHealth(ctx),
	})

	r.log.InfoObj("identifier loop starting", "runner_state", map[string]any{
		"sources_count":    len(enabled),
		"publishers_count": r.fanout.Size(),
		"poll_interval":    r.pollInterval.String(),
	})

	if err := r.runOnce(ctx, enabled); err != nil {
		r.log.ErrorObj("initial pass failed", "error", err)
	}

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.InfoObj("identifier loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := r.runOnce(ctx, enabled); err != nil {
				r.log.ErrorObj("scheduled pass failed", "error", err)
			}
		}
	}
}

// runOnce performs a single identification pass across all enabled sources.
// The pass is skipped when the service does not report healthy.
func (r *Runner) runOnce(ctx context.Context, cfgs []sources.Source) error {
	if !r.client.CheckHealth(ctx) {
		r.log.WarnObj("service unhealthy; skipping pass", "base_url", r.client.BaseURL())
		return nil
	}

	start := time.Now()
	r.log.InfoObj("pass started", "pass_meta", map[string]any{
		"sources_count": len(cfgs),
		"started_at":    start.UTC(),
	})
	if err := r.passService.Run(ctx, cfgs); err != nil {
		return err
	}
	r.log.InfoObj("pass completed", "pass_meta", map[string]any{
		"sources_count": len(cfgs),
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	return nil
}

// closeStore safely closes the journal, logging any errors encountered.
func (r *Runner) closeStore() {
	if r == nil || r.store == nil {
		return
	}
	if err := r.store.Close(); err != nil {
		r.log.ErrorObj("journal close failed", "error", err)
	}
}

// closeFanout flushes and releases publishers holding remote connections.
func (r *Runner) closeFanout() {
	if r == nil || r.fanout == nil {
		return
	}
	if err := r.fanout.Close(); err != nil {
		r.log.ErrorObj("publisher close failed", "error", err)
	}
}
