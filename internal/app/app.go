package app

import (
	"context"
	"fmt"
	"log/slog"

	"StartupDigest/internal/config"
	"StartupDigest/internal/crawl"
	"StartupDigest/internal/domain"
	"StartupDigest/internal/infrastructure/crawlers"
	"StartupDigest/internal/infrastructure/fetch"
	"StartupDigest/internal/infrastructure/scheduler"
	"StartupDigest/internal/infrastructure/slack"
	"StartupDigest/internal/infrastructure/storage"
	"StartupDigest/internal/logging"
	"StartupDigest/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	store     *storage.SQLiteStore
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(ctx, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	client := fetch.New(cfg.Crawl.Timeout(), cfg.Crawl.RequestsPerSecond, cfg.Crawl.UserAgent)

	// The source set is fixed and small; declaration order is the
	// aggregation order of crawl results.
	sources := []crawl.Crawler{
		crawlers.NewKStartup(client, "", baseLogger.With("component", "crawler.kstartup")),
		crawlers.NewMSS(client, "", baseLogger.With("component", "crawler.mss")),
		crawlers.NewKISED(client, "", baseLogger.With("component", "crawler.kised")),
		crawlers.NewBizinfo(client, "", baseLogger.With("component", "crawler.bizinfo")),
		crawlers.NewNaverNews(client, cfg.Naver, "", baseLogger.With("component", "crawler.naver")),
	}

	orchestrator := usecase.NewOrchestrator(sources, store, baseLogger.With("component", "orchestrator"))
	processor := usecase.NewProcessor(store, cfg.Crawl, baseLogger.With("component", "processor"))
	notifier := slack.New(cfg.Slack, "", baseLogger.With("component", "notifier"))
	pipeline := usecase.NewPipeline(orchestrator, processor, notifier, store, baseLogger.With("component", "pipeline"))

	driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, pipeline, baseLogger.With("component", "scheduler"))

	return &Application{cfg: cfg, store: store, pipeline: pipeline, scheduler: sched}, nil
}

// RunOnce performs a single pipeline execution.
func (a *Application) RunOnce(ctx context.Context) (domain.RunSummary, error) {
	return a.pipeline.Run(ctx)
}

// RunScheduled starts the cron loop and blocks until the context ends.
func (a *Application) RunScheduled(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()
	return a.scheduler.Stop(context.Background())
}

// Close releases held resources.
func (a *Application) Close() error {
	return a.store.Close()
}
