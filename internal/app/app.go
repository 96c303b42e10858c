package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"FieldOps/internal/config"
	"FieldOps/internal/geo"
	"FieldOps/internal/infrastructure/llm"
	"FieldOps/internal/infrastructure/scheduler"
	"FieldOps/internal/infrastructure/slack"
	"FieldOps/internal/infrastructure/storage"
	"FieldOps/internal/infrastructure/telegram"
	"FieldOps/internal/logging"
	"FieldOps/internal/narrative"
	"FieldOps/internal/ports"
	"FieldOps/internal/provider"
	"FieldOps/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	store  *storage.Store
	logger *slog.Logger

	Dispatcher  *usecase.Dispatcher
	Ledger      *usecase.Ledger
	Digests     *usecase.DigestService
	Schedule    *usecase.ScheduleService
	Preferences *usecase.PreferenceService
	scheduler   *usecase.Scheduler
}

// New opens the store and builds every use case.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	text, err := selectProvider(ctx, cfg, baseLogger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	app := build(cfg, store, text, baseLogger)

	cron, err := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location(), baseLogger.With("component", "scheduler"))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("digest schedule: %w", err)
	}
	app.scheduler = usecase.NewScheduler(cron, app.Digests, baseLogger.With("component", "digest.scheduler"))
	return app, nil
}

func build(cfg config.Config, store *storage.Store, text ports.TextGenerator, baseLogger *slog.Logger) *Application {
	loc := cfg.Scheduler.Location()
	nc := cfg.Narrative

	generator := narrative.NewGenerator(narrative.GeneratorDeps{
		Text:    text,
		Cache:   narrative.NewCache(store, nc.CacheTTL, nil),
		Limiter: narrative.NewRateLimiter(store, nc.RateLimit.Window, nc.RateLimit.MaxCalls, nil),
		Usage:   store,
		Policy: narrative.RetryPolicy{
			MaxAttempts:    nc.MaxAttempts,
			BaseDelay:      nc.BaseDelay,
			MaxDelay:       nc.MaxDelay,
			AttemptTimeout: nc.AttemptTimeout,
		},
		Logger: baseLogger.With("component", "narrative"),
	})

	gatherer := usecase.NewContextGatherer(usecase.ContextDeps{
		WorkItems:       store,
		Interactions:    store,
		Schedule:        store,
		Actors:          store,
		DefaultPosition: geo.Point{Lat: cfg.Dispatch.DefaultLat, Lng: cfg.Dispatch.DefaultLng},
		Location:        loc,
		Logger:          baseLogger.With("component", "context"),
	})

	return &Application{
		cfg:    cfg,
		store:  store,
		logger: baseLogger,
		Dispatcher: usecase.NewDispatcher(usecase.DispatcherDeps{
			WorkItems: store,
			Actors:    store,
			Generator: generator,
			Logger:    baseLogger.With("component", "dispatcher"),
		}),
		Ledger: usecase.NewLedger(usecase.LedgerDeps{
			WorkItems:    store,
			Interactions: store,
			Aggregates:   store,
			Schedule:     store,
			Generator:    generator,
			Limits: usecase.Limits{
				MaxNoteLength:        cfg.Ledger.MaxNoteLength,
				MaxOpeningLineLength: cfg.Ledger.MaxOpeningLineLength,
				MaxOutcomeLength:     cfg.Ledger.MaxOutcomeLength,
				MaxMediaRefs:         cfg.Ledger.MaxMediaRefs,
			},
			FollowUpTimeout: nc.FollowUpTimeout,
			Location:        loc,
			Logger:          baseLogger.With("component", "ledger"),
		}),
		Digests: usecase.NewDigestService(usecase.DigestDeps{
			Digests:     store,
			Actors:      store,
			Context:     gatherer,
			Generator:   generator,
			Notifiers:   notifiers(cfg.Notifications),
			Location:    loc,
			Concurrency: cfg.Scheduler.Concurrency,
			Logger:      baseLogger.With("component", "digest"),
		}),
		Schedule:    usecase.NewScheduleService(store, nil),
		Preferences: usecase.NewPreferenceService(store),
	}
}

func selectProvider(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.TextGenerator, error) {
	registry := provider.NewRegistry()

	if cfg.Gemini.APIKey != "" {
		gemini, err := llm.NewGeminiGenerator(ctx, cfg.Gemini, &http.Client{Timeout: cfg.Narrative.AttemptTimeout})
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		registry.Register(gemini)
	}
	if cfg.ChatGPT.APIKey != "" {
		registry.Register(llm.NewChatGPTClient(cfg.ChatGPT))
	}

	text, err := registry.Select(cfg.Narrative.Provider)
	if err != nil {
		return nil, err
	}
	if text == nil {
		logger.Warn("no text provider configured, narrative output will use templates")
		return nil, nil
	}
	logger.Info("text provider selected", "provider", text.Name(), "registered", registry.Names())
	return text, nil
}

func notifiers(cfg config.NotificationConfig) []ports.Notifier {
	var out []ports.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		out = append(out, telegram.NewNotifier(cfg.Telegram.BaseURL, cfg.Telegram.BotToken, cfg.Telegram.ChatID))
	}
	if cfg.Slack.WebhookURL != "" {
		out = append(out, slack.NewNotifier(cfg.Slack.WebhookURL))
	}
	return out
}

// Location is the timezone that defines calendar days.
func (a *Application) Location() *time.Location {
	return a.cfg.Scheduler.Location()
}

// Store exposes the underlying store for seeding.
func (a *Application) Store() *storage.Store {
	return a.store
}

// Serve runs the daily digest scheduler until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("digest scheduler running",
		"cron", a.cfg.Scheduler.CronExpression,
		"timezone", a.cfg.Scheduler.Timezone,
	)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.scheduler.Stop(stopCtx)
}

// Close releases the store.
func (a *Application) Close() error {
	return a.store.Close()
}
