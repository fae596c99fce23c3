package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"deltawatch/internal/alert"
	"deltawatch/internal/config"
	"deltawatch/internal/gateway/delta"
	"deltawatch/internal/gateway/notifier"
	"deltawatch/internal/gateway/sheets"
	"deltawatch/internal/logger"
	"deltawatch/internal/monitor"
	"deltawatch/internal/scheduler"
	monitorhttp "deltawatch/internal/transport/http"
)

// App wires configuration into the monitor, the scheduler and the HTTP
// server, and runs them until the context is cancelled.
type App struct {
	cfg     *config.Config
	monitor *monitor.Monitor
	http    *monitorhttp.Server
}

// New builds the application from configuration without starting it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)

	exchange, err := delta.NewClient(cfg.Exchange)
	if err != nil {
		return nil, fmt.Errorf("building exchange client: %w", err)
	}

	sheet, err := sheets.NewClient(ctx, cfg.Sheets)
	if err != nil {
		return nil, fmt.Errorf("building sheets client: %w", err)
	}

	telegram := notifier.NewTelegram("", "")
	if cfg.Notify.Telegram.Enabled {
		telegram = notifier.NewTelegram(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID)
	}

	store := alert.NewStore(sheet)
	evaluator := alert.NewEvaluator(store, telegram)
	mon := monitor.New(exchange, store, evaluator, sheet)

	server, err := monitorhttp.NewServer(cfg.App.HTTPAddr, mon)
	if err != nil {
		return nil, fmt.Errorf("building http server: %w", err)
	}

	return &App{cfg: cfg, monitor: mon, http: server}, nil
}

// Run starts the HTTP server and the monitoring loop.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := a.http.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		sched := scheduler.NewIntervalScheduler(ctx, time.Duration(a.cfg.Monitor.IntervalSeconds)*time.Second)
		sched.RunImmediately = a.cfg.Monitor.RunImmediately
		sched.Start(func() {
			a.monitor.RunCycle(ctx)
		})
		return nil
	})

	return group.Wait()
}

// Monitor exposes the monitor instance for test harnesses.
func (a *App) Monitor() *monitor.Monitor {
	if a == nil {
		return nil
	}
	return a.monitor
}
