package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"JurisMonitor/internal/config"
	"JurisMonitor/internal/domain"
	"JurisMonitor/internal/httpapi"
	"JurisMonitor/internal/infrastructure/datajud"
	"JurisMonitor/internal/infrastructure/email"
	"JurisMonitor/internal/infrastructure/scheduler"
	"JurisMonitor/internal/infrastructure/storage"
	"JurisMonitor/internal/infrastructure/whatsapp"
	"JurisMonitor/internal/logging"
	"JurisMonitor/internal/ports"
	"JurisMonitor/internal/tribunal"
	"JurisMonitor/internal/usecase"
	"JurisMonitor/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	store     *storage.Store
	monitor   *usecase.Monitor
	scheduler *usecase.Scheduler
	api       *httpapi.Server
}

// New opens the database and builds every component. ctx bounds background
// work started by the HTTP API.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	loc := cfg.Scheduler.Location()

	store, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	client := datajud.NewClient(datajud.Config{
		BaseURL:         cfg.Datajud.BaseURL,
		APIKey:          cfg.Datajud.APIKey,
		Timeout:         cfg.Datajud.Timeout,
		BreakerFailures: cfg.Datajud.BreakerFailures,
		BreakerCooldown: cfg.Datajud.BreakerCooldown,
	}, baseLogger)
	if err := client.Ready(); err != nil {
		baseLogger.Warn("judicial api not configured; runs will be refused", "error", err)
	}
	router := tribunal.NewRouter(client)

	driver, err := scheduler.NewDailyScheduler(cfg.Scheduler.Times, loc, cfg.Scheduler.RunOnStart)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build scheduler: %w", err)
	}

	fanout := usecase.NewFanout(usecase.FanoutDeps{
		Alerts:     store,
		Recipients: store,
		Log:        store,
		Notifiers:  buildNotifiers(cfg.Notifications, baseLogger),
		AppURL:     cfg.Notifications.AppURL,
		Logger:     baseLogger.With("component", "fanout"),
	})

	monitor := usecase.NewMonitor(usecase.MonitorDeps{
		Processes:     store,
		Movements:     store,
		Consultations: store,
		Status:        store,
		Client:        client,
		Router:        router,
		Fanout:        fanout,
		Schedule:      driver,
		RequestDelay:  cfg.Datajud.RequestDelay,
		Location:      loc,
		Logger:        baseLogger.With("component", "monitor"),
	})

	var reminders *usecase.Reminders
	if !cfg.Reminders.Disabled {
		reminders = usecase.NewReminders(usecase.RemindersDeps{
			Deadlines:  store,
			Movements:  store,
			Recipients: store,
			Fanout:     fanout,
			DaysBefore: cfg.Reminders.DaysBefore,
			AppURL:     cfg.Notifications.AppURL,
			Location:   loc,
			Logger:     baseLogger.With("component", "reminders"),
		})
	}

	api := httpapi.New(httpapi.Deps{
		Monitoring: monitor,
		Alerts:     store,
		Router:     router,
		Health:     store.Ping,
		Background: ctx,
		Logger:     baseLogger.With("component", "http"),
	})

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		store:     store,
		monitor:   monitor,
		scheduler: usecase.NewScheduler(driver, monitor, reminders, cfg.Scheduler.MaxBatch, baseLogger.With("component", "scheduler")),
		api:       api,
	}, nil
}

func buildNotifiers(cfg config.NotificationConfig, logger *slog.Logger) []ports.Notifier {
	var out []ports.Notifier
	if cfg.Email.Enabled() {
		out = append(out, email.NewNotifier(email.Config{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			User:     cfg.Email.User,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
			FromName: cfg.Email.FromName,
		}, logger))
	}
	if cfg.WhatsApp.Enabled() {
		out = append(out, whatsapp.NewNotifier(whatsapp.Config{
			BaseURL:  cfg.WhatsApp.BaseURL,
			APIKey:   cfg.WhatsApp.APIKey,
			Instance: cfg.WhatsApp.Instance,
			Region:   cfg.WhatsApp.Region,
		}, logger))
	}
	if len(out) == 0 {
		logger.Info("no external notification channel configured; alerts stay in-app")
	}
	return out
}

// Serve runs the HTTP API and the scheduler under a supervisor until ctx ends.
func (a *Application) Serve(ctx context.Context) error {
	handler := &sutureslog.Handler{Logger: a.logger.With("component", "supervisor")}
	sup := suture.New("jurismonitor", suture.Spec{
		EventHook: handler.MustHook(),
		Timeout:   shutdownTimeout,
	})

	sup.Add(&httpService{
		server: &http.Server{
			Addr:              a.cfg.HTTP.Addr,
			Handler:           a.api.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          logger.New(a.logger, "http"),
		},
		shutdownTimeout: shutdownTimeout,
	})
	if !a.cfg.Scheduler.Disabled {
		sup.Add(a.scheduler)
	}

	a.logger.Info("serving", "addr", a.cfg.HTTP.Addr, "schedule", a.cfg.Scheduler.Times,
		"timezone", a.cfg.Scheduler.Location().String(), "scheduler_enabled", !a.cfg.Scheduler.Disabled)

	err := sup.Serve(ctx)
	a.api.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// RunOnce executes a single manual cycle.
func (a *Application) RunOnce(ctx context.Context, maxBatch int) (domain.RunSummary, error) {
	return a.monitor.RunCycle(ctx, domain.RunOptions{
		MaxBatch: maxBatch,
		Trigger:  domain.TriggerManual,
	})
}

// Close releases the database.
func (a *Application) Close() error {
	return a.store.Close()
}
