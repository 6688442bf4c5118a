package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/healthpulse/internal/api"
	"github.com/terraincognita07/healthpulse/internal/config"
	"github.com/terraincognita07/healthpulse/internal/datastore"
	"github.com/terraincognita07/healthpulse/internal/db"
	"github.com/terraincognita07/healthpulse/internal/events"
	"github.com/terraincognita07/healthpulse/internal/i18n"
	"github.com/terraincognita07/healthpulse/internal/notify"
	"github.com/terraincognita07/healthpulse/internal/services"
)

const shutdownTimeout = 10 * time.Second

func runServer(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	database, err := db.OpenSQLite(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	repos := db.NewRepositories(database)

	i18nManager, err := i18n.NewManager(cfg.DefaultLanguage, i18n.EmbeddedLocales())
	if err != nil {
		return fmt.Errorf("i18n init failed: %w", err)
	}

	lifecycleCtx, cancelLifecycle := context.WithCancel(ctx)
	defer cancelLifecycle()

	scheduler := services.NewReminderScheduler(notify.FromConfig(cfg, logger), services.NewSystemClock(cfg.Location), logger)
	scheduler.SetCopy(reminderCopy(i18nManager, i18nManager.DefaultLanguage()))
	reminderService := services.NewReminderService(repos.Reminders, scheduler, logger)
	scheduler.OnFired(reminderService.RecordFired)

	enabled, err := reminderService.LoadEnabled()
	if err != nil {
		return err
	}
	if err := scheduler.Start(lifecycleCtx, enabled); err != nil {
		return fmt.Errorf("reminder scheduler: %w", err)
	}
	defer scheduler.Stop()

	sinks, closeSinks := buildReportSinks(lifecycleCtx, cfg, logger)
	defer closeSinks()

	dashboard := services.NewDashboardState()
	wardMap, err := services.LoadWardMap(repos.Wards, logger)
	if err != nil {
		return err
	}

	source := services.NewRandomDeltaSource(time.Now().UnixNano())
	feeds := []*services.LiveMetricFeed{
		services.NewLiveMetricFeed("dashboard", cfg.DashboardTick, source, dashboard, logger),
		services.NewLiveMetricFeed("ward_map", cfg.MapTick, source, wardMap, logger),
	}
	for _, feed := range feeds {
		if err := feed.Start(lifecycleCtx); err != nil {
			return fmt.Errorf("start live feed: %w", err)
		}
		defer feed.Stop()
	}

	handler, err := api.NewHandler(api.Dependencies{
		I18n:      i18nManager,
		Reports:   services.NewReportService(repos.Reports, cfg.SubmitDelay, logger, sinks...),
		Trends:    services.NewTrendService(repos.Reports, cfg.Location),
		Diary:     services.NewDiaryService(repos.Diary),
		Reminders: reminderService,
		Scheduler: scheduler,
		Dashboard: dashboard,
		WardMap:   wardMap,
	}, api.Options{
		SecretKey:    cfg.SecretKey,
		Location:     cfg.Location,
		CookieSecure: cfg.CookieSecure,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "HealthPulse",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(api.RequestLogger(logger))
	app.Use(compress.New())
	app.Use(cors.New(corsMiddlewareConfig(cfg.CORSOrigins)))
	api.RegisterRoutes(app, handler)

	go func() {
		<-lifecycleCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	logger.Info().
		Str("port", cfg.Port).
		Str("db", cfg.DBPath).
		Str("tz", cfg.Location.String()).
		Msg("HealthPulse listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func reminderCopy(manager *i18n.Manager, language string) services.ReminderCopy {
	return services.ReminderCopy{
		Title:        manager.Translate(language, "reminder.title"),
		BodyFormat:   manager.Translate(language, "reminder.body"),
		EnabledTitle: manager.Translate(language, "notifications.title"),
		EnabledBody:  manager.Translate(language, "notifications.enabled"),
	}
}

// buildReportSinks returns the secondary destinations for stored reports and
// a func closing them.
func buildReportSinks(ctx context.Context, cfg *config.Config, logger zerolog.Logger) ([]services.ReportSink, func()) {
	mirror := datastore.OpenReportMirror(ctx, cfg.FirestoreProject, logger)
	sinks := []services.ReportSink{mirror}
	closers := []func() error{mirror.Close}

	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := events.NewReportPublisher(cfg.KafkaBrokers, cfg.KafkaReportsTopic)
		if err != nil {
			logger.Warn().Err(err).Msg("kafka report publisher disabled")
		} else {
			sinks = append(sinks, publisher)
			closers = append(closers, publisher.Close)
		}
	}

	return sinks, func() {
		var errs []error
		for _, closeSink := range closers {
			if err := closeSink(); err != nil {
				errs = append(errs, err)
			}
		}
		if err := errors.Join(errs...); err != nil {
			logger.Warn().Err(err).Msg("close report sinks failed")
		}
	}
}

func corsMiddlewareConfig(origins []string) cors.Config {
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
		}
	}
	return cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Accept-Language",
		AllowCredentials: allowCredentials,
	}
}
