package api

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/healthpulse/internal/i18n"
	"github.com/terraincognita07/healthpulse/internal/services"
)

type Dependencies struct {
	I18n      *i18n.Manager
	Reports   *services.ReportService
	Trends    *services.TrendService
	Diary     *services.DiaryService
	Reminders *services.ReminderService
	Scheduler *services.ReminderScheduler
	Dashboard *services.DashboardState
	WardMap   *services.WardMap
}

type Options struct {
	SecretKey    string
	Location     *time.Location
	CookieSecure bool
	Logger       zerolog.Logger
}

func NewHandler(deps Dependencies, options Options) (*Handler, error) {
	if options.SecretKey == "" {
		return nil, errors.New("secret key is required")
	}
	if deps.I18n == nil {
		return nil, errors.New("i18n manager is required")
	}
	if deps.Reports == nil || deps.Trends == nil || deps.Diary == nil || deps.Reminders == nil || deps.Scheduler == nil {
		return nil, errors.New("report, trend, diary and reminder services are required")
	}
	if deps.Dashboard == nil || deps.WardMap == nil {
		return nil, errors.New("dashboard state and ward map are required")
	}

	location := options.Location
	if location == nil {
		location = time.Local
	}

	return &Handler{
		secretKey:     []byte(options.SecretKey),
		location:      location,
		cookieSecure:  options.CookieSecure,
		logger:        options.Logger.With().Str("component", "api").Logger(),
		now:           time.Now,
		i18n:          deps.I18n,
		reports:       deps.Reports,
		trends:        deps.Trends,
		diary:         deps.Diary,
		reminders:     deps.Reminders,
		scheduler:     deps.Scheduler,
		dashboard:     deps.Dashboard,
		wardMap:       deps.WardMap,
		reportLimiter: newAttemptLimiter(),
	}, nil
}

func (handler *Handler) currentTime() time.Time {
	return handler.now().In(handler.location)
}
