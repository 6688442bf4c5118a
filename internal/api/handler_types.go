package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/healthpulse/internal/i18n"
	"github.com/terraincognita07/healthpulse/internal/services"
)

const (
	deviceCookieName       = "healthpulse_device"
	languageCookieName     = "healthpulse_lang"
	contextDeviceKey       = "device_id"
	contextDeviceIssuedKey = "device_issued"
	contextLanguageKey     = "lang"

	deviceTokenTTL = 365 * 24 * time.Hour

	reportLimit       = 10
	reportLimitWindow = 10 * time.Minute

	findDoctorURL = "https://www.google.com/maps/search/nearby%20clinics%20hospitals"
)

type Handler struct {
	secretKey    []byte
	location     *time.Location
	cookieSecure bool
	logger       zerolog.Logger
	now          func() time.Time

	i18n      *i18n.Manager
	reports   *services.ReportService
	trends    *services.TrendService
	diary     *services.DiaryService
	reminders *services.ReminderService
	scheduler *services.ReminderScheduler
	dashboard *services.DashboardState
	wardMap   *services.WardMap

	reportLimiter *attemptLimiter
}

type deviceClaims struct {
	DeviceID string `json:"did"`
	jwt.RegisteredClaims
}

type reportPayload struct {
	Symptoms []string `json:"symptoms" form:"symptoms"`
	Ward     string   `json:"ward" form:"ward"`
	Lat      *float64 `json:"lat" form:"lat"`
	Lng      *float64 `json:"lng" form:"lng"`
}

type diaryPayload struct {
	Date     string   `json:"date" form:"date"`
	Symptoms []string `json:"symptoms" form:"symptoms"`
	Severity int      `json:"severity" form:"severity"`
	Notes    string   `json:"notes" form:"notes"`
}

type reminderPayload struct {
	Name       string `json:"name" form:"name"`
	Time       string `json:"time" form:"time"`
	Frequency  string `json:"frequency" form:"frequency"`
	Recurrence string `json:"recurrence" form:"recurrence"`
}

type localizedSymptom struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

type dashboardResponse struct {
	services.DashboardMetrics
	WeeklyTrend   []services.TrendPoint `json:"weekly_trend"`
	TrendIsSample bool                  `json:"trend_is_sample"`
}
