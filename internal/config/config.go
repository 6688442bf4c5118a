package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const minSecretKeyLength = 32

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

type Config struct {
	Port              string
	DBPath            string
	SecretKey         string
	Location          *time.Location
	DefaultLanguage   string
	CookieSecure      bool
	CORSOrigins       []string
	Env               string
	LogLevel          string
	LogFile           string
	LogToConsole      bool
	SubmitDelay       time.Duration
	DashboardTick     time.Duration
	MapTick           time.Duration
	NotifyChannel     string
	TelegramBotToken  string
	TelegramChatID    string
	MQTTBroker        string
	MQTTClientID      string
	MQTTUsername      string
	MQTTPassword      string
	MQTTTopic         string
	KafkaBrokers      []string
	KafkaReportsTopic string
	FirestoreProject  string

	// Warnings collects recoverable problems found while loading.
	Warnings []string
}

// Load reads an optional .env file and then the process environment.
// Invalid durations and booleans fall back to their defaults; only the
// secret key is mandatory.
func Load() (*Config, error) {
	warnings := make([]string, 0)
	if err := godotenv.Load(); err != nil {
		warnings = append(warnings, "no .env file found, using environment variables and defaults")
	}

	secretKey, err := ResolveSecretKey()
	if err != nil {
		return nil, err
	}

	location, err := time.LoadLocation(getEnv("TZ", "UTC"))
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("invalid TZ %q, falling back to UTC", getEnv("TZ", "")))
		location = time.UTC
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DBPath:            DBPathFromEnv(),
		SecretKey:         secretKey,
		Location:          location,
		DefaultLanguage:   getEnv("DEFAULT_LANGUAGE", "en"),
		CookieSecure:      getBool("COOKIE_SECURE", false),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		Env:               getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFile:           getEnv("LOG_FILE", ""),
		LogToConsole:      getBool("LOG_TO_CONSOLE", true),
		SubmitDelay:       getDuration("REPORT_SUBMIT_DELAY", 2*time.Second),
		DashboardTick:     getDuration("DASHBOARD_TICK", 5*time.Second),
		MapTick:           getDuration("MAP_TICK", 8*time.Second),
		NotifyChannel:     strings.ToLower(getEnv("NOTIFY_CHANNEL", "log")),
		TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:    getEnv("TELEGRAM_CHAT_ID", ""),
		MQTTBroker:        getEnv("MQTT_BROKER_URL", "tcp://localhost:1883"),
		MQTTClientID:      getEnv("MQTT_CLIENT_ID", ""),
		MQTTUsername:      getEnv("MQTT_USERNAME", ""),
		MQTTPassword:      getEnv("MQTT_PASSWORD", ""),
		MQTTTopic:         getEnv("MQTT_TOPIC", "healthpulse/reminders"),
		KafkaBrokers:      splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaReportsTopic: getEnv("KAFKA_REPORTS_TOPIC", "symptom-reports"),
		FirestoreProject:  getEnv("FIRESTORE_PROJECT_ID", ""),
		Warnings:          warnings,
	}
	return cfg, nil
}

// DBPathFromEnv returns DB_PATH or the default database location. It does not
// require the rest of the configuration to be valid.
func DBPathFromEnv() string {
	return getEnv("DB_PATH", filepath.Join("data", "healthpulse.db"))
}

func (cfg *Config) IsDev() bool {
	return cfg.Env == "development"
}

func ResolveSecretKey() (string, error) {
	secret := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if secret == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretKeys[strings.ToLower(secret)]; insecure {
		return "", errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secret) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secret, nil
}

func getEnv(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getBool(key string, fallback bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
