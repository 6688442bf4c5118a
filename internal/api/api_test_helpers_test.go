package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/healthpulse/internal/db"
	"github.com/terraincognita07/healthpulse/internal/i18n"
	"github.com/terraincognita07/healthpulse/internal/services"
)

type testNotifier struct {
	mu         sync.Mutex
	permission services.Permission
	titles     []string
}

func (notifier *testNotifier) RequestPermission(context.Context) (services.Permission, error) {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	return notifier.permission, nil
}

func (notifier *testNotifier) Notify(_ context.Context, title string, _ string) error {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	notifier.titles = append(notifier.titles, title)
	return nil
}

func (notifier *testNotifier) setPermission(permission services.Permission) {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	notifier.permission = permission
}

func (notifier *testNotifier) sentTitles() []string {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	return append([]string(nil), notifier.titles...)
}

type testApp struct {
	app       *fiber.App
	repos     *db.Repositories
	notifier  *testNotifier
	scheduler *services.ReminderScheduler
}

func newTestApp(t *testing.T) testApp {
	t.Helper()
	return newTestAppWithSubmitDelay(t, 0)
}

func newTestAppWithSubmitDelay(t *testing.T, submitDelay time.Duration) testApp {
	t.Helper()

	logger := zerolog.Nop()
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "healthpulse-test.db"), logger)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	repos := db.NewRepositories(database)
	i18nManager, err := i18n.NewManager(i18n.LangEN, i18n.EmbeddedLocales())
	if err != nil {
		t.Fatalf("init i18n: %v", err)
	}

	notifier := &testNotifier{permission: services.PermissionDefault}
	scheduler := services.NewReminderScheduler(notifier, services.NewSystemClock(time.UTC), logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := scheduler.Start(ctx, nil); err != nil {
		t.Fatalf("start scheduler: %v", err)
	}

	wardMap, err := services.LoadWardMap(repos.Wards, logger)
	if err != nil {
		t.Fatalf("load ward map: %v", err)
	}

	handler, err := NewHandler(Dependencies{
		I18n:      i18nManager,
		Reports:   services.NewReportService(repos.Reports, submitDelay, logger),
		Trends:    services.NewTrendService(repos.Reports, time.UTC),
		Diary:     services.NewDiaryService(repos.Diary),
		Reminders: services.NewReminderService(repos.Reminders, scheduler, logger),
		Scheduler: scheduler,
		Dashboard: services.NewDashboardState(),
		WardMap:   wardMap,
	}, Options{
		SecretKey: "test-secret-key-with-enough-length",
		Location:  time.UTC,
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, handler)
	return testApp{app: app, repos: repos, notifier: notifier, scheduler: scheduler}
}

func (fixture testApp) jsonRequest(method string, path string, body any, cookies ...*http.Cookie) *http.Request {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(payload)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	return request
}

func (fixture testApp) do(t *testing.T, method string, path string, body any, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	response, err := fixture.app.Test(fixture.jsonRequest(method, path, body, cookies...), -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return response
}

func (fixture testApp) doWithHeader(t *testing.T, path string, header string, value string) *http.Response {
	t.Helper()

	request := httptest.NewRequest(http.MethodGet, path, nil)
	request.Header.Set(header, value)
	response, err := fixture.app.Test(request, -1)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return response
}

// deviceCookie performs a request to obtain a fresh device cookie.
func (fixture testApp) deviceCookie(t *testing.T) *http.Cookie {
	t.Helper()

	response := fixture.do(t, http.MethodGet, "/api/wards", nil)
	defer response.Body.Close()
	cookie := responseCookie(response, deviceCookieName)
	if cookie == nil {
		t.Fatal("expected device cookie to be issued")
	}
	return cookie
}

func responseCookie(response *http.Response, name string) *http.Cookie {
	for _, cookie := range response.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func decodeJSON(t *testing.T, response *http.Response, target any) {
	t.Helper()
	defer response.Body.Close()
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func expectStatus(t *testing.T, response *http.Response, expected int) {
	t.Helper()
	if response.StatusCode != expected {
		body, _ := io.ReadAll(response.Body)
		t.Fatalf("expected status %d, got %d: %s", expected, response.StatusCode, string(body))
	}
}
