package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

func TestRequestLoggerWritesOneEventPerRequest(t *testing.T) {
	var buffer bytes.Buffer
	logger := zerolog.New(&buffer)

	app := fiber.New()
	app.Use(RequestLogger(logger))
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return apiError(c, fiber.StatusNotFound, "not found")
	})

	for _, path := range []string{"/ok", "/missing"} {
		response, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		response.Body.Close()
	}

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two log lines, got %d: %q", len(lines), buffer.String())
	}

	expected := []struct {
		level  string
		path   string
		status int
	}{
		{level: "info", path: "/ok", status: http.StatusNoContent},
		{level: "warn", path: "/missing", status: http.StatusNotFound},
	}
	for index, line := range lines {
		event := map[string]any{}
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if event["level"] != expected[index].level || event["path"] != expected[index].path {
			t.Fatalf("unexpected log event: %#v", event)
		}
		if status, _ := event["status"].(float64); int(status) != expected[index].status {
			t.Fatalf("expected status %d, got %#v", expected[index].status, event["status"])
		}
		if event["message"] != "request" {
			t.Fatalf("expected request message, got %#v", event["message"])
		}
	}
}
