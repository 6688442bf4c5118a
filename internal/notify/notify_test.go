package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/healthpulse/internal/config"
	"github.com/terraincognita07/healthpulse/internal/services"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func completedToken(err error) *fakeToken {
	token := &fakeToken{done: make(chan struct{}), err: err}
	close(token.done)
	return token
}

func (token *fakeToken) Wait() bool                     { <-token.done; return true }
func (token *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (token *fakeToken) Done() <-chan struct{}          { return token.done }
func (token *fakeToken) Error() error                   { return token.err }

type fakePublisher struct {
	connected bool
	topic     string
	payload   []byte
	err       error
}

func (publisher *fakePublisher) IsConnected() bool {
	return publisher.connected
}

func (publisher *fakePublisher) Publish(topic string, _ byte, _ bool, payload interface{}) mqtt.Token {
	publisher.topic = topic
	publisher.payload = payload.([]byte)
	return completedToken(publisher.err)
}

func TestTelegramNotifierPostsMessage(t *testing.T) {
	var gotPath, gotText, gotChat string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotText = r.PostForm.Get("text")
		gotChat = r.PostForm.Get("chat_id")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier, err := NewTelegramNotifier("token-1", "42")
	if err != nil {
		t.Fatalf("NewTelegramNotifier() unexpected error: %v", err)
	}
	notifier.apiBase = server.URL

	if err := notifier.Notify(context.Background(), "Medicine Reminder", "Time to take Iron"); err != nil {
		t.Fatalf("Notify() unexpected error: %v", err)
	}
	if gotPath != "/bottoken-1/sendMessage" || gotChat != "42" || gotText != "Medicine Reminder\nTime to take Iron" {
		t.Fatalf("unexpected request path=%q chat=%q text=%q", gotPath, gotChat, gotText)
	}
}

func TestTelegramNotifierReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chat not found", http.StatusBadRequest)
	}))
	defer server.Close()

	notifier, _ := NewTelegramNotifier("token-1", "42")
	notifier.apiBase = server.URL

	err := notifier.Notify(context.Background(), "t", "b")
	if err == nil || !strings.Contains(err.Error(), "telegram status 400") {
		t.Fatalf("expected telegram status error, got %v", err)
	}
}

func TestNewTelegramNotifierRequiresCredentials(t *testing.T) {
	if _, err := NewTelegramNotifier("", "42"); err == nil {
		t.Fatal("expected missing token to be rejected")
	}
	if _, err := NewTelegramNotifier("token", " "); err == nil {
		t.Fatal("expected missing chat id to be rejected")
	}
}

func TestMQTTNotifierPermissionFollowsConnection(t *testing.T) {
	publisher := &fakePublisher{}
	notifier := newMQTTNotifier(publisher, "")

	if permission, _ := notifier.RequestPermission(context.Background()); permission != services.PermissionDefault {
		t.Fatalf("expected default while disconnected, got %q", permission)
	}
	publisher.connected = true
	if permission, _ := notifier.RequestPermission(context.Background()); permission != services.PermissionGranted {
		t.Fatalf("expected granted while connected, got %q", permission)
	}
}

func TestMQTTNotifierPublishesJSON(t *testing.T) {
	publisher := &fakePublisher{connected: true}
	notifier := newMQTTNotifier(publisher, "clinic/reminders")
	notifier.now = func() time.Time { return time.Date(2026, time.May, 1, 8, 0, 0, 0, time.UTC) }

	if err := notifier.Notify(context.Background(), "Medicine Reminder", "Time to take ORS"); err != nil {
		t.Fatalf("Notify() unexpected error: %v", err)
	}
	if publisher.topic != "clinic/reminders" {
		t.Fatalf("unexpected topic %q", publisher.topic)
	}

	var message mqttMessage
	if err := json.Unmarshal(publisher.payload, &message); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if message.Title != "Medicine Reminder" || message.Body != "Time to take ORS" || message.SentAt.Hour() != 8 {
		t.Fatalf("unexpected payload %+v", message)
	}

	publisher.err = errors.New("not authorized")
	if err := notifier.Notify(context.Background(), "t", "b"); err == nil {
		t.Fatal("expected publish error")
	}
}

func TestMQTTClientIDFallsBackToRandom(t *testing.T) {
	if id, _ := mqttClientID(" fixed "); id != "fixed" {
		t.Fatalf("expected configured id, got %q", id)
	}
	id, err := mqttClientID("")
	if err != nil || !strings.HasPrefix(id, "healthpulse-") {
		t.Fatalf("expected generated id, got %q, %v", id, err)
	}
}

func TestFromConfigSelectsChannel(t *testing.T) {
	logger := zerolog.Nop()

	if _, ok := FromConfig(&config.Config{}, logger).(*LogNotifier); !ok {
		t.Fatal("expected log notifier by default")
	}
	if _, ok := FromConfig(&config.Config{NotifyChannel: "none"}, logger).(Disabled); !ok {
		t.Fatal("expected disabled notifier")
	}
	if _, ok := FromConfig(&config.Config{NotifyChannel: "telegram"}, logger).(*LogNotifier); !ok {
		t.Fatal("expected log fallback for unconfigured telegram")
	}
	if _, ok := FromConfig(&config.Config{NotifyChannel: "TELEGRAM", TelegramBotToken: "t", TelegramChatID: "1"}, logger).(*TelegramNotifier); !ok {
		t.Fatal("expected telegram notifier")
	}
	if _, ok := FromConfig(&config.Config{NotifyChannel: "mqtt"}, logger).(*LogNotifier); !ok {
		t.Fatal("expected log fallback without broker")
	}
	if _, ok := FromConfig(&config.Config{NotifyChannel: "pager"}, logger).(*LogNotifier); !ok {
		t.Fatal("expected log fallback for unknown channel")
	}
}

func TestLogAndDisabledPermissions(t *testing.T) {
	if permission, _ := NewLogNotifier(zerolog.Nop()).RequestPermission(context.Background()); permission != services.PermissionGranted {
		t.Fatalf("expected log notifier granted, got %q", permission)
	}
	if permission, _ := (Disabled{}).RequestPermission(context.Background()); permission != services.PermissionDenied {
		t.Fatalf("expected disabled notifier denied, got %q", permission)
	}
}
