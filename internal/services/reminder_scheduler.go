package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/healthpulse/internal/models"
)

type ReminderState string

const (
	ReminderIdle  ReminderState = "idle"
	ReminderArmed ReminderState = "armed"
	ReminderFired ReminderState = "fired"
)

type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

type Notifier interface {
	RequestPermission(ctx context.Context) (Permission, error)
	Notify(ctx context.Context, title string, body string) error
}

// ReminderCopy holds the user-facing notification texts. BodyFormat takes
// the reminder name.
type ReminderCopy struct {
	Title        string
	BodyFormat   string
	EnabledTitle string
	EnabledBody  string
}

func DefaultReminderCopy() ReminderCopy {
	return ReminderCopy{
		Title:        "Medicine Reminder",
		BodyFormat:   "Time to take %s",
		EnabledTitle: "HealthPulse",
		EnabledBody:  "Notifications enabled! You'll receive medicine reminders.",
	}
}

type ReminderStatus struct {
	State        ReminderState `json:"state"`
	NextFireTime *time.Time    `json:"next_fire_time,omitempty"`
	LastFiredAt  *time.Time    `json:"last_fired_at,omitempty"`
}

type scheduledReminder struct {
	reminder   models.Reminder
	state      ReminderState
	next       time.Time
	lastFired  *time.Time
	timer      Timer
	generation uint64
	inflight   chan struct{}
}

// ReminderScheduler drives the Idle -> Armed -> Fired lifecycle of every
// known reminder. Timer callbacks carry the generation they were armed
// with; a callback whose generation is stale does nothing.
type ReminderScheduler struct {
	notifier Notifier
	clock    Clock
	logger   zerolog.Logger

	mu         sync.Mutex
	messages   ReminderCopy
	onFired    func(reminderID uint, firedAt time.Time)
	reminders  map[uint]*scheduledReminder
	permission Permission
	ctx        context.Context
	stopped    bool
}

func NewReminderScheduler(notifier Notifier, clock Clock, logger zerolog.Logger) *ReminderScheduler {
	if clock == nil {
		clock = NewSystemClock(nil)
	}
	return &ReminderScheduler{
		notifier:   notifier,
		clock:      clock,
		logger:     logger.With().Str("component", "reminders").Logger(),
		messages:   DefaultReminderCopy(),
		reminders:  make(map[uint]*scheduledReminder),
		permission: PermissionDefault,
		ctx:        context.Background(),
	}
}

func (scheduler *ReminderScheduler) SetCopy(messages ReminderCopy) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	scheduler.messages = messages
}

// OnFired registers a hook called after each delivered reminder.
func (scheduler *ReminderScheduler) OnFired(hook func(reminderID uint, firedAt time.Time)) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	scheduler.onFired = hook
}

// Start reads the current notification permission, registers the persisted
// reminders and arms the enabled ones. The scheduler stops when ctx is done.
func (scheduler *ReminderScheduler) Start(ctx context.Context, reminders []models.Reminder) error {
	permission, err := scheduler.notifier.RequestPermission(ctx)
	if err != nil {
		scheduler.logger.Warn().Err(err).Msg("read notification permission failed")
		permission = PermissionDefault
	}

	scheduler.mu.Lock()
	if scheduler.stopped {
		scheduler.mu.Unlock()
		return fmt.Errorf("reminder scheduler stopped")
	}
	scheduler.ctx = ctx
	scheduler.permission = permission
	for _, reminder := range reminders {
		scheduler.upsertLocked(reminder)
	}
	scheduler.mu.Unlock()

	scheduler.logger.Info().Str("permission", string(permission)).Int("reminders", len(reminders)).Msg("reminder scheduler started")

	go func() {
		<-ctx.Done()
		scheduler.Stop()
	}()
	return nil
}

// Stop cancels every pending fire and waits for notifications already being
// delivered.
func (scheduler *ReminderScheduler) Stop() {
	scheduler.mu.Lock()
	if scheduler.stopped {
		scheduler.mu.Unlock()
		return
	}
	scheduler.stopped = true

	waits := make([]chan struct{}, 0)
	for _, entry := range scheduler.reminders {
		scheduler.cancelLocked(entry)
		if entry.inflight != nil {
			waits = append(waits, entry.inflight)
		}
	}
	scheduler.mu.Unlock()

	for _, wait := range waits {
		<-wait
	}
	scheduler.logger.Info().Msg("reminder scheduler stopped")
}

// Arm registers or updates reminder and schedules it when it is enabled and
// notifications are granted. Otherwise the reminder is left idle.
func (scheduler *ReminderScheduler) Arm(reminder models.Reminder) ReminderStatus {
	scheduler.mu.Lock()
	entry, wait := scheduler.upsertLocked(reminder)
	status := entry.status()
	scheduler.mu.Unlock()

	if wait != nil {
		<-wait
	}
	return status
}

// Disarm cancels the pending fire of a reminder. When it returns no
// notification for the reminder is in flight.
func (scheduler *ReminderScheduler) Disarm(reminderID uint) {
	scheduler.mu.Lock()
	entry, ok := scheduler.reminders[reminderID]
	if !ok {
		scheduler.mu.Unlock()
		return
	}
	entry.reminder.Enabled = false
	scheduler.cancelLocked(entry)
	wait := entry.inflight
	scheduler.mu.Unlock()

	if wait != nil {
		<-wait
	}
}

func (scheduler *ReminderScheduler) Remove(reminderID uint) {
	scheduler.Disarm(reminderID)

	scheduler.mu.Lock()
	delete(scheduler.reminders, reminderID)
	scheduler.mu.Unlock()
}

func (scheduler *ReminderScheduler) Status(reminderID uint) (ReminderStatus, bool) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	entry, ok := scheduler.reminders[reminderID]
	if !ok {
		return ReminderStatus{State: ReminderIdle}, false
	}
	return entry.status(), true
}

func (scheduler *ReminderScheduler) Permission() Permission {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return scheduler.permission
}

// RequestPermission asks the notifier for permission. A grant sends a
// confirmation and arms every enabled reminder; anything else returns all
// reminders to idle. Permission belongs to the notification channel, so it
// is process-wide: one device granting it arms the reminders of every device.
func (scheduler *ReminderScheduler) RequestPermission(ctx context.Context) (Permission, error) {
	permission, err := scheduler.notifier.RequestPermission(ctx)
	if err != nil {
		return scheduler.Permission(), fmt.Errorf("request notification permission: %w", err)
	}

	scheduler.applyPermission(permission)

	if permission == PermissionGranted {
		scheduler.mu.Lock()
		messages := scheduler.messages
		scheduler.mu.Unlock()
		if err := scheduler.notifier.Notify(ctx, messages.EnabledTitle, messages.EnabledBody); err != nil {
			scheduler.logger.Warn().Err(err).Msg("send confirmation notification failed")
		}
	}
	return permission, nil
}

func (scheduler *ReminderScheduler) applyPermission(permission Permission) {
	scheduler.mu.Lock()
	scheduler.permission = permission

	waits := make([]chan struct{}, 0)
	for _, entry := range scheduler.reminders {
		if permission == PermissionGranted {
			if entry.reminder.Enabled && entry.state == ReminderIdle {
				scheduler.armLocked(entry)
			}
			continue
		}
		scheduler.cancelLocked(entry)
		if entry.inflight != nil {
			waits = append(waits, entry.inflight)
		}
	}
	scheduler.mu.Unlock()

	for _, wait := range waits {
		<-wait
	}
	scheduler.logger.Info().Str("permission", string(permission)).Msg("notification permission updated")
}

func (scheduler *ReminderScheduler) upsertLocked(reminder models.Reminder) (*scheduledReminder, chan struct{}) {
	entry, ok := scheduler.reminders[reminder.ID]
	if !ok {
		entry = &scheduledReminder{state: ReminderIdle}
		scheduler.reminders[reminder.ID] = entry
	}
	entry.reminder = reminder
	if reminder.LastFiredAt != nil {
		lastFired := *reminder.LastFiredAt
		entry.lastFired = &lastFired
	}

	scheduler.cancelLocked(entry)
	wait := entry.inflight
	if reminder.Enabled && scheduler.permission == PermissionGranted && !scheduler.stopped {
		scheduler.armLocked(entry)
	}
	return entry, wait
}

func (scheduler *ReminderScheduler) armLocked(entry *scheduledReminder) {
	next := NextFireTime(entry.reminder.Hour, entry.reminder.Minute, scheduler.clock.Now())
	scheduler.scheduleLocked(entry, next)
}

func (scheduler *ReminderScheduler) scheduleLocked(entry *scheduledReminder, fireAt time.Time) {
	if entry.timer != nil {
		entry.timer.Stop()
	}
	entry.generation++
	generation := entry.generation
	reminderID := entry.reminder.ID

	delay := fireAt.Sub(scheduler.clock.Now())
	if delay < 0 {
		delay = 0
	}

	entry.state = ReminderArmed
	entry.next = fireAt
	entry.timer = scheduler.clock.AfterFunc(delay, func() {
		scheduler.fire(reminderID, generation)
	})
}

func (scheduler *ReminderScheduler) cancelLocked(entry *scheduledReminder) {
	entry.generation++
	if entry.timer != nil {
		entry.timer.Stop()
		entry.timer = nil
	}
	entry.state = ReminderIdle
	entry.next = time.Time{}
}

func (scheduler *ReminderScheduler) fire(reminderID uint, generation uint64) {
	scheduler.mu.Lock()
	entry, ok := scheduler.reminders[reminderID]
	if !ok || scheduler.stopped || entry.generation != generation || entry.state != ReminderArmed {
		scheduler.mu.Unlock()
		return
	}

	firedAt := scheduler.clock.Now()
	scheduledAt := entry.next
	entry.state = ReminderFired
	entry.timer = nil
	entry.next = time.Time{}
	entry.lastFired = &firedAt

	if entry.reminder.Recurrence == models.RecurrenceDaily {
		next := scheduledAt.AddDate(0, 0, 1)
		for !next.After(firedAt) {
			next = next.AddDate(0, 0, 1)
		}
		scheduler.scheduleLocked(entry, next)
	}

	done := make(chan struct{})
	entry.inflight = done
	name := entry.reminder.Name
	messages := scheduler.messages
	hook := scheduler.onFired
	ctx := scheduler.ctx
	scheduler.mu.Unlock()

	err := scheduler.notifier.Notify(ctx, messages.Title, fmt.Sprintf(messages.BodyFormat, name))

	scheduler.mu.Lock()
	if entry.inflight == done {
		entry.inflight = nil
	}
	scheduler.mu.Unlock()
	close(done)

	if err != nil {
		scheduler.logger.Warn().Err(err).Uint("reminder_id", reminderID).Msg("deliver reminder failed")
		return
	}
	scheduler.logger.Info().Uint("reminder_id", reminderID).Time("fired_at", firedAt).Msg("reminder delivered")

	if hook != nil {
		hook(reminderID, firedAt)
	}
}

func (entry *scheduledReminder) status() ReminderStatus {
	status := ReminderStatus{State: entry.state}
	if entry.state == ReminderArmed {
		next := entry.next
		status.NextFireTime = &next
	}
	if entry.lastFired != nil {
		lastFired := *entry.lastFired
		status.LastFiredAt = &lastFired
	}
	return status
}
