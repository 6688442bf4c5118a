package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/healthpulse/internal/models"
)

var (
	ErrInvalidReminderName  = errors.New("invalid reminder name")
	ErrInvalidRecurrence    = errors.New("invalid recurrence")
	ErrReminderNotFound     = errors.New("reminder not found")
	ErrCreateReminderFailed = errors.New("create reminder failed")
	ErrUpdateReminderFailed = errors.New("update reminder failed")
	ErrDeleteReminderFailed = errors.New("delete reminder failed")
	ErrLoadRemindersFailed  = errors.New("load reminders failed")
)

const maxReminderNameLength = 80

type ReminderRepository interface {
	ListByDevice(deviceID string) ([]models.Reminder, error)
	ListEnabled() ([]models.Reminder, error)
	FindByIDForDevice(reminderID uint, deviceID string) (models.Reminder, error)
	Create(reminder *models.Reminder) error
	UpdateEnabled(reminderID uint, enabled bool) error
	UpdateLastFiredAt(reminderID uint, firedAt time.Time) error
	Delete(reminder *models.Reminder) error
}

type ReminderScheduling interface {
	Arm(reminder models.Reminder) ReminderStatus
	Disarm(reminderID uint)
	Remove(reminderID uint)
	Status(reminderID uint) (ReminderStatus, bool)
}

type ReminderView struct {
	models.Reminder
	Time   string         `json:"time"`
	Status ReminderStatus `json:"status"`
}

type ReminderService struct {
	reminders ReminderRepository
	scheduler ReminderScheduling
	logger    zerolog.Logger
}

func NewReminderService(reminders ReminderRepository, scheduler ReminderScheduling, logger zerolog.Logger) *ReminderService {
	return &ReminderService{
		reminders: reminders,
		scheduler: scheduler,
		logger:    logger.With().Str("component", "reminders").Logger(),
	}
}

func (service *ReminderService) List(deviceID string) ([]ReminderView, error) {
	reminders, err := service.reminders.ListByDevice(deviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadRemindersFailed, err)
	}

	views := make([]ReminderView, 0, len(reminders))
	for _, reminder := range reminders {
		views = append(views, service.view(reminder))
	}
	return views, nil
}

func (service *ReminderService) Create(deviceID string, name string, timeOfDay string, recurrence string) (ReminderView, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > maxReminderNameLength {
		return ReminderView{}, ErrInvalidReminderName
	}
	hour, minute, err := ParseTimeOfDay(strings.TrimSpace(timeOfDay))
	if err != nil {
		return ReminderView{}, err
	}
	recurrence = strings.TrimSpace(recurrence)
	if recurrence == "" {
		recurrence = models.RecurrenceDaily
	}
	if !models.IsValidRecurrence(recurrence) {
		return ReminderView{}, ErrInvalidRecurrence
	}

	reminder := models.Reminder{
		DeviceID:   deviceID,
		Name:       name,
		Hour:       hour,
		Minute:     minute,
		Recurrence: recurrence,
		Enabled:    true,
	}
	if err := service.reminders.Create(&reminder); err != nil {
		return ReminderView{}, fmt.Errorf("%w: %v", ErrCreateReminderFailed, err)
	}

	status := service.scheduler.Arm(reminder)
	service.logger.Info().Uint("reminder_id", reminder.ID).Str("state", string(status.State)).Msg("reminder created")
	return ReminderView{Reminder: reminder, Time: reminder.TimeOfDay(), Status: status}, nil
}

func (service *ReminderService) Toggle(deviceID string, reminderID uint) (ReminderView, error) {
	reminder, err := service.reminders.FindByIDForDevice(reminderID, deviceID)
	if err != nil {
		return ReminderView{}, fmt.Errorf("%w: %v", ErrReminderNotFound, err)
	}

	reminder.Enabled = !reminder.Enabled
	if err := service.reminders.UpdateEnabled(reminder.ID, reminder.Enabled); err != nil {
		return ReminderView{}, fmt.Errorf("%w: %v", ErrUpdateReminderFailed, err)
	}

	var status ReminderStatus
	if reminder.Enabled {
		status = service.scheduler.Arm(reminder)
	} else {
		service.scheduler.Disarm(reminder.ID)
		status, _ = service.scheduler.Status(reminder.ID)
	}
	return ReminderView{Reminder: reminder, Time: reminder.TimeOfDay(), Status: status}, nil
}

func (service *ReminderService) Delete(deviceID string, reminderID uint) error {
	reminder, err := service.reminders.FindByIDForDevice(reminderID, deviceID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReminderNotFound, err)
	}

	if err := service.reminders.Delete(&reminder); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteReminderFailed, err)
	}
	service.scheduler.Remove(reminder.ID)
	return nil
}

// RecordFired persists the delivery time reported by the scheduler.
func (service *ReminderService) RecordFired(reminderID uint, firedAt time.Time) {
	if err := service.reminders.UpdateLastFiredAt(reminderID, firedAt); err != nil {
		service.logger.Warn().Err(err).Uint("reminder_id", reminderID).Msg("record reminder fire failed")
	}
}

func (service *ReminderService) LoadEnabled() ([]models.Reminder, error) {
	reminders, err := service.reminders.ListEnabled()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadRemindersFailed, err)
	}
	return reminders, nil
}

func IsReminderValidationError(err error) bool {
	return errors.Is(err, ErrInvalidReminderName) ||
		errors.Is(err, ErrInvalidTime) ||
		errors.Is(err, ErrInvalidRecurrence)
}

func (service *ReminderService) view(reminder models.Reminder) ReminderView {
	status, ok := service.scheduler.Status(reminder.ID)
	if !ok {
		status = ReminderStatus{State: ReminderIdle, LastFiredAt: reminder.LastFiredAt}
	}
	return ReminderView{Reminder: reminder, Time: reminder.TimeOfDay(), Status: status}
}
