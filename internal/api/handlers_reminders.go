package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/healthpulse/internal/services"
)

func (handler *Handler) GetReminders(c *fiber.Ctx) error {
	reminders, err := handler.reminders.List(currentDeviceID(c))
	if err != nil {
		handler.logger.Error().Err(err).Msg("load reminders failed")
		return apiError(c, fiber.StatusInternalServerError, "failed to load reminders")
	}
	return c.JSON(fiber.Map{
		"reminders":  reminders,
		"permission": handler.scheduler.Permission(),
	})
}

func (handler *Handler) CreateReminder(c *fiber.Ctx) error {
	payload := reminderPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	recurrence := strings.TrimSpace(payload.Frequency)
	if recurrence == "" {
		recurrence = strings.TrimSpace(payload.Recurrence)
	}

	reminder, err := handler.reminders.Create(currentDeviceID(c), payload.Name, payload.Time, recurrence)
	if err != nil {
		return handler.reminderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reminder)
}

func (handler *Handler) ToggleReminder(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid reminder id")
	}

	reminder, err := handler.reminders.Toggle(currentDeviceID(c), id)
	if err != nil {
		return handler.reminderError(c, err)
	}
	return c.JSON(reminder)
}

func (handler *Handler) DeleteReminder(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid reminder id")
	}

	if err := handler.reminders.Delete(currentDeviceID(c), id); err != nil {
		return handler.reminderError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) reminderError(c *fiber.Ctx, err error) error {
	switch {
	case services.IsReminderValidationError(err):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrReminderNotFound):
		return apiError(c, fiber.StatusNotFound, "reminder not found")
	default:
		handler.logger.Error().Err(err).Msg("reminder operation failed")
		return apiError(c, fiber.StatusInternalServerError, "failed to update reminders")
	}
}
