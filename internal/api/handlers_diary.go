package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/healthpulse/internal/services"
)

func (handler *Handler) GetDiary(c *fiber.Ctx) error {
	overview, err := handler.diary.Overview(currentDeviceID(c), handler.currentTime())
	if err != nil {
		handler.logger.Error().Err(err).Msg("load diary failed")
		return apiError(c, fiber.StatusInternalServerError, "failed to load diary")
	}
	return c.JSON(overview)
}

func (handler *Handler) GetDiaryStats(c *fiber.Ctx) error {
	stats, err := handler.diary.Stats(currentDeviceID(c), handler.currentTime())
	if err != nil {
		handler.logger.Error().Err(err).Msg("load diary stats failed")
		return apiError(c, fiber.StatusInternalServerError, "failed to load diary")
	}
	return c.JSON(stats)
}

func (handler *Handler) CreateDiaryEntry(c *fiber.Ctx) error {
	payload := diaryPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	input := services.DiaryEntryInput{
		Symptoms: payload.Symptoms,
		Severity: payload.Severity,
		Notes:    payload.Notes,
	}
	if raw := strings.TrimSpace(payload.Date); raw != "" {
		date, err := handler.parseDiaryDate(raw)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid date")
		}
		input.Date = &date
	}

	entry, err := handler.diary.Create(currentDeviceID(c), input, handler.currentTime())
	if err != nil {
		if services.IsDiaryValidationError(err) {
			return apiError(c, fiber.StatusBadRequest, err.Error())
		}
		handler.logger.Error().Err(err).Msg("create diary entry failed")
		return apiError(c, fiber.StatusInternalServerError, "failed to save diary entry")
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (handler *Handler) parseDiaryDate(raw string) (time.Time, error) {
	if date, err := time.ParseInLocation("2006-01-02", raw, handler.location); err == nil {
		return date, nil
	}
	return time.Parse(time.RFC3339, raw)
}
