package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/healthpulse/internal/services"
)

func (handler *Handler) SubmitReport(c *fiber.Ctx) error {
	payload := reportPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	limiterKey := reportLimiterKey(c)
	now := handler.now()
	if !handler.reportLimiter.tryReserve(limiterKey, now, reportLimit, reportLimitWindow) {
		return apiError(c, fiber.StatusTooManyRequests, "too many reports, try again later")
	}

	input := services.ReportInput{
		Symptoms:  payload.Symptoms,
		Ward:      payload.Ward,
		Latitude:  payload.Lat,
		Longitude: payload.Lng,
	}
	outcome := <-handler.reports.SubmitAsync(c.UserContext(), input)
	if outcome.Err != nil {
		handler.reportLimiter.release(limiterKey, now)
		status, message := mapReportError(outcome.Err)
		return apiError(c, status, message)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ok":     true,
		"report": outcome.Report,
	})
}

func (handler *Handler) GetReportSummary(c *fiber.Ctx) error {
	summary, err := handler.trends.Summary(c.UserContext())
	if err != nil {
		handler.logger.Error().Err(err).Msg("load report summary failed")
		return apiError(c, fiber.StatusInternalServerError, "failed to load reports")
	}
	return c.JSON(summary)
}

func mapReportError(err error) (int, string) {
	switch {
	case services.IsReportValidationError(err):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusServiceUnavailable, "report submission cancelled"
	default:
		return fiber.StatusInternalServerError, "failed to submit report"
	}
}
