package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/healthpulse/internal/services"
)

func (handler *Handler) GetDashboard(c *fiber.Ctx) error {
	trend, sample, err := handler.trends.WeeklyTrend(c.UserContext(), handler.currentTime())
	if err != nil {
		handler.logger.Error().Err(err).Msg("load weekly trend failed")
		return apiError(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}

	return c.JSON(dashboardResponse{
		DashboardMetrics: handler.dashboard.Snapshot(),
		WeeklyTrend:      trend,
		TrendIsSample:    sample,
	})
}

func (handler *Handler) GetTrend(c *fiber.Ctx) error {
	trend, sample, err := handler.trends.WeeklyTrend(c.UserContext(), handler.currentTime())
	if err != nil {
		handler.logger.Error().Err(err).Msg("load weekly trend failed")
		return apiError(c, fiber.StatusInternalServerError, "failed to load trend")
	}
	return c.JSON(fiber.Map{"points": trend, "sample": sample})
}

func (handler *Handler) GetMap(c *fiber.Ctx) error {
	return c.JSON(handler.wardMap.Snapshot())
}

func (handler *Handler) GetMapWard(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid ward id")
	}

	ward, err := handler.wardMap.Ward(id)
	if errors.Is(err, services.ErrWardNotFound) {
		return apiError(c, fiber.StatusNotFound, "ward not found")
	}
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load ward")
	}
	return c.JSON(ward)
}
