package api

import "github.com/gofiber/fiber/v2"

func (handler *Handler) GetNotificationPermission(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"permission": handler.scheduler.Permission()})
}

func (handler *Handler) RequestNotificationPermission(c *fiber.Ctx) error {
	permission, err := handler.scheduler.RequestPermission(c.UserContext())
	if err != nil {
		handler.logger.Warn().Err(err).Msg("notification permission request failed")
		return apiError(c, fiber.StatusBadGateway, "notification channel unavailable")
	}
	return c.JSON(fiber.Map{"permission": permission})
}
