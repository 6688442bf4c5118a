package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)

	registerAPIRoutes(app, handler)
	app.Use(handler.NotFound)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api", handler.LanguageMiddleware, handler.DeviceMiddleware)

	api.Get("/symptoms", handler.GetSymptoms)
	api.Get("/wards", handler.GetWards)

	reports := api.Group("/reports")
	reports.Post("", handler.SubmitReport)
	reports.Get("/summary", handler.GetReportSummary)

	dashboard := api.Group("/dashboard")
	dashboard.Get("", handler.GetDashboard)
	dashboard.Get("/trend", handler.GetTrend)

	wardMap := api.Group("/map")
	wardMap.Get("", handler.GetMap)
	wardMap.Get("/wards/:id", handler.GetMapWard)

	diary := api.Group("/diary")
	diary.Get("", handler.GetDiary)
	diary.Post("", handler.CreateDiaryEntry)
	diary.Get("/stats", handler.GetDiaryStats)

	reminders := api.Group("/reminders")
	reminders.Get("", handler.GetReminders)
	reminders.Post("", handler.CreateReminder)
	reminders.Post("/:id/toggle", handler.ToggleReminder)
	reminders.Delete("/:id", handler.DeleteReminder)

	notifications := api.Group("/notifications")
	notifications.Get("/permission", handler.GetNotificationPermission)
	notifications.Post("/permission", handler.RequestNotificationPermission)

	api.Get("/tools/find-doctor", handler.FindDoctor)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
