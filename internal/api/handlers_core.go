package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/healthpulse/internal/models"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) GetSymptoms(c *fiber.Ctx) error {
	language := currentLanguage(c)
	catalog := models.DefaultBuiltinSymptoms()
	symptoms := make([]localizedSymptom, 0, len(catalog))
	for _, symptom := range catalog {
		symptoms = append(symptoms, localizedSymptom{
			ID:          symptom.ID,
			Label:       handler.translateOr(language, "symptom."+symptom.ID+".label", symptom.Label),
			Description: handler.translateOr(language, "symptom."+symptom.ID+".description", symptom.Description),
		})
	}
	return c.JSON(fiber.Map{"symptoms": symptoms, "lang": language})
}

func (handler *Handler) GetWards(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"wards": models.DefaultReportWards()})
}

func (handler *Handler) FindDoctor(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"url": findDoctorURL})
}

func (handler *Handler) translateOr(language string, key string, fallback string) string {
	translated := handler.i18n.Translate(language, key)
	if translated == "" || translated == key {
		return fallback
	}
	return translated
}
