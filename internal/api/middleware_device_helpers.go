package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DeviceMiddleware attaches the anonymous device id carried by the signed
// device cookie, issuing a fresh one when the cookie is missing or invalid.
func (handler *Handler) DeviceMiddleware(c *fiber.Ctx) error {
	deviceID, err := handler.parseDeviceToken(strings.TrimSpace(c.Cookies(deviceCookieName)))
	if err != nil {
		deviceID = uuid.NewString()
		if err := handler.setDeviceCookie(c, deviceID); err != nil {
			handler.logger.Error().Err(err).Msg("issue device cookie failed")
			return apiError(c, fiber.StatusInternalServerError, "failed to issue device id")
		}
		c.Locals(contextDeviceIssuedKey, true)
	}

	c.Locals(contextDeviceKey, deviceID)
	return c.Next()
}

func (handler *Handler) parseDeviceToken(tokenValue string) (string, error) {
	if tokenValue == "" {
		return "", errors.New("missing device cookie")
	}

	claims := &deviceClaims{}
	token, err := jwt.ParseWithClaims(tokenValue, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return handler.secretKey, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(time.Now()) {
		return "", errors.New("token expired")
	}
	if _, err := uuid.Parse(claims.DeviceID); err != nil {
		return "", errors.New("invalid device id")
	}
	return claims.DeviceID, nil
}

func (handler *Handler) buildDeviceToken(deviceID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := deviceClaims{
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   deviceID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(handler.secretKey)
}

func (handler *Handler) setDeviceCookie(c *fiber.Ctx, deviceID string) error {
	token, err := handler.buildDeviceToken(deviceID, deviceTokenTTL)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     deviceCookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  time.Now().Add(deviceTokenTTL),
	})
	return nil
}
