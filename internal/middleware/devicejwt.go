package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/absensi-rfid-api/internal/models"
	appErrors "github.com/noah-isme/absensi-rfid-api/pkg/errors"
	"github.com/noah-isme/absensi-rfid-api/pkg/response"
)

// ContextDeviceKey is the gin context key storing device claims.
const ContextDeviceKey = "currentDevice"

type deviceTokenValidator interface {
	ValidateToken(tokenString string) (*models.DeviceClaims, error)
}

// DeviceAuth protects scan intake routes by requiring a valid device token.
func DeviceAuth(auth deviceTokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextDeviceKey, claims)
		c.Next()
	}
}

// DeviceFromContext extracts validated device claims when present.
func DeviceFromContext(c *gin.Context) (*models.DeviceClaims, bool) {
	value, exists := c.Get(ContextDeviceKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.DeviceClaims)
	return claims, ok
}
