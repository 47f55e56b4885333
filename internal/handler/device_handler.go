package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/absensi-rfid-api/internal/dto"
	appErrors "github.com/noah-isme/absensi-rfid-api/pkg/errors"
	"github.com/noah-isme/absensi-rfid-api/pkg/response"
)

type deviceTokenIssuer interface {
	IssueToken(ctx context.Context, req dto.DeviceTokenRequest) (*dto.DeviceTokenResponse, error)
}

// DeviceHandler exchanges scanner credentials for bearer tokens.
type DeviceHandler struct {
	auth deviceTokenIssuer
}

// NewDeviceHandler constructs the handler.
func NewDeviceHandler(auth deviceTokenIssuer) *DeviceHandler {
	return &DeviceHandler{auth: auth}
}

// Token godoc
// @Summary Issue a scanner device token
// @Tags Devices
// @Accept json
// @Produce json
// @Param request body dto.DeviceTokenRequest true "Device credentials"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /devices/token [post]
func (h *DeviceHandler) Token(c *gin.Context) {
	var req dto.DeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid token request"))
		return
	}

	token, err := h.auth.IssueToken(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, token)
}
