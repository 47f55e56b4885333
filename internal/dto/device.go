package dto

import "time"

// DeviceTokenRequest exchanges a device credential for a scan token.
type DeviceTokenRequest struct {
	DeviceID string `json:"device_id" validate:"required"`
	Secret   string `json:"secret" validate:"required"`
}

// DeviceTokenResponse carries the issued bearer token.
type DeviceTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
