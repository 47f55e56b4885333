package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ScanDevice is a registered RFID reader allowed to submit scans.
type ScanDevice struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	SecretHash string    `db:"secret_hash" json:"-"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// DeviceClaims are the JWT claims carried by a scanner device token.
type DeviceClaims struct {
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
	jwt.RegisteredClaims
}
