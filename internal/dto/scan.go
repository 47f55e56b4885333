package dto

import (
	"time"

	"github.com/noah-isme/absensi-rfid-api/internal/models"
)

// ScanRequest is the scan intake payload. The device only identifies the
// tag; the server clock decides the timestamp.
type ScanRequest struct {
	TagID string `json:"tag_id" validate:"required"`

	// DeviceID is filled from the authenticated device token, never from
	// the request body.
	DeviceID string `json:"-"`
}

// ScanResult confirms an accepted scan for the reader display.
type ScanResult struct {
	Status      models.Status `json:"status"`
	StudentID   string        `json:"student_id"`
	StudentName string        `json:"student_name"`
	ClassName   string        `json:"class_name"`
	Day         string        `json:"day"`
	CheckedInAt string        `json:"checked_in_at"`
}

// ScanEvent is the fan-out payload published for every accepted scan.
type ScanEvent struct {
	RecordID    string        `json:"record_id"`
	StudentID   string        `json:"student_id"`
	StudentName string        `json:"student_name"`
	ClassName   string        `json:"class_name"`
	Status      models.Status `json:"status"`
	Day         string        `json:"day"`
	CheckedInAt string        `json:"checked_in_at"`
	DeviceID    string        `json:"device_id,omitempty"`
	EmittedAt   time.Time     `json:"emitted_at"`
}
