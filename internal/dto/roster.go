package dto

import (
	"time"

	"github.com/noah-isme/absensi-rfid-api/internal/models"
)

// RosterResponse is the full daily projection rendered by the board.
type RosterResponse struct {
	Day              string               `json:"day"`
	GeneratedAt      time.Time            `json:"generated_at"`
	WindowStart      string               `json:"window_start"`
	OnTimeDeadline   string               `json:"ontime_deadline"`
	WindowEnd        string               `json:"window_end"`
	WindowClosed     bool                 `json:"window_closed"`
	SecondsRemaining int64                `json:"seconds_remaining"`
	Summary          models.RosterSummary `json:"summary"`
	Rows             []models.RosterRow   `json:"rows"`
}
