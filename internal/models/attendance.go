package models

import (
	"time"

	"github.com/noah-isme/absensi-rfid-api/internal/window"
)

// Status is the attendance state shown for a student.
//
// ON_TIME and LATE are persisted, immutable facts created by the recorder.
// NOT_YET and ABSENT are derived at query time from the absence of a record
// and are never written to the store.
type Status string

const (
	StatusOnTime Status = "ON_TIME"
	StatusLate   Status = "LATE"
	StatusNotYet Status = "NOT_YET"
	StatusAbsent Status = "ABSENT"
)

// Valid returns true when the status is a supported value.
func (s Status) Valid() bool {
	switch s {
	case StatusOnTime, StatusLate, StatusNotYet, StatusAbsent:
		return true
	default:
		return false
	}
}

// Persisted reports whether the status is a stored terminal fact.
func (s Status) Persisted() bool {
	return s == StatusOnTime || s == StatusLate
}

// Rank gives the display sort order: ON_TIME < LATE < ABSENT < NOT_YET.
func (s Status) Rank() int {
	switch s {
	case StatusOnTime:
		return 0
	case StatusLate:
		return 1
	case StatusAbsent:
		return 2
	case StatusNotYet:
		return 3
	default:
		return 4
	}
}

// StatusForPhase maps an accepted scan's window phase to its stored status.
// Only on-time and late phases produce a persistable status.
func StatusForPhase(p window.Phase) (Status, bool) {
	switch p {
	case window.PhaseOnTime:
		return StatusOnTime, true
	case window.PhaseLate:
		return StatusLate, true
	default:
		return "", false
	}
}

// DerivedStatus is the synthesized status for a student with no record:
// ABSENT once the window has passed, NOT_YET before that.
func DerivedStatus(p window.Phase) Status {
	if p == window.PhaseAfterWindow {
		return StatusAbsent
	}
	return StatusNotYet
}

// AttendanceRecord is one accepted scan. At most one exists per
// (student, day); the store enforces this with a unique constraint.
type AttendanceRecord struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	Day         string    `db:"day" json:"day"`
	CheckedInAt string    `db:"checked_in_at" json:"checked_in_at"`
	Status      Status    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// RosterRow is one student in the daily projection: roster data joined with
// today's record when one exists, a derived status when none does.
type RosterRow struct {
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name"`
	ClassID     string  `json:"class_id"`
	ClassName   string  `json:"class_name"`
	Status      Status  `json:"status"`
	ScanTime    *string `json:"scan_time,omitempty"`
}

// RosterSummary aggregates the projection for the board header.
type RosterSummary struct {
	Total  int `json:"total"`
	OnTime int `json:"on_time"`
	Late   int `json:"late"`
	NotYet int `json:"not_yet"`
	Absent int `json:"absent"`
}
