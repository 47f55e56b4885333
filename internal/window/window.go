package window

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Minute is a time of day expressed as minutes since midnight.
type Minute int

// ParseClock parses an HH:MM or HH:MM:SS clock value into a Minute.
func ParseClock(raw string) (Minute, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock value %q, expected HH:MM", raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid hour in clock value %q", raw)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid minute in clock value %q", raw)
	}
	return Minute(hours*60 + minutes), nil
}

// String renders the minute back as an HH:MM clock value.
func (m Minute) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// MinuteOf truncates a timestamp to its minute of day. The timestamp must
// already be in the deployment's civil time zone; no conversion happens here.
func MinuteOf(t time.Time) Minute {
	return Minute(t.Hour()*60 + t.Minute())
}

// Day renders the civil date used as the attendance dedup key.
func Day(t time.Time) string {
	return t.Format("2006-01-02")
}

// Phase is the classification of a moment relative to the window.
type Phase string

const (
	PhaseBeforeWindow Phase = "BEFORE_WINDOW"
	PhaseOnTime       Phase = "ON_TIME"
	PhaseLate         Phase = "LATE"
	PhaseAfterWindow  Phase = "AFTER_WINDOW"
)

// Window is the configured attendance window. Invariant:
// Start <= OnTimeDeadline <= End.
type Window struct {
	Start          Minute
	OnTimeDeadline Minute
	End            Minute
}

// New validates boundary ordering and returns the window.
func New(start, deadline, end Minute) (Window, error) {
	if start > deadline || deadline > end {
		return Window{}, fmt.Errorf("window boundaries out of order: %s / %s / %s", start, deadline, end)
	}
	return Window{Start: start, OnTimeDeadline: deadline, End: end}, nil
}

// Parse builds a window from three clock strings.
func Parse(start, deadline, end string) (Window, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}
	d, err := ParseClock(deadline)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}
	return New(s, d, e)
}

// Classify maps a timestamp to exactly one phase. Boundaries are closed:
// a scan exactly at the deadline is on time, exactly at the end is late.
func (w Window) Classify(t time.Time) Phase {
	return w.ClassifyMinute(MinuteOf(t))
}

// ClassifyMinute classifies a minute of day.
func (w Window) ClassifyMinute(m Minute) Phase {
	switch {
	case m < w.Start:
		return PhaseBeforeWindow
	case m <= w.OnTimeDeadline:
		return PhaseOnTime
	case m <= w.End:
		return PhaseLate
	default:
		return PhaseAfterWindow
	}
}

// Closed reports whether the window has ended for the given moment.
func (w Window) Closed(t time.Time) bool {
	return MinuteOf(t) > w.End
}

// Remaining returns the time left until the window closes, zero once past.
// The end boundary is inclusive, so the window stays open through the whole
// end minute and closes at the start of the minute after it.
func (w Window) Remaining(t time.Time) time.Duration {
	if w.Closed(t) {
		return 0
	}
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	closeAt := midnight.Add(time.Duration(w.End+1) * time.Minute)
	d := closeAt.Sub(t)
	if d < 0 {
		return 0
	}
	return d
}
