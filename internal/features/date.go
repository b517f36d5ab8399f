package features

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Training window of the bundled model. Dates outside it are still accepted.
var (
	TrainingStart = Date{Year: 2024, Month: 1, Day: 1}
	TrainingEnd   = Date{Year: 2025, Month: 12, Day: 31}
)

// Date is a calendar date without a time of day or zone.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, &InvalidDateError{Input: s, Err: err}
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

// Validate reports an InvalidDateError when d does not name a real day.
func (d Date) Validate() error {
	if d.Month < 1 || d.Month > 12 {
		return &InvalidDateError{Input: d.String(), Err: fmt.Errorf("month %d out of range", d.Month)}
	}
	// time.Date normalises overflow (Feb 30 -> Mar 1), so a round trip catches bad days.
	if d.Day < 1 || DateOf(d.Time()) != d {
		return &InvalidDateError{Input: d.String(), Err: fmt.Errorf("day %d out of range", d.Day)}
	}
	return nil
}

// Time returns midnight UTC on d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// InTrainingWindow reports whether d falls inside the range the model was fitted on.
func InTrainingWindow(d Date) bool {
	return !d.Before(TrainingStart) && !TrainingEnd.Before(d)
}
