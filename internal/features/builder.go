// Package features turns a patient and a calendar date into the record the visit model scores.
package features

import "time"

// Roster answers whether a patient identifier is known.
type Roster interface {
	Contains(patient string) bool
}

// Record is the model input for one (patient, date) pair.
type Record struct {
	Patient    string `json:"PATIENT NAME"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	DayOfWeek  int    `json:"day_of_week"`
	WeekOfYear int    `json:"week_of_year"`
	Quarter    int    `json:"quarter"`
	// ISOYear is the year week_of_year belongs to; it differs from Year around New Year.
	ISOYear int `json:"-"`
}

// Builder validates inputs against a roster and derives records.
type Builder struct {
	roster Roster
}

func NewBuilder(roster Roster) *Builder {
	return &Builder{roster: roster}
}

// Build returns the record for patient on date. It has no side effects.
func (b *Builder) Build(patient string, date Date) (Record, error) {
	if b.roster == nil || !b.roster.Contains(patient) {
		return Record{}, &InvalidPatientError{Patient: patient}
	}
	if err := date.Validate(); err != nil {
		return Record{}, err
	}
	return derive(patient, date), nil
}

func derive(patient string, date Date) Record {
	t := date.Time()
	isoYear, week := t.ISOWeek()
	return Record{
		Patient:    patient,
		Year:       date.Year,
		Month:      date.Month,
		DayOfWeek:  mondayFirst(t.Weekday()),
		WeekOfYear: week,
		Quarter:    (date.Month-1)/3 + 1,
		ISOYear:    isoYear,
	}
}

// mondayFirst maps time.Weekday (Sunday=0) to Monday=0 ... Sunday=6.
func mondayFirst(d time.Weekday) int {
	return (int(d) + 6) % 7
}
