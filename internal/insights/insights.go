// Package insights provides the descriptive figures shown on the dashboard's insights page.
// The numbers are fixed summaries of the training data set or simulated series; nothing here
// reads patient data.
package insights

import (
	"sort"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const dateLayout = "2006-01-02"

// Overview summarises the data set the model was fitted on.
type Overview struct {
	TotalRecords   int     `json:"totalRecords"`
	TotalColumns   int     `json:"totalColumns"`
	UniquePatients int     `json:"uniquePatients"`
	DateFrom       string  `json:"dateFrom"`
	DateTo         string  `json:"dateTo"`
	RSquared       float64 `json:"rSquared"`
	MSE            float64 `json:"mse"`
}

type Point struct {
	Date   string `json:"date"`
	Visits int    `json:"visits"`
}

type WeekdayCount struct {
	DayOfWeek int    `json:"dayOfWeek"`
	Day       string `json:"day"`
	Visits    int    `json:"visits"`
}

// Bucket counts patients having a given number of visits.
type Bucket struct {
	Visits   int `json:"visits"`
	Patients int `json:"patients"`
}

type PatientCount struct {
	Patient string `json:"patient"`
	Visits  int    `json:"visits"`
}

var overview = Overview{
	TotalRecords:   97509,
	TotalColumns:   78,
	UniquePatients: 3889,
	DateFrom:       "2024-01-11",
	DateTo:         "2025-12-03",
	RSquared:       0.996,
	MSE:            0.307,
}

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var weekdayVisits = []int{1200, 1300, 1400, 1350, 1250, 1100, 1000}

var distribution = []Bucket{
	{Visits: 1, Patients: 3000},
	{Visits: 2, Patients: 500},
	{Visits: 3, Patients: 200},
	{Visits: 4, Patients: 100},
	{Visits: 5, Patients: 50},
	{Visits: 10, Patients: 20},
	{Visits: 20, Patients: 10},
	{Visits: 50, Patients: 7},
}

var topPatients = map[string]int{
	"patient_a": 50, "patient_b": 45, "patient_c": 40, "patient_d": 35, "patient_e": 30,
	"patient_f": 28, "patient_g": 25, "patient_h": 22, "patient_i": 20, "patient_j": 18,
}

func DatasetOverview() Overview {
	return overview
}

// Summary renders the overview as display lines with digit grouping for tag.
func Summary(tag language.Tag) []string {
	p := message.NewPrinter(tag)
	o := overview
	from, _ := time.Parse(dateLayout, o.DateFrom)
	to, _ := time.Parse(dateLayout, o.DateTo)
	return []string{
		p.Sprintf("Total Records: %d rows", o.TotalRecords),
		p.Sprintf("Total Columns: %d columns (many dropped due to >50%% missing values)", o.TotalColumns),
		p.Sprintf("Unique Patients: %d", o.UniquePatients),
		p.Sprintf("Date Range: %s to %s", from.Format("January 2, 2006"), to.Format("January 2, 2006")),
		p.Sprintf("Model Performance: R-squared ≈ %.3f, MSE ≈ %.3f", o.RSquared, o.MSE),
	}
}

// VisitsOverTime is a simulated daily series across the overview's date range.
func VisitsOverTime() []Point {
	from, _ := time.Parse(dateLayout, overview.DateFrom)
	to, _ := time.Parse(dateLayout, overview.DateTo)

	var out []Point
	for i, d := 0, from; !d.After(to); i, d = i+1, d.AddDate(0, 0, 1) {
		out = append(out, Point{Date: d.Format(dateLayout), Visits: 100 + i%30*10})
	}
	return out
}

// VisitsByWeekday is ordered Monday (0) to Sunday (6).
func VisitsByWeekday() []WeekdayCount {
	out := make([]WeekdayCount, len(weekdays))
	for i, day := range weekdays {
		out[i] = WeekdayCount{DayOfWeek: i, Day: day, Visits: weekdayVisits[i]}
	}
	return out
}

func VisitDistribution() []Bucket {
	out := make([]Bucket, len(distribution))
	copy(out, distribution)
	return out
}

// TopPatients returns the n most frequent patients, most visits first.
func TopPatients(n int) []PatientCount {
	out := make([]PatientCount, 0, len(topPatients))
	for p, v := range topPatients {
		out = append(out, PatientCount{Patient: p, Visits: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Visits != out[j].Visits {
			return out[i].Visits > out[j].Visits
		}
		return out[i].Patient < out[j].Patient
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
