package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/Skufu/visitcast/internal/features"
)

// LinearModel is a regression exported as JSON: numeric weights per feature
// plus one-hot offsets for patient, month and weekday. Unknown categories add nothing.
type LinearModel struct {
	Name         string             `json:"name"`
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
	Patients     map[string]float64 `json:"patients"`
	Months       map[string]float64 `json:"months"`
	DaysOfWeek   map[string]float64 `json:"days_of_week"`
}

// LoadLinearModel reads a model artifact from path.
func LoadLinearModel(path string) (*LinearModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer f.Close()

	var m LinearModel
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = "linear"
	}
	for name := range m.Coefficients {
		if _, ok := numericFeature(features.Record{}, name); !ok {
			return nil, fmt.Errorf("model %s: unknown feature %q", path, name)
		}
	}
	return &m, nil
}

// Score never fails; the context is unused.
func (m *LinearModel) Score(_ context.Context, rec features.Record) (float64, error) {
	score := m.Intercept
	for name, w := range m.Coefficients {
		v, _ := numericFeature(rec, name)
		score += w * v
	}
	score += m.Patients[rec.Patient]
	score += m.Months[strconv.Itoa(rec.Month)]
	score += m.DaysOfWeek[strconv.Itoa(rec.DayOfWeek)]
	return score, nil
}

func numericFeature(rec features.Record, name string) (float64, bool) {
	switch name {
	case "year":
		return float64(rec.Year), true
	case "month":
		return float64(rec.Month), true
	case "day_of_week":
		return float64(rec.DayOfWeek), true
	case "week_of_year":
		return float64(rec.WeekOfYear), true
	case "quarter":
		return float64(rec.Quarter), true
	default:
		return 0, false
	}
}
