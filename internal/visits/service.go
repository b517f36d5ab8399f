// Package visits serves visit-count predictions for a patient on a date.
package visits

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Skufu/visitcast/internal/features"
	"github.com/Skufu/visitcast/internal/scoring"
)

// Prediction is one served answer.
type Prediction struct {
	ID               string          `json:"id"`
	Patient          string          `json:"patient"`
	Date             string          `json:"date"`
	Features         features.Record `json:"features"`
	RawScore         float64         `json:"rawScore"`
	Visits           int             `json:"visits"`
	Model            string          `json:"model"`
	InTrainingWindow bool            `json:"inTrainingWindow"`
	GeneratedAt      time.Time       `json:"generatedAt"`
}

// Recorder persists served predictions.
type Recorder interface {
	Record(ctx context.Context, p Prediction) error
}

type Service struct {
	builder  *features.Builder
	adapter  *scoring.Adapter
	model    string
	recorder Recorder
	now      func() time.Time
}

// NewService wires the builder and scorer; recorder may be nil.
func NewService(roster features.Roster, scorer scoring.Scorer, model string, recorder Recorder) *Service {
	return &Service{
		builder:  features.NewBuilder(roster),
		adapter:  scoring.NewAdapter(scorer),
		model:    model,
		recorder: recorder,
		now:      time.Now,
	}
}

// Predict parses date, builds the feature record and scores it.
// Errors are *features.InvalidDateError, *features.InvalidPatientError or *scoring.ScoringError.
func (s *Service) Predict(ctx context.Context, patient, date string) (Prediction, error) {
	d, err := features.ParseDate(date)
	if err != nil {
		return Prediction{}, err
	}
	rec, err := s.builder.Build(patient, d)
	if err != nil {
		return Prediction{}, err
	}
	n, raw, err := s.adapter.Predict(ctx, rec)
	if err != nil {
		return Prediction{}, err
	}

	p := Prediction{
		ID:               uuid.NewString(),
		Patient:          patient,
		Date:             d.String(),
		Features:         rec,
		RawScore:         raw,
		Visits:           n,
		Model:            s.model,
		InTrainingWindow: features.InTrainingWindow(d),
		GeneratedAt:      s.now().UTC(),
	}

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, p); err != nil {
			log.Printf("record prediction %s: %v", p.ID, err)
		}
	}
	return p, nil
}
