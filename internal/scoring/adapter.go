// Package scoring turns a model's raw output into a visit-count prediction.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Skufu/visitcast/internal/features"
)

// maxVisits bounds what a single prediction may report.
const maxVisits = math.MaxInt32

// Scorer is a trained model: one record in, one real-valued estimate out.
type Scorer interface {
	Score(ctx context.Context, rec features.Record) (float64, error)
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(ctx context.Context, rec features.Record) (float64, error)

func (f ScorerFunc) Score(ctx context.Context, rec features.Record) (float64, error) {
	return f(ctx, rec)
}

// ScoringError wraps any failure of the scorer or an unusable score.
type ScoringError struct {
	Patient string
	Raw     float64
	Err     error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring %q: %v", e.Patient, e.Err)
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}

var errNotFinite = errors.New("score is not a finite number")

// Adapter calls a Scorer once per request and post-processes the result.
type Adapter struct {
	scorer Scorer
}

func NewAdapter(scorer Scorer) *Adapter {
	return &Adapter{scorer: scorer}
}

// Predict scores rec and returns max(0, round(raw)) along with the raw score.
func (a *Adapter) Predict(ctx context.Context, rec features.Record) (int, float64, error) {
	if a.scorer == nil {
		return 0, 0, &ScoringError{Patient: rec.Patient, Err: errors.New("no scorer configured")}
	}
	raw, err := a.scorer.Score(ctx, rec)
	if err != nil {
		return 0, raw, &ScoringError{Patient: rec.Patient, Raw: raw, Err: err}
	}
	visits, err := Visits(raw)
	if err != nil {
		return 0, raw, &ScoringError{Patient: rec.Patient, Raw: raw, Err: err}
	}
	return visits, raw, nil
}

// Visits clamps raw at zero and rounds half to even.
func Visits(raw float64) (int, error) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, errNotFinite
	}
	v := math.Max(0, math.RoundToEven(raw))
	if v > maxVisits {
		return 0, fmt.Errorf("score %g exceeds %d visits", raw, maxVisits)
	}
	return int(v), nil
}
