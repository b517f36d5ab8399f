package visits

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Skufu/visitcast/internal/features"
	"github.com/Skufu/visitcast/internal/roster"
	"github.com/Skufu/visitcast/internal/scoring"
)

type fakeRecorder struct {
	mu    sync.Mutex
	saved []Prediction
	err   error
}

func (f *fakeRecorder) Record(ctx context.Context, p Prediction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, p)
	return f.err
}

// weekScorer returns week_of_year / 2 so outputs differ per date.
var weekScorer = scoring.ScorerFunc(func(ctx context.Context, rec features.Record) (float64, error) {
	return float64(rec.WeekOfYear) / 2, nil
})

func newTestService(rec Recorder) *Service {
	svc := NewService(roster.New("patient_a", "patient_b"), weekScorer, "test-model", rec)
	svc.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc
}

func TestPredict(t *testing.T) {
	rec := &fakeRecorder{}
	p, err := newTestService(rec).Predict(context.Background(), "patient_a", "2024-12-30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Features.WeekOfYear != 1 || p.RawScore != 0.5 || p.Visits != 0 {
		t.Fatalf("unexpected prediction %+v", p)
	}
	if p.Date != "2024-12-30" || p.Model != "test-model" || !p.InTrainingWindow || p.ID == "" {
		t.Fatalf("unexpected metadata %+v", p)
	}
	if len(rec.saved) != 1 || rec.saved[0].ID != p.ID {
		t.Fatalf("expected prediction to be recorded, got %+v", rec.saved)
	}
}

func TestPredictOutsideTrainingWindow(t *testing.T) {
	p, err := newTestService(nil).Predict(context.Background(), "patient_b", "2030-06-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.InTrainingWindow {
		t.Fatalf("expected out-of-window flag, got %+v", p)
	}
	// ISO week 24 -> 12 visits
	if p.Visits != 12 {
		t.Fatalf("expected 12 visits, got %d", p.Visits)
	}
}

func TestPredictErrors(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.Predict(context.Background(), "unknown_patient", "2024-05-01")
	var badPatient *features.InvalidPatientError
	if !errors.As(err, &badPatient) {
		t.Fatalf("expected InvalidPatientError, got %v", err)
	}

	_, err = svc.Predict(context.Background(), "patient_a", "2024-02-30")
	var badDate *features.InvalidDateError
	if !errors.As(err, &badDate) {
		t.Fatalf("expected InvalidDateError, got %v", err)
	}

	failing := NewService(roster.New("patient_a"), scoring.ScorerFunc(func(ctx context.Context, rec features.Record) (float64, error) {
		return 0, errors.New("model unavailable")
	}), "broken", nil)
	_, err = failing.Predict(context.Background(), "patient_a", "2024-05-01")
	var scoringErr *scoring.ScoringError
	if !errors.As(err, &scoringErr) {
		t.Fatalf("expected ScoringError, got %v", err)
	}
}

func TestPredictRecorderFailureDoesNotFail(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	p, err := newTestService(rec).Predict(context.Background(), "patient_a", "2024-03-15")
	if err != nil {
		t.Fatalf("recorder errors must not fail predictions: %v", err)
	}
	if p.Visits != 6 {
		t.Fatalf("expected 6 visits for ISO week 11, got %d", p.Visits)
	}
}

func TestPredictConcurrent(t *testing.T) {
	svc := newTestService(&fakeRecorder{})
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	const n = 100

	want := make([]int, n)
	for i := range want {
		p, err := svc.Predict(context.Background(), "patient_a", start.AddDate(0, 0, i*5).Format("2006-01-02"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want[i] = p.Visits
	}

	got := make([]int, n)
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := svc.Predict(context.Background(), "patient_a", start.AddDate(0, 0, i*5).Format("2006-01-02"))
			if err != nil {
				errs <- fmt.Errorf("call %d: %w", i, err)
				return
			}
			got[i] = p.Visits
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d: concurrent %d != sequential %d", i, got[i], want[i])
		}
	}
}
