package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/Skufu/visitcast/internal/audit"
	"github.com/Skufu/visitcast/internal/features"
	"github.com/Skufu/visitcast/internal/insights"
	"github.com/Skufu/visitcast/internal/scoring"
	"github.com/Skufu/visitcast/internal/visits"
)

const maxRecent = 200

type Predictor interface {
	Predict(ctx context.Context, patient, date string) (visits.Prediction, error)
}

type PredictionLog interface {
	Recent(ctx context.Context, limit int) ([]audit.Entry, error)
}

type PatientLister interface {
	Names() []string
}

// App carries the dependencies shared by the HTTP handlers. Log and DB are nil
// when the prediction log is disabled.
type App struct {
	Predictor Predictor
	Roster    PatientLister
	Log       PredictionLog
	DB        HealthChecker
}

type PredictionRequest struct {
	Patient string `json:"patient" binding:"required"`
	Date    string `json:"date" binding:"required"`
}

var summaryLanguages = language.NewMatcher([]language.Tag{
	language.English,
	language.German,
	language.French,
})

func (a *App) listPatients(c *gin.Context) {
	names := []string{}
	if a.Roster != nil {
		names = a.Roster.Names()
	}
	c.JSON(http.StatusOK, gin.H{"patients": names, "count": len(names)})
}

func (a *App) predict(c *gin.Context) {
	var req PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload", "details": err.Error()})
		return
	}

	p, err := a.Predictor.Predict(c.Request.Context(), req.Patient, req.Date)
	if err != nil {
		status, code := classify(err)
		if status >= http.StatusInternalServerError {
			log.Printf("prediction for %q on %s failed: %v", req.Patient, req.Date, err)
		}
		c.JSON(status, gin.H{"error": code, "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, p)
}

func classify(err error) (int, string) {
	var (
		badPatient *features.InvalidPatientError
		badDate    *features.InvalidDateError
		scoringErr *scoring.ScoringError
	)
	switch {
	case errors.As(err, &badPatient):
		return http.StatusUnprocessableEntity, "invalid_patient"
	case errors.As(err, &badDate):
		return http.StatusUnprocessableEntity, "invalid_date"
	case errors.As(err, &scoringErr):
		return http.StatusBadGateway, "scoring_failed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (a *App) recentPredictions(c *gin.Context) {
	if a.Log == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "prediction_log_disabled"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_limit"})
			return
		}
		limit = min(n, maxRecent)
	}

	entries, err := a.Log.Recent(c.Request.Context(), limit)
	if err != nil {
		log.Printf("list predictions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"predictions": entries})
}

func overviewHandler(c *gin.Context) {
	tag, _ := language.MatchStrings(summaryLanguages, c.GetHeader("Accept-Language"))
	c.JSON(http.StatusOK, gin.H{
		"overview": insights.DatasetOverview(),
		"summary":  insights.Summary(tag),
	})
}

func visitsOverTimeHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"points": insights.VisitsOverTime()})
}

func visitsByWeekdayHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"days": insights.VisitsByWeekday()})
}

func visitDistributionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"buckets": insights.VisitDistribution()})
}

func topPatientsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"patients": insights.TopPatients(10)})
}
