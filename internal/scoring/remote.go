package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Skufu/visitcast/internal/features"
)

// RemoteScorer asks a model server for predictions over HTTP.
type RemoteScorer struct {
	endpoint string
	client   *http.Client
}

func NewRemoteScorer(endpoint string) *RemoteScorer {
	return &RemoteScorer{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type remoteRequest struct {
	Instances []features.Record `json:"instances"`
}

type remoteResponse struct {
	Predictions []float64 `json:"predictions"`
}

func (s *RemoteScorer) Score(ctx context.Context, rec features.Record) (float64, error) {
	body, err := json.Marshal(remoteRequest{Instances: []features.Record{rec}})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal model request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create model request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("model server request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("model server returned status: %d", resp.StatusCode)
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("failed to decode model response: %w", err)
	}
	if len(out.Predictions) == 0 {
		return 0, errors.New("model server returned no predictions")
	}
	return out.Predictions[0], nil
}
