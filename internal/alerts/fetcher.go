package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dental-shop/internal/models"
)

// HTTPFetcher reads alerts from the admin API
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFetcher creates a fetcher for GET {baseURL}/api/alerts
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type alertsResponse struct {
	Alerts []models.Alert `json:"alerts"`
}

// FetchAlerts implements Fetcher
func (f *HTTPFetcher) FetchAlerts(ctx context.Context) ([]models.Alert, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/api/alerts", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from alerts endpoint", resp.StatusCode)
	}

	var body alertsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode alerts: %w", err)
	}
	if body.Alerts == nil {
		body.Alerts = []models.Alert{}
	}
	return body.Alerts, nil
}
