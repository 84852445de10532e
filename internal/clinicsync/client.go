// Package clinicsync reconciles the local clinic registry against an external
// clinic feed on a fixed interval.
package clinicsync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultFeedTimeout = 10 * time.Second

// FeedClinic is one row of the external clinic feed.
type FeedClinic struct {
	RowNumber int    `json:"row_number,omitempty"`
	ClinicID  string `json:"clinic_id"`
	Name      string `json:"name"`
	City      string `json:"city"`
	WhatsApp  string `json:"whatsapp"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Website   string `json:"website"`
	Address   string `json:"address"`
	Hours     string `json:"hours"`
	Notes     string `json:"notes"`
}

// Client fetches the clinic feed over HTTP.
type Client struct {
	feedURL    string
	httpClient *http.Client
}

// NewClient creates a feed client. timeout <= 0 falls back to 10 seconds.
func NewClient(feedURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultFeedTimeout
	}
	return &Client{
		feedURL:    feedURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FeedURL returns the configured feed endpoint.
func (c *Client) FeedURL() string { return c.feedURL }

// FetchClinics retrieves the full clinic list from the feed.
func (c *Client) FetchClinics(ctx context.Context) ([]FeedClinic, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("clinicsync: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clinicsync: fetch feed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("clinicsync: read feed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("clinicsync: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var feed []FeedClinic
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("clinicsync: unmarshal feed: %w", err)
	}
	return feed, nil
}
