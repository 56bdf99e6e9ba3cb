// Package imagehost uploads member photos to an external imgbb-style image
// host and hands back durable URLs.
//
// Upload never returns an error: any failure degrades to "no URL", which the
// editor treats as "keep the existing photo". Losing a photo upload must not
// block saving a member.
package imagehost

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jspark-dev/rollbook/internal/config"
	"github.com/jspark-dev/rollbook/internal/logging"
)

// Client posts images to one fixed endpoint with one API key.
type Client struct {
	endpoint   string
	apiKey     string
	expiration int
	httpClient *http.Client
}

// New creates a Client from config.
func New(cfg config.ImageHostConfig) *Client {
	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		expiration: cfg.Expiration,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// uploadResponse is the subset of the imgbb response we care about.
type uploadResponse struct {
	Data struct {
		URL string `json:"url"`
	} `json:"data"`
	Success bool `json:"success"`
}

// Upload sends the image to the host and returns the hosted URL, or "" on
// any failure: missing key, non-200 status, malformed body, network error.
func (c *Client) Upload(ctx context.Context, image []byte) string {
	logger := logging.FromContext(ctx)

	if len(image) == 0 {
		return ""
	}
	if c.apiKey == "" {
		logger.Warn("image host API key not configured, skipping photo upload")
		return ""
	}

	form := url.Values{}
	form.Set("key", c.apiKey)
	form.Set("expiration", strconv.Itoa(c.expiration))
	form.Set("image", base64.StdEncoding.EncodeToString(image))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		logger.Warn("image host request build failed", "error", err)
		return ""
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("image host unreachable", "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("image host rejected upload", "status", resp.StatusCode)
		return ""
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		logger.Warn("image host returned malformed body", "error", err)
		return ""
	}
	if parsed.Data.URL == "" {
		logger.Warn("image host response missing URL")
		return ""
	}

	logger.Debug("photo uploaded",
		"bytes", len(image),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return parsed.Data.URL
}
