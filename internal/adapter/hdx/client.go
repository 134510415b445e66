// Package hdx publishes datasets and showcases to the Humanitarian Data
// Exchange through its CKAN action API.
package hdx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/unosat-hdx-etl/internal/config"
)

// sites maps HDX environment names to their base URLs.
var sites = map[string]string{
	"prod":    "https://data.humdata.org",
	"feature": "https://feature.data-humdata-org.ahconu.org",
	"stage":   "https://stage.data-humdata-org.ahconu.org",
	"demo":    "https://demo.data-humdata-org.ahconu.org",
	"test":    "https://test.data-humdata-org.ahconu.org",
}

// SiteURL returns the base URL of a named HDX environment.
func SiteURL(site string) (string, error) {
	u, ok := sites[site]
	if !ok {
		return "", fmt.Errorf("unknown HDX site %q", site)
	}
	return u, nil
}

// Client talks to one HDX site. It implements pipeline.Catalog.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	defaults   config.DatasetDefaults
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an HDX client. defaults are merged into every dataset.
func NewClient(baseURL, apiKey, userAgent string, defaults config.DatasetDefaults, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		userAgent: userAgent,
		defaults:  defaults,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// DatasetURL is the public page of a dataset.
func (c *Client) DatasetURL(name string) string {
	return fmt.Sprintf("%s/dataset/%s", c.baseURL, name)
}

// action calls a CKAN action and decodes its result into out (if non-nil).
func (c *Client) action(ctx context.Context, name string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", name, err)
	}

	u := fmt.Sprintf("%s/api/3/action/%s", c.baseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("hdx %s request: %w", name, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("hdx action", "action", name, "status", resp.StatusCode, "duration", time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", name, err)
	}

	var envelope actionResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return &APIError{Action: name, Status: resp.StatusCode, Message: truncate(string(raw), 512)}
	}
	if resp.StatusCode != http.StatusOK || !envelope.Success {
		apiErr := &APIError{Action: name, Status: resp.StatusCode}
		apiErr.Type, apiErr.Message = envelope.errorDetail()
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("decode %s result: %w", name, err)
	}
	return nil
}

// CKAN action API envelope.

type actionResponse struct {
	Success bool                       `json:"success"`
	Result  json.RawMessage            `json:"result"`
	Error   map[string]json.RawMessage `json:"error"`
}

// errorDetail splits a CKAN error object into its type and a readable
// message. Validation errors carry per-field messages instead of "message".
func (r actionResponse) errorDetail() (string, string) {
	var errType, message string
	if v, ok := r.Error["__type"]; ok {
		_ = json.Unmarshal(v, &errType)
	}
	if v, ok := r.Error["message"]; ok {
		if json.Unmarshal(v, &message) == nil {
			return errType, message
		}
	}

	fields := make(map[string]json.RawMessage, len(r.Error))
	for k, v := range r.Error {
		if k != "__type" {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		return errType, ""
	}
	b, _ := json.Marshal(fields)
	return errType, string(b)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
