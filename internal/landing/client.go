// Package landing serves the public marketing page: pricing, the
// testimonial carousel and the contact deep links.
package landing

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"visaserbia/internal/core"
)

// maxResponseSize caps how much of the backend response gets read.
// Testimonial payloads carry base64 images, so the cap is generous.
const maxResponseSize = 16 << 20

// TestimonialsClient reads the public testimonial listing from the API
// server. Every failure path degrades to an empty list: the landing
// page renders its empty state instead of an error.
type TestimonialsClient struct {
	baseURL string
	client  *http.Client
}

// NewTestimonialsClient creates a client for the given backend base
// URL. An empty baseURL disables fetching; the page always renders the
// empty state.
func NewTestimonialsClient(baseURL string, client *http.Client) *TestimonialsClient {
	return &TestimonialsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Fetch returns the active testimonials in response order. On any
// transport error, non-2xx status or unparseable body it logs and
// returns an empty slice, never an error.
func (c *TestimonialsClient) Fetch(ctx context.Context) []core.Testimonial {
	if c.baseURL == "" {
		slog.Debug("backend URL not configured, skipping testimonial fetch")
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/testimonials", nil)
	if err != nil {
		slog.Warn("failed to build testimonial request", "error", err)
		return nil
	}

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Warn("testimonial fetch failed", "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("testimonial fetch returned non-success status", "status", resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		slog.Warn("failed to read testimonial response", "error", err)
		return nil
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		slog.Warn("testimonial response is not a JSON array")
		return nil
	}

	// Field-by-field extraction keeps the page rendering even when the
	// backend payload grows or drops fields.
	var out []core.Testimonial
	parsed.ForEach(func(_, item gjson.Result) bool {
		t := core.Testimonial{
			ID:          item.Get("id").String(),
			ClientName:  item.Get("client_name").String(),
			VisaType:    item.Get("visa_type").String(),
			Description: item.Get("description").String(),
			ImageData:   item.Get("image_data").String(),
		}
		if created := item.Get("created_at").String(); created != "" {
			if ts, err := time.Parse(time.RFC3339, created); err == nil {
				t.CreatedAt = ts
			}
		}
		out = append(out, t)
		return true
	})
	return out
}
