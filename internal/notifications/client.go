package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Client posts run summaries to an ntfy topic. Disabled clients swallow
// every call so callers never have to check.
type Client struct {
	http    *resty.Client
	baseURL string
	topic   string
	enabled bool
}

func NewClient(baseURL, topic string, enabled bool) *Client {
	return &Client{
		http:    resty.New().SetTimeout(10 * time.Second),
		baseURL: baseURL,
		topic:   topic,
		enabled: enabled,
	}
}

// NotifyRunSummary sends a single message describing the finished run.
func (c *Client) NotifyRunSummary(ctx context.Context, rowsScraped, countsFound int, writeOK bool) {
	status := "write failed"
	if writeOK {
		status = "sheet updated"
	}
	message := fmt.Sprintf("Petition tally: %d/%d counts found, %s", countsFound, rowsScraped, status)

	if err := c.send(ctx, message); err != nil {
		log.Warn().Err(err).Msg("Failed to send run summary notification")
	}
}

func (c *Client) send(ctx context.Context, message string) error {
	if !c.enabled {
		log.Debug().Msg("Notifications disabled, skipping")
		return nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/plain").
		SetBody(message).
		Post(fmt.Sprintf("%s/%s", c.baseURL, c.topic))
	if err != nil {
		return fmt.Errorf("notification post failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("notification post returned status %d", resp.StatusCode())
	}

	log.Debug().Str("topic", c.topic).Msg("Notification sent")
	return nil
}
