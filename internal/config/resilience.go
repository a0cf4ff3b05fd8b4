package config

import (
	"time"

	"petition_tally/internal/retry"
)

// ResilienceConfig holds per-stage retry budgets. Scrapes are deliberately
// absent: a failed render falls back to a plain HTTP fetch instead of being
// retried, and a failed row degrades to an empty count.
type ResilienceConfig struct {
	CSVFetch  retry.Config
	SheetRead retry.Config
}

var DefaultResilienceConfig = ResilienceConfig{
	CSVFetch: retry.Config{
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		MaxDelay:   30 * time.Second,
		Timeout:    30 * time.Second,
	},
	SheetRead: retry.Config{
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		MaxDelay:   30 * time.Second,
		Timeout:    15 * time.Second,
	},
}
