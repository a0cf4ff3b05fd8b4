package petition

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Scraper extracts signature counts from petition pages. It renders pages
// with headless Chrome first and degrades to a plain HTTP fetch when the
// browser cannot be started or fails mid-render.
type Scraper struct {
	renderer *Renderer
	fallback *resty.Client
}

// NewScraper builds a scraper with the given render configuration. Pass a
// nil renderer (via NewScraperWithRenderer) to force the HTTP path.
func NewScraper(cfg RenderConfig) *Scraper {
	return NewScraperWithRenderer(NewRenderer(cfg))
}

// NewScraperWithRenderer builds a scraper around an existing renderer,
// which may be nil when browser automation is unavailable.
func NewScraperWithRenderer(renderer *Renderer) *Scraper {
	return &Scraper{
		renderer: renderer,
		fallback: newFallbackClient(),
	}
}

func newFallbackClient() *resty.Client {
	return resty.New().
		SetTimeout(30 * time.Second).
		SetHeaders(map[string]string{
			"User-Agent":                desktopUserAgent,
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Language":           "en-US,en;q=0.5",
			"Connection":                "keep-alive",
			"Upgrade-Insecure-Requests": "1",
		})
}

// Close releases the headless browser, if any.
func (s *Scraper) Close() {
	if s.renderer != nil {
		s.renderer.Close()
	}
}

// SignatureCount scrapes pageURL for its signature count. A render failure
// falls back to a raw HTTP fetch; a page where no pattern matches, or an
// unrecoverable fetch error, yields found=false. Errors are logged, never
// propagated, so one bad row cannot abort the batch.
func (s *Scraper) SignatureCount(ctx context.Context, pageURL string) (count int, found bool) {
	html, err := s.renderPage(ctx, pageURL)
	if err != nil {
		log.Warn().Err(err).Str("url", pageURL).Msg("Headless render failed, falling back to HTTP fetch")
		html, err = s.fetchRaw(ctx, pageURL)
		if err != nil {
			log.Error().Err(err).Str("url", pageURL).Msg("Fallback fetch failed")
			return 0, false
		}
	}

	count, found = ExtractSignatureCount(html)
	if !found {
		log.Warn().Str("url", pageURL).Msg("No signature count found on page")
		return 0, false
	}

	log.Debug().Int("count", count).Str("url", pageURL).Msg("Extracted signature count")
	return count, true
}

func (s *Scraper) renderPage(ctx context.Context, pageURL string) (string, error) {
	if s.renderer == nil {
		return "", fmt.Errorf("headless renderer unavailable")
	}
	return s.renderer.Render(ctx, pageURL)
}

func (s *Scraper) fetchRaw(ctx context.Context, pageURL string) (string, error) {
	resp, err := s.fallback.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("page fetch returned status %d", resp.StatusCode())
	}
	// Short-link redirects are already followed by the HTTP client; the
	// body here is the final petition page.
	return resp.String(), nil
}
