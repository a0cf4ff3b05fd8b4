package petition

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

// RenderConfig controls the headless browser used to execute page
// JavaScript before extraction.
type RenderConfig struct {
	UserAgent         string
	ViewportWidth     int64
	ViewportHeight    int64
	RedirectWait      time.Duration
	SettleWait        time.Duration
	NavigationTimeout time.Duration
}

// DefaultRenderConfig matches a plain desktop Chrome session. Change.org
// renders the signature widget client-side, so the settle wait has to cover
// its hydration.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		UserAgent:         desktopUserAgent,
		ViewportWidth:     1920,
		ViewportHeight:    1080,
		RedirectWait:      3 * time.Second,
		SettleWait:        5 * time.Second,
		NavigationTimeout: 60 * time.Second,
	}
}

const desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Renderer fetches pages through headless Chrome via chromedp.
type Renderer struct {
	cfg         RenderConfig
	allocator   context.Context
	allocCancel context.CancelFunc
}

// NewRenderer builds a renderer backed by a shared Chrome exec allocator.
// Launching the browser is deferred to the first Render call; a missing
// Chrome binary surfaces there as an error.
func NewRenderer(cfg RenderConfig) *Renderer {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 60 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(int(cfg.ViewportWidth), int(cfg.ViewportHeight)),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Renderer{
		cfg:         cfg,
		allocator:   allocCtx,
		allocCancel: allocCancel,
	}
}

// Close shuts down the browser allocator.
func (r *Renderer) Close() {
	r.allocCancel()
}

// Render navigates to pageURL, waits for the redirect (short links) and
// client-side rendering, then returns the rendered document HTML.
func (r *Renderer) Render(ctx context.Context, pageURL string) (string, error) {
	taskCtx, taskCancel := chromedp.NewContext(r.allocator)
	defer taskCancel()

	taskCtx, cancel := context.WithTimeout(taskCtx, r.cfg.NavigationTimeout)
	defer cancel()

	// Tie the browser task to the caller's context as well.
	go func() {
		select {
		case <-ctx.Done():
			taskCancel()
		case <-taskCtx.Done():
		}
	}()

	actions := []chromedp.Action{
		r.sessionSetupAction(),
		chromedp.Navigate(pageURL),
	}
	if IsShortLink(pageURL) {
		actions = append(actions, chromedp.Sleep(r.cfg.RedirectWait))
	}
	var html string
	actions = append(actions,
		chromedp.Sleep(r.cfg.SettleWait),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)

	if err := chromedp.Run(taskCtx, actions...); err != nil {
		return "", fmt.Errorf("chromedp run: %w", err)
	}
	return html, nil
}

func (r *Renderer) sessionSetupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if r.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(r.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		if r.cfg.ViewportWidth > 0 && r.cfg.ViewportHeight > 0 {
			err := emulation.SetDeviceMetricsOverride(r.cfg.ViewportWidth, r.cfg.ViewportHeight, 1, false).Do(ctx)
			if err != nil {
				return fmt.Errorf("set viewport: %w", err)
			}
		}
		return nil
	})
}
