package render

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/papajo/clmonetizer-app/internal/common"
	"github.com/papajo/clmonetizer-app/internal/interfaces"
)

// Service renders marketplace pages in pooled Chrome contexts
type Service struct {
	pool        *BrowserPool
	settleDelay time.Duration
	logger      arbor.ILogger
}

// NewService creates a render service backed by a fresh browser pool
func NewService(config *common.ScraperConfig, logger arbor.ILogger) (interfaces.RenderService, error) {
	pool, err := NewBrowserPool(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize render service: %w", err)
	}

	return &Service{
		pool:        pool,
		settleDelay: config.SettleDelay.Std(),
		logger:      logger,
	}, nil
}

// Render navigates to url and returns the rendered HTML. WaitNetworkIdle
// holds capture until the page's XHR traffic settles plus the configured
// settle delay; WaitLoad captures right after the load event.
func (s *Service) Render(ctx context.Context, url string, wait interfaces.WaitStrategy, timeout time.Duration) (string, error) {
	browserCtx, release, err := s.pool.Acquire()
	if err != nil {
		return "", err
	}
	defer release()

	navCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	// Propagate caller cancellation into the browser context
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	startTime := time.Now()

	var html string
	switch wait {
	case interfaces.WaitNetworkIdle:
		html, err = s.renderNetworkIdle(navCtx, url)
	default:
		html, err = s.renderOnLoad(navCtx, url)
	}

	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("render cancelled for %s: %w", url, ctx.Err())
		}
		s.logger.Warn().Err(err).Str("url", url).Msg("Page render failed")
		return "", fmt.Errorf("failed to render %s: %w", url, err)
	}

	if html == "" {
		return "", fmt.Errorf("empty HTML content returned for %s", url)
	}

	s.logger.Debug().
		Str("url", url).
		Str("wait", string(wait)).
		Int("html_bytes", len(html)).
		Dur("render_time", time.Since(startTime)).
		Msg("Page rendered")

	return html, nil
}

// renderOnLoad captures HTML once the load event fires
func (s *Service) renderOnLoad(ctx context.Context, url string) (string, error) {
	var html string
	err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.OuterHTML("html", &html),
	)
	return html, err
}

// renderNetworkIdle enables page lifecycle events, waits for the browser to
// report networkIdle, then lets late XHR results settle before capture
func (s *Service) renderNetworkIdle(ctx context.Context, url string) (string, error) {
	idle := make(chan struct{}, 1)

	listenCtx, stopListening := context.WithCancel(ctx)
	defer stopListening()

	chromedp.ListenTarget(listenCtx, func(ev interface{}) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == "networkIdle" {
			select {
			case idle <- struct{}{}:
			default:
			}
		}
	})

	var html string
	err := chromedp.Run(ctx,
		network.Enable(),
		chromedp.ActionFunc(func(c context.Context) error {
			return page.SetLifecycleEventsEnabled(true).Do(c)
		}),
		chromedp.Navigate(url),
		chromedp.ActionFunc(func(c context.Context) error {
			select {
			case <-idle:
				return nil
			case <-c.Done():
				return c.Err()
			}
		}),
		chromedp.Sleep(s.settleDelay),
		chromedp.OuterHTML("html", &html),
	)
	return html, err
}

// WarmUp verifies the pool responds by loading a blank page
func (s *Service) WarmUp(ctx context.Context) error {
	browserCtx, release, err := s.pool.Acquire()
	if err != nil {
		return err
	}
	defer release()

	warmCtx, cancel := context.WithTimeout(browserCtx, 10*time.Second)
	defer cancel()

	return chromedp.Run(warmCtx, chromedp.Navigate("about:blank"))
}

// Close shuts down the browser pool
func (s *Service) Close() error {
	return s.pool.Shutdown()
}
