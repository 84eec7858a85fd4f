package render

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/papajo/clmonetizer-app/internal/common"
)

// BrowserPool manages a fixed set of Chrome browser contexts with
// round-robin allocation. Rendering a marketplace page needs real
// JavaScript execution, and reusing warm browser contexts avoids paying
// Chrome startup cost per page.
type BrowserPool struct {
	browsers         []context.Context
	browserCancels   []context.CancelFunc
	allocatorCancels []context.CancelFunc
	mu               sync.Mutex
	currentIndex     int
	logger           arbor.ILogger
	initialized      bool
}

// NewBrowserPool creates and initializes a browser pool from scraper config
func NewBrowserPool(config *common.ScraperConfig, logger arbor.ILogger) (*BrowserPool, error) {
	size := config.BrowserPoolSize
	if size <= 0 {
		return nil, fmt.Errorf("browser_pool_size must be greater than 0, got: %d", size)
	}

	pool := &BrowserPool{
		browsers:         make([]context.Context, 0, size),
		browserCancels:   make([]context.CancelFunc, 0, size),
		allocatorCancels: make([]context.CancelFunc, 0, size),
		logger:           logger,
	}

	logger.Info().
		Int("pool_size", size).
		Bool("headless", config.Headless).
		Msg("Initializing browser pool")

	var lastErr error
	for i := 0; i < size; i++ {
		if err := pool.createInstance(i, config); err != nil {
			lastErr = err
			pool.logger.Warn().
				Err(err).
				Int("browser_index", i).
				Msg("Failed to create browser instance")
		}
	}

	if len(pool.browsers) == 0 {
		pool.cleanupInstances()
		return nil, fmt.Errorf("failed to create any browser instances, last error: %w", lastErr)
	}

	if len(pool.browsers) < size {
		logger.Warn().
			Int("requested", size).
			Int("created", len(pool.browsers)).
			Msg("Created fewer browser instances than requested")
	}

	pool.initialized = true
	logger.Info().
		Int("browsers_created", len(pool.browsers)).
		Msg("Browser pool initialized successfully")

	return pool, nil
}

// createInstance creates a single browser context and verifies it responds
func (p *BrowserPool) createInstance(index int, config *common.ScraperConfig) error {
	startTime := time.Now()

	allocatorOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", config.Headless),
		chromedp.Flag("disable-gpu", config.DisableGPU),
		chromedp.Flag("no-sandbox", config.NoSandbox),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(config.UserAgent),
	)

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(
		context.Background(),
		allocatorOpts...,
	)

	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	// Startup test: a browser that cannot load about:blank will not render
	// marketplace pages either
	testCtx, testCancel := context.WithTimeout(browserCtx, 30*time.Second)
	defer testCancel()

	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocatorCancel()
		return fmt.Errorf("browser instance failed startup test: %w", err)
	}

	p.browsers = append(p.browsers, browserCtx)
	p.browserCancels = append(p.browserCancels, browserCancel)
	p.allocatorCancels = append(p.allocatorCancels, allocatorCancel)

	p.logger.Debug().
		Int("browser_index", index).
		Dur("startup_time", time.Since(startTime)).
		Msg("Browser instance created")

	return nil
}

// Acquire returns a browser context using round-robin allocation, plus a
// release function to call when the render is done
func (p *BrowserPool) Acquire() (context.Context, func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return nil, nil, fmt.Errorf("browser pool not initialized")
	}
	if len(p.browsers) == 0 {
		return nil, nil, fmt.Errorf("no browser instances available")
	}

	index := p.currentIndex % len(p.browsers)
	p.currentIndex = (p.currentIndex + 1) % len(p.browsers)

	browserCtx := p.browsers[index]
	release := func() {
		p.logger.Debug().Int("browser_index", index).Msg("Browser context released")
	}

	return browserCtx, release, nil
}

// Shutdown cancels all browser contexts, bounded so a wedged Chrome cannot
// hang process exit
func (p *BrowserPool) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return nil
	}

	browserCount := len(p.browsers)
	p.logger.Info().Int("browser_count", browserCount).Msg("Shutting down browser pool")

	done := make(chan struct{})
	go func() {
		p.cleanupInstances()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		p.logger.Warn().Msg("Browser pool shutdown timed out, forcing cleanup")
		p.cleanupInstances()
	}

	p.initialized = false
	p.logger.Info().Int("browsers_shutdown", browserCount).Msg("Browser pool shut down")

	return nil
}

// cleanupInstances must be called with the mutex held
func (p *BrowserPool) cleanupInstances() {
	for _, cancel := range p.browserCancels {
		if cancel != nil {
			cancel()
		}
	}
	for _, cancel := range p.allocatorCancels {
		if cancel != nil {
			cancel()
		}
	}
	p.browsers = nil
	p.browserCancels = nil
	p.allocatorCancels = nil
	p.currentIndex = 0
}
