package interfaces

import (
	"context"
	"time"
)

// WaitStrategy controls how long the renderer waits before capturing HTML
type WaitStrategy string

const (
	// WaitLoad captures HTML as soon as the page load event fires
	WaitLoad WaitStrategy = "load"
	// WaitNetworkIdle waits for network activity to settle before capture.
	// Category pages populate their results via XHR, so this is the default
	// for list rendering.
	WaitNetworkIdle WaitStrategy = "networkidle"
)

// RenderService - interface for JavaScript-capable page rendering
type RenderService interface {
	// Render navigates to url in a pooled browser context and returns the
	// fully rendered HTML. The timeout bounds the whole navigation including
	// the wait strategy.
	Render(ctx context.Context, url string, wait WaitStrategy, timeout time.Duration) (string, error)

	// WarmUp verifies the browser pool is usable by loading a blank page
	WarmUp(ctx context.Context) error

	Close() error
}
