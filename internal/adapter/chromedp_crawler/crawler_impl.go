package chromedp_crawler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/weather-crawler/internal/proxy"
	"github.com/user/weather-crawler/internal/repository"
)

// ChromedpFetcher renders pages in headless Chrome. It satisfies
// repository.PageFetcher for sources that need JavaScript.
type ChromedpFetcher struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	proxies     *proxy.Manager
	timeout     time.Duration
	logger      *zap.Logger
}

// NewChromedpFetcher starts one browser allocator shared by every Fetch.
// Each Fetch opens its own tab, so concurrent calls are safe.
func NewChromedpFetcher(pageLoadTimeout time.Duration, pm *proxy.Manager, logger *zap.Logger) *ChromedpFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(pm.GetUserAgent()),
	)
	if p := pm.GetProxy(); p != nil {
		// Chrome takes a single proxy per browser process.
		opts = append(opts, chromedp.ProxyServer(p.Host))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &ChromedpFetcher{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		proxies:     pm,
		timeout:     pageLoadTimeout,
		logger:      logger.With(zap.String("component", "chromedp")),
	}
}

// Fetch navigates to url and returns the rendered document markup.
func (c *ChromedpFetcher) Fetch(ctx context.Context, url string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(c.allocCtx, chromedp.WithLogf(c.logger.Sugar().Debugf))
	defer cancelTab()

	// Tie the tab to the caller's context as well as our own timeout.
	taskCtx, cancel := context.WithTimeout(tabCtx, c.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var status atomic.Int64
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		if e, ok := ev.(*network.EventResponseReceived); ok && e.Type == network.ResourceTypeDocument {
			status.CompareAndSwap(0, e.Response.Status)
		}
	})

	var html string
	start := time.Now()
	err := chromedp.Run(taskCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}

	code := status.Load()
	c.logger.Debug("page rendered",
		zap.String("url", url),
		zap.Int64("status", code),
		zap.Duration("duration", time.Since(start)),
	)
	if code != 0 && (code < 200 || code >= 300) {
		return "", fmt.Errorf("%w: %d", repository.ErrUnexpectedStatus, code)
	}
	return html, nil
}

// Close shuts the browser down.
func (c *ChromedpFetcher) Close() error {
	c.allocCancel()
	return nil
}
