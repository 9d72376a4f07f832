package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/user/weather-crawler/internal/proxy"
	"github.com/user/weather-crawler/internal/repository"
)

// maxBodyBytes bounds a single month page; real pages are ~200KB.
const maxBodyBytes = 8 << 20

// Fetcher is a repository.PageFetcher backed by net/http.
type Fetcher struct {
	client  *http.Client
	proxies *proxy.Manager
}

// NewFetcher creates a fetcher whose requests time out after timeout and
// carry a user agent from pm.
func NewFetcher(timeout time.Duration, pm *proxy.Manager) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if pm.HasProxies() {
		transport.Proxy = pm.ProxyFunc
	}
	return &Fetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		proxies: pm,
	}
}

// Fetch performs one GET and decodes the body to UTF-8 text using the
// response's declared charset.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.proxies.GetUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return "", fmt.Errorf("%w: %d", repository.ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	text, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(text), nil
}
