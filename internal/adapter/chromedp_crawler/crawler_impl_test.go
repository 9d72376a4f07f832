package chromedp_crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/weather-crawler/internal/proxy"
	"github.com/user/weather-crawler/internal/repository"
)

func requireChrome(t *testing.T) {
	t.Helper()
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			return
		}
	}
	t.Skip("no Chrome binary available")
}

func newFetcher(t *testing.T) *ChromedpFetcher {
	t.Helper()
	pm, err := proxy.NewManager(nil, nil)
	require.NoError(t, err)
	f := NewChromedpFetcher(20*time.Second, pm, zap.NewNop())
	t.Cleanup(func() { f.Close() })
	return f
}

func TestChromedpFetch(t *testing.T) {
	requireChrome(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><table class="table-striped"><tr><th>Day</th></tr></table></body></html>`))
	}))
	defer server.Close()

	html, err := newFetcher(t).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "table-striped")
}

func TestChromedpFetchErrorStatus(t *testing.T) {
	requireChrome(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newFetcher(t).Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrUnexpectedStatus))
}
