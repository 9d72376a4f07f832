package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/weather-crawler/internal/adapter/httpfetch"
	"github.com/user/weather-crawler/internal/entity"
	"github.com/user/weather-crawler/internal/proxy"
	"github.com/user/weather-crawler/internal/repository"
	"github.com/user/weather-crawler/pkg/metrics"
)

type stubPages struct {
	body string
	err  error
	urls []string
}

func (s *stubPages) Fetch(_ context.Context, url string) (string, error) {
	s.urls = append(s.urls, url)
	return s.body, s.err
}

func newTestMonthFetcher(pages repository.PageFetcher, m *metrics.Metrics) *MonthFetcher {
	return NewMonthFetcher(MonthFetcherConfig{
		BaseURL:   "https://climate.example.test/daily_data_e.html?timeframe=2",
		StationID: "27174",
		Location:  "Winnipeg",
	}, pages, m, zap.NewNop())
}

func TestMonthFetcherURL(t *testing.T) {
	f := newTestMonthFetcher(&stubPages{}, metrics.NewNop())

	raw, err := f.URL(entity.YearMonth{Year: 2023, Month: time.March})
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "2", q.Get("timeframe"))
	assert.Equal(t, "27174", q.Get("StationID"))
	assert.Equal(t, "2023", q.Get("Year"))
	assert.Equal(t, "3", q.Get("Month"))
	assert.Equal(t, "1", q.Get("Day"))
}

func TestMonthFetcherRows(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	pages := &stubPages{body: monthPage(fullMonth(28))}
	f := newTestMonthFetcher(pages, m)

	outcome := f.Fetch(context.Background(), entity.YearMonth{Year: 2023, Month: time.February})

	rows, ok := outcome.(entity.MonthRows)
	require.True(t, ok, "got %T", outcome)
	require.Len(t, rows.Rows, 28)
	first := rows.Rows[0]
	assert.Equal(t, "2023-02-01", first.DateString())
	assert.Equal(t, "Winnipeg", first.Location)
	assert.Equal(t, 1.5, first.MaxTemp)
	assert.Equal(t, "2023-02-28", rows.Rows[27].DateString())
	assert.Len(t, pages.urls, 1)
	assert.Equal(t, 1.0, counterValue(t, reg, "weather_month_fetches_total", "outcome", metrics.OutcomeRows))
}

func TestMonthFetcherEmpty(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	f := newTestMonthFetcher(&stubPages{body: noTablePage}, m)

	outcome := f.Fetch(context.Background(), entity.YearMonth{Year: 1839, Month: time.December})
	assert.Equal(t, entity.MonthEmpty{}, outcome)
	assert.Equal(t, 1.0, counterValue(t, reg, "weather_month_fetches_total", "outcome", metrics.OutcomeEmpty))
}

func TestMonthFetcherTransportError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	cause := errors.New("connection reset by peer")
	f := newTestMonthFetcher(&stubPages{err: cause}, m)

	outcome := f.Fetch(context.Background(), entity.YearMonth{Year: 2001, Month: time.May})
	te, ok := outcome.(entity.MonthTransportError)
	require.True(t, ok, "got %T", outcome)
	assert.ErrorIs(t, te.Err, cause)
	assert.Equal(t, "connection reset by peer", te.Error())
	assert.Equal(t, 1.0, counterValue(t, reg, "weather_month_fetches_total", "outcome", metrics.OutcomeTransport))
}

func TestMonthFetcherOverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("Year") == "1999":
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		case q.Get("Year") < "1840":
			fmt.Fprint(w, noTablePage)
		default:
			fmt.Fprint(w, monthPage(fullMonth(31)))
		}
	}))
	defer server.Close()

	pm, err := proxy.NewManager(nil, []string{"weather-test/1.0"})
	require.NoError(t, err)
	f := NewMonthFetcher(MonthFetcherConfig{
		BaseURL:   server.URL + "/climate_data/daily_data_e.html?timeframe=2",
		StationID: "27174",
		Location:  "Winnipeg",
	}, httpfetch.NewFetcher(5*time.Second, pm), metrics.NewNop(), zap.NewNop())

	ctx := context.Background()
	assert.IsType(t, entity.MonthRows{}, f.Fetch(ctx, entity.YearMonth{Year: 1840, Month: time.January}))
	assert.IsType(t, entity.MonthEmpty{}, f.Fetch(ctx, entity.YearMonth{Year: 1839, Month: time.December}))

	outcome := f.Fetch(ctx, entity.YearMonth{Year: 1999, Month: time.July})
	te, ok := outcome.(entity.MonthTransportError)
	require.True(t, ok, "got %T", outcome)
	assert.ErrorIs(t, te.Err, repository.ErrUnexpectedStatus)
}
