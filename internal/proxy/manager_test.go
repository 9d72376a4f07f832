package proxy

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProxyRotates(t *testing.T) {
	m, err := NewManager([]string{"http://p1:8000", "http://user:pw@p2:8000"}, nil)
	require.NoError(t, err)
	require.True(t, m.HasProxies())

	assert.Equal(t, "p1:8000", m.GetProxy().Host)
	assert.Equal(t, "p2:8000", m.GetProxy().Host)
	assert.Equal(t, "p1:8000", m.GetProxy().Host)

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	u, err := m.ProxyFunc(req)
	require.NoError(t, err)
	assert.Equal(t, "p2:8000", u.Host)
}

func TestGetProxyNone(t *testing.T) {
	m, err := NewManager(nil, nil)
	require.NoError(t, err)
	assert.False(t, m.HasProxies())
	assert.Nil(t, m.GetProxy())
}

func TestNewManagerRejectsBadProxy(t *testing.T) {
	_, err := NewManager([]string{"not a url"}, nil)
	assert.Error(t, err)
}

func TestGetUserAgent(t *testing.T) {
	m, err := NewManager(nil, nil)
	require.NoError(t, err)
	assert.Contains(t, DefaultUserAgents, m.GetUserAgent())

	m, err = NewManager(nil, []string{"weather-test/1.0"})
	require.NoError(t, err)
	assert.Equal(t, "weather-test/1.0", m.GetUserAgent())
}
