package source_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/slotwatch/pkg/source"
)

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "secret-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "*/*", r.Header.Get("Accept"))
		assert.Equal(t, "slotwatch-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "chrome-extension://test", r.Header.Get("Origin"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer server.Close()

	c := source.NewClient(source.ClientConfig{
		URL:       server.URL,
		APIKey:    "secret-key",
		Origin:    "chrome-extension://test",
		UserAgent: "slotwatch-test",
	})

	resp, err := c.Fetch(context.Background())
	require.NoError(t, err)

	obs, ok := source.Extract(resp, "DUBAI", source.DefaultFields())
	require.True(t, ok)
	assert.Equal(t, 7, obs.Slots)
}

func TestClient_Fetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := source.NewClient(source.ClientConfig{URL: server.URL})
	_, err := c.Fetch(context.Background())
	assert.ErrorIs(t, err, source.ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_Fetch_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := source.NewClient(source.ClientConfig{URL: server.URL})
	_, err := c.Fetch(context.Background())
	assert.ErrorIs(t, err, source.ErrEmptyResponse)
}

func TestDecode(t *testing.T) {
	_, err := source.Decode([]byte(`null`))
	assert.ErrorIs(t, err, source.ErrEmptyResponse)

	_, err = source.Decode([]byte(`{invalid`))
	assert.Error(t, err)

	_, err = source.Decode([]byte(`[1, 2]`))
	assert.Error(t, err)
}

func TestNewClient_DefaultURL(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := source.NewClient(source.ClientConfig{})
	_, err := c.Fetch(ctx)
	assert.Error(t, err)
}
