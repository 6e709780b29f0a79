package media

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig keeps retry waits out of test runtime.
func testConfig() Config {
	return Config{
		Attempts:      3,
		BackoffFactor: time.Millisecond,
		Timeout:       time.Second,
	}
}

func TestNewResolver(t *testing.T) {
	t.Run("zero config falls back to the defaults", func(t *testing.T) {
		r := NewResolver(Config{})
		assert.Equal(t, DefaultAttempts-1, r.client.RetryMax)
		assert.Equal(t, DefaultTimeout, r.client.HTTPClient.Timeout)
	})
}

func TestResolve(t *testing.T) {
	ctx := context.TODO()

	t.Run("returns the exact manifest URL from the page body", func(t *testing.T) {
		manifest := "https://stream.example.com/archive/case_101/playlist.m3u8"
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `<html><script>player.load("%s");</script></html>`, manifest)
		}))
		defer server.Close()

		got, err := NewResolver(testConfig()).Resolve(ctx, server.URL)
		require.NoError(t, err)
		assert.Equal(t, manifest, got)
	})

	t.Run("sends a browser user agent", func(t *testing.T) {
		var agent string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			agent = r.UserAgent()
			fmt.Fprint(w, "https://s.example.com/a.m3u8")
		}))
		defer server.Close()

		_, err := NewResolver(testConfig()).Resolve(ctx, server.URL)
		require.NoError(t, err)
		assert.Equal(t, "Mozilla/5.0", agent)
	})

	t.Run("reports ErrNoManifest when the page has no manifest URL", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html><body>player offline</body></html>")
		}))
		defer server.Close()

		_, err := NewResolver(testConfig()).Resolve(ctx, server.URL)
		assert.ErrorIs(t, err, ErrNoManifest)
	})

	t.Run("succeeds on the third attempt after two 502s", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) <= 2 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			fmt.Fprint(w, "https://stream.example.com/playlist.m3u8")
		}))
		defer server.Close()

		got, err := NewResolver(testConfig()).Resolve(ctx, server.URL)
		require.NoError(t, err)
		assert.Equal(t, "https://stream.example.com/playlist.m3u8", got)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("gives up after the attempt cap", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := NewResolver(testConfig()).Resolve(ctx, server.URL)
		assert.Error(t, err)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		// A 404 body with no manifest is an ErrNoManifest, not a retry loop.
		_, err := NewResolver(testConfig()).Resolve(ctx, server.URL)
		assert.ErrorIs(t, err, ErrNoManifest)
		assert.Equal(t, int32(1), calls.Load())
	})
}
