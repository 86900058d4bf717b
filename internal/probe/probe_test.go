package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProbe(t *testing.T) {
	ctx := context.Background()

	t.Run("Reachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		p := New([]string{srv.URL}, time.Second, nil)
		assert.True(t, p.Probe(ctx))
	})

	t.Run("CaptivePortalStillCounts", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		p := New([]string{srv.URL}, time.Second, nil)
		assert.True(t, p.Probe(ctx))
	})

	t.Run("ServerError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		p := New([]string{srv.URL}, time.Second, nil)
		assert.False(t, p.Probe(ctx))
	})

	t.Run("Unreachable", func(t *testing.T) {
		p := New([]string{"http://127.0.0.1:1"}, 200*time.Millisecond, nil)
		assert.False(t, p.Probe(ctx))
	})

	t.Run("Timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
		}))
		defer srv.Close()

		p := New([]string{srv.URL}, 100*time.Millisecond, nil)
		assert.False(t, p.Probe(ctx))
	})
}
