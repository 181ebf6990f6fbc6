package fetcher

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(Options{MaxRetries: 2})
	require.NoError(t, err)
	return c
}

func TestGetString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.Equal(t, "1", r.Header.Get("X-Custom"))
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	body, err := newTestClient(t).GetString(context.Background(), srv.URL, map[string]string{"X-Custom": "1"})
	require.NoError(t, err)
	assert.Equal(t, "hello", body)
}

func TestGetString_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(t).GetString(context.Background(), srv.URL, nil)
	assert.Error(t, err)
}

func TestDoWithRetry_RecoversFromServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	body, err := newTestClient(t).GetString(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "recovered", body)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDoWithRetry_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(t).GetString(context.Background(), srv.URL, nil)
	assert.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPostJSON_ResendsBodyOnRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var payload map[string]string
		require.NoError(t, json.Unmarshal(raw, &payload))
		assert.Equal(t, "YMSWebApp", payload["system"])

		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	body, err := newTestClient(t).PostJSON(context.Background(), srv.URL, nil, map[string]string{"system": "YMSWebApp"})
	require.NoError(t, err)
	defer body.Close() //nolint:errcheck

	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_SessionsKeepCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok"})
			return
		}
		c, err := r.Cookie("session")
		if err != nil || c.Value != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte("authed"))
	}))
	defer srv.Close()

	client := newTestClient(t)
	_, err := client.GetString(context.Background(), srv.URL+"/login", nil)
	require.NoError(t, err)

	body, err := client.GetString(context.Background(), srv.URL+"/data", nil)
	require.NoError(t, err)
	assert.Equal(t, "authed", body)
}
