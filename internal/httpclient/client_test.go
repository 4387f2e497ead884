package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_SendsHeaders(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("hello"))
	}))
	defer ts.Close()

	c := New(Options{Headers: map[string]string{"User-Agent": "TickerCheckerBot/1.0 (ops@example.com)"}})
	body, err := c.Get(context.Background(), ts.URL)
	require.NoError(t, err)

	assert.Equal(t, "hello", string(body))
	assert.Equal(t, "TickerCheckerBot/1.0 (ops@example.com)", gotUA)
}

func TestGet_NonOKIsStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	_, err := New(Options{}).Get(context.Background(), ts.URL)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
}

func TestGet_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	_, err := New(Options{}).Get(context.Background(), url)
	assert.Error(t, err)
}

func TestPostJSON(t *testing.T) {
	var got map[string]string
	var contentType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("invalid_payload"))
	}))
	defer ts.Close()

	resp, err := New(Options{}).PostJSON(context.Background(), ts.URL, map[string]string{"text": "hi"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_payload", resp.Body)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, map[string]string{"text": "hi"}, got)
}

func TestGet_CancelledContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{}).Get(ctx, ts.URL)
	assert.Error(t, err)
}
