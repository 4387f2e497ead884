package tickers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phuslu/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/tickerwatch/internal/httpclient"
	"github.com/shanehull/tickerwatch/internal/store"
)

type countingFetcher struct {
	body  string
	err   error
	calls int
}

func (f *countingFetcher) Get(context.Context, string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body), nil
}

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestProvider(cache store.Lines, f Fetcher) *Provider {
	return NewProvider(cache, f, "https://example.com/all_tickers.txt", 30*24*time.Hour,
		WithClock(func() time.Time { return now }),
		WithLogger(&log.Logger{Writer: log.IOWriter{Writer: io.Discard}}),
	)
}

func TestNewSet(t *testing.T) {
	s := NewSet("aapl", " MSFT ", "AAPL", "")
	assert.Len(t, s, 2)
	assert.True(t, s.Contains("AAPL"))
	assert.False(t, s.Contains("aapl"))
	assert.Equal(t, []string{"AAPL", "MSFT"}, s.Sorted())
}

func TestLoad_FreshCacheDoesNotFetch(t *testing.T) {
	cache := store.NewMemory(now.Add(-time.Hour), "aapl", "MSFT", "AAPL")
	f := &countingFetcher{body: "ZZZZ\n"}

	set, err := newTestProvider(cache, f).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, f.calls)
	assert.Equal(t, []string{"AAPL", "MSFT"}, set.Sorted())
}

func TestLoad_StaleCacheIsReplaced(t *testing.T) {
	tests := map[string]time.Duration{
		"exactly max age": 30 * 24 * time.Hour,
		"older":           45 * 24 * time.Hour,
	}
	for name, age := range tests {
		t.Run(name, func(t *testing.T) {
			cache := store.NewMemory(now.Add(-age), "OLD1", "OLD2")
			cache.Now = func() time.Time { return now }
			f := &countingFetcher{body: "new1\nNEW2\n\n"}

			set, err := newTestProvider(cache, f).Load(context.Background())
			require.NoError(t, err)

			assert.Equal(t, 1, f.calls)
			assert.Equal(t, []string{"NEW1", "NEW2"}, set.Sorted())

			lines, _ := cache.ReadAll()
			assert.Equal(t, []string{"new1", "NEW2"}, lines, "cache is replaced in full")
		})
	}
}

func TestLoad_MissingCacheFetchesOnce(t *testing.T) {
	var cache store.Memory
	f := &countingFetcher{body: "AAPL\nMSFT\n"}

	set, err := newTestProvider(&cache, f).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, f.calls)
	assert.Len(t, set, 2)
}

func TestLoad_FetchFailureIsFatal(t *testing.T) {
	boom := errors.New("connection refused")
	cache := store.NewMemory(now.Add(-90*24*time.Hour), "OLD")

	_, err := newTestProvider(cache, &countingFetcher{err: boom}).Load(context.Background())
	require.ErrorIs(t, err, boom)

	lines, _ := cache.ReadAll()
	assert.Equal(t, []string{"OLD"}, lines, "stale cache is untouched on failure")
}

func TestLoad_FileCacheOverHTTP(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("AAPL\nMSFT\nGOOG\n"))
	}))
	defer ts.Close()

	path := filepath.Join(t.TempDir(), "tickers_cache.txt")
	hc := httpclient.New(httpclient.Options{})
	quiet := WithLogger(&log.Logger{Writer: log.IOWriter{Writer: io.Discard}})

	p := NewProvider(store.NewFile(path), hc, ts.URL, time.Hour, quiet)
	set, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, set, 3)

	// Second load within max age reads the file only.
	p = NewProvider(store.NewFile(path), hc, ts.URL, time.Hour, quiet)
	set, err = p.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, set, 3)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}
