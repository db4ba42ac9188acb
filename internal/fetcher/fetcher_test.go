package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalper/internal/config"
)

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.HTTP.UserAgent = "scalper-test"
	cfg.HTTP.TimeoutMS = 2000
	return cfg
}

func TestFetchSuccess(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><h1>Привет</h1></body></html>"))
	}))
	defer srv.Close()

	f := NewFetcher(testConfig(), nil)
	resp, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.ContentType)
	assert.Contains(t, string(resp.Body), "<h1>Привет</h1>")
	assert.Equal(t, "scalper-test", gotUA)
	assert.Equal(t, "en-US,en;q=0.9", gotLang)
}

func TestFetchGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("<p>compressed</p>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Accept-Encoding"))
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	body, contentType, err := NewFetcher(testConfig(), nil).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "text/html", contentType)
	assert.Equal(t, "<p>compressed</p>", string(body))
}

func TestFetchNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewFetcher(testConfig(), nil).Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "404")
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.HTTP.TimeoutMS = 50

	start := time.Now()
	_, err := NewFetcher(cfg, nil).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "timeout")
	assert.Less(t, time.Since(start), time.Second)
}

func TestFetchCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFetcher(testConfig(), nil).Fetch(ctx, srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFetchBodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.HTTP.MaxBodyBytes = 10

	_, err := NewFetcher(cfg, nil).Fetch(context.Background(), srv.URL)
	assert.True(t, errors.Is(err, ErrBodyTooLarge))
}

func TestFetchDecodesCharset(t *testing.T) {
	// "Привет" в windows-1251
	cp1251 := []byte{0xCF, 0xF0, 0xE8, 0xE2, 0xE5, 0xF2}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1251")
		_, _ = w.Write(append(append([]byte("<h1>"), cp1251...), []byte("</h1>")...))
	}))
	defer srv.Close()

	body, _, err := NewFetcher(testConfig(), nil).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<h1>Привет</h1>", string(body))
}

func TestFetchInvalidURL(t *testing.T) {
	f := NewFetcher(testConfig(), nil)

	_, err := f.Fetch(context.Background(), "ftp://example.com/file")
	assert.ErrorContains(t, err, "unsupported scheme")

	_, err = f.Fetch(context.Background(), "http://[::1")
	assert.ErrorContains(t, err, "invalid URL")
}

func TestToUTF8(t *testing.T) {
	body, err := toUTF8([]byte("\xEF\xBB\xBF<p>bom</p>"), "")
	require.NoError(t, err)
	assert.Equal(t, "<p>bom</p>", string(body))

	// UTF-8 без объявления кодировки остаётся как есть
	plain := []byte(strings.Repeat("a", 2048) + "ü")
	body, err = toUTF8(plain, "text/html")
	require.NoError(t, err)
	assert.Equal(t, plain, body)
}
