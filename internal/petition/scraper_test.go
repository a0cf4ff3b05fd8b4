package petition

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A scraper without a renderer exercises the HTTP fallback path, the same
// path taken when Chrome cannot be launched.

func TestSignatureCountFallbackFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>{"signatureCount":{"total":12345,"displayed":12000}}</html>`))
	}))
	defer server.Close()

	scraper := NewScraperWithRenderer(nil)
	defer scraper.Close()

	count, found := scraper.SignatureCount(context.Background(), server.URL)
	require.True(t, found)
	assert.Equal(t, 12345, count)
}

func TestSignatureCountFallbackSendsBrowserHeaders(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`<p>4,200 people signed</p>`))
	}))
	defer server.Close()

	scraper := NewScraperWithRenderer(nil)
	defer scraper.Close()

	count, found := scraper.SignatureCount(context.Background(), server.URL)
	require.True(t, found)
	assert.Equal(t, 4200, count)
	assert.Contains(t, gotUA, "Chrome")
}

func TestSignatureCountFollowsRedirect(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<p>1,500 supporters</p>`))
	}))
	defer target.Close()

	shortener := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusFound)
	}))
	defer shortener.Close()

	scraper := NewScraperWithRenderer(nil)
	defer scraper.Close()

	count, found := scraper.SignatureCount(context.Background(), shortener.URL)
	require.True(t, found)
	assert.Equal(t, 1500, count)
}

func TestSignatureCountNoPatternMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>nothing to see</body></html>`))
	}))
	defer server.Close()

	scraper := NewScraperWithRenderer(nil)
	defer scraper.Close()

	_, found := scraper.SignatureCount(context.Background(), server.URL)
	assert.False(t, found)
}

func TestScraperCloseIsSafeToRepeat(t *testing.T) {
	// Every exit path of the driver, success or failure, must be able to
	// close the scraper without panicking.
	scraper := NewScraperWithRenderer(nil)
	scraper.Close()
	scraper.Close()
}

func TestSignatureCountServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	scraper := NewScraperWithRenderer(nil)
	defer scraper.Close()

	_, found := scraper.SignatureCount(context.Background(), server.URL)
	assert.False(t, found)
}
