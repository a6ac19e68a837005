package goodreads

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"grscraper/pkg/config"
	"grscraper/pkg/errors"
	"grscraper/pkg/retry"
)

func testNetworkConfig() config.NetworkConfig {
	cfg := config.DefaultConfig().Network
	cfg.RequestTimeoutSecs = 2
	cfg.DownloadTimeoutSecs = 2
	return cfg
}

func TestFetchDocumentRateLimitRetry(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`<html><body><p>ok</p></body></html>`))
	}))
	defer server.Close()

	client := NewClient(testNetworkConfig(), nil)
	cooldown := 50 * time.Millisecond
	client.policy = retry.Policy{MaxAttempts: 0, Cooldown: cooldown}

	start := time.Now()
	doc, err := client.FetchDocument(context.Background(), server.URL)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("expected 429 to be retried silently, got error: %v", err)
	}
	if doc == nil {
		t.Fatal("expected a parsed document")
	}
	if requests != 3 {
		t.Errorf("expected 3 requests (two 429s then success), got %d", requests)
	}
	if elapsed < 2*cooldown {
		t.Errorf("expected at least two cooldown waits (%v), elapsed %v", 2*cooldown, elapsed)
	}
}

func TestFetchDocumentRateLimitBounded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(testNetworkConfig(), nil)
	client.policy = retry.Policy{MaxAttempts: 2, Cooldown: time.Millisecond}

	_, err := client.FetchDocument(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error once the retry ceiling is hit")
	}
	if !errors.IsRateLimited(err) {
		t.Errorf("expected a rate limit error, got %v", err)
	}
}

func TestFetchDocumentServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testNetworkConfig(), nil)

	_, err := client.FetchDocument(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	scrapeErr, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("expected typed error, got %T", err)
	}
	if scrapeErr.Type != errors.ErrorTypeServerError {
		t.Errorf("expected server error type, got %s", scrapeErr.Type)
	}
	if !errors.IsTransient(scrapeErr.Type) {
		t.Error("server errors should be transient")
	}
}

func TestFetchDocumentTransportError(t *testing.T) {
	client := NewClient(testNetworkConfig(), nil)

	// Nothing listens here.
	_, err := client.FetchDocument(context.Background(), "http://127.0.0.1:1")
	if err == nil {
		t.Fatal("expected transport error")
	}
	scrapeErr, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("expected typed error, got %T", err)
	}
	if !errors.IsTransient(scrapeErr.Type) {
		t.Errorf("transport failures should be transient, got %s", scrapeErr.Type)
	}
}

func TestFetchDocumentSendsSessionHeaders(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`<html></html>`))
	}))
	defer server.Close()

	cfg := testNetworkConfig()
	client := NewClient(cfg, nil)

	if _, err := client.FetchDocument(context.Background(), server.URL); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if gotUA != cfg.UserAgent {
		t.Errorf("expected configured user agent, got %q", gotUA)
	}
}

func TestDownloadImage(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0xff, 0xe0}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	client := NewClient(testNetworkConfig(), nil)

	data, err := client.DownloadImage(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if string(data) != string(payload) {
		t.Error("downloaded bytes do not match")
	}
}
