package fragment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aotpy/fragcheck/internal/identity"
)

const testHash = "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2"

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return New(Options{
		BaseURL:    baseURL,
		Attempts:   3,
		RetryDelay: time.Millisecond,
		Identity:   identity.New(baseURL + "/"),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func serveLanding(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method: %s", r.Method)
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveHash_FromInlineScript(t *testing.T) {
	srv := serveLanding(t, `<html><head>
<script>var apiUrl = "/api?hash=`+testHash+`";</script>
</head><body></body></html>`)

	hash, err := newTestClient(t, srv.URL).ResolveHash(context.Background())
	if err != nil {
		t.Fatalf("ResolveHash() error: %v", err)
	}
	if hash != testHash {
		t.Errorf("hash = %q, want %q", hash, testHash)
	}
}

func TestResolveHash_FromJSONBlob(t *testing.T) {
	srv := serveLanding(t, `<html><script>window.state = {"hash":"`+testHash+`","other":1};</script></html>`)

	hash, err := newTestClient(t, srv.URL).ResolveHash(context.Background())
	if err != nil {
		t.Fatalf("ResolveHash() error: %v", err)
	}
	if hash != testHash {
		t.Errorf("hash = %q, want %q", hash, testHash)
	}
}

func TestResolveHash_LooseFallback(t *testing.T) {
	// Short token: only the loose apiUrl pattern matches.
	srv := serveLanding(t, `<html><script>var apiUrl = "https://example.test/api?hash=abc123def";</script></html>`)

	hash, err := newTestClient(t, srv.URL).ResolveHash(context.Background())
	if err != nil {
		t.Fatalf("ResolveHash() error: %v", err)
	}
	if hash != "abc123def" {
		t.Errorf("hash = %q, want %q", hash, "abc123def")
	}
}

func TestResolveHash_StrictPatternWinsOverLoose(t *testing.T) {
	body := `<html><script>var apiUrl = "/api?hash=dead01"; var full = "hash=` + testHash + `";</script></html>`
	srv := serveLanding(t, body)

	hash, err := newTestClient(t, srv.URL).ResolveHash(context.Background())
	if err != nil {
		t.Fatalf("ResolveHash() error: %v", err)
	}
	if hash != testHash {
		t.Errorf("hash = %q, want the 64-char token %q", hash, testHash)
	}
}

func TestResolveHash_NotFound(t *testing.T) {
	srv := serveLanding(t, `<html><script>var unrelated = 1;</script></html>`)

	_, err := newTestClient(t, srv.URL).ResolveHash(context.Background())
	if !errors.Is(err, ErrHashNotFound) {
		t.Errorf("error = %v, want ErrHashNotFound", err)
	}
}

func TestResolveHash_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "backend unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).ResolveHash(context.Background())
	if err == nil {
		t.Fatal("ResolveHash() = nil error, want failure on non-200")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("error = %v, want mention of status 502", err)
	}
}

func TestResolveHash_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	if _, err := newTestClient(t, srv.URL).ResolveHash(context.Background()); err == nil {
		t.Fatal("ResolveHash() = nil error, want transport failure")
	}
}
