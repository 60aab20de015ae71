package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samvad-hq/profile-fetcher/internal/config"
	"github.com/samvad-hq/profile-fetcher/internal/domain"
	"github.com/samvad-hq/profile-fetcher/pkg/httpclient"
	"github.com/samvad-hq/profile-fetcher/pkg/profile"
	"github.com/samvad-hq/profile-fetcher/pkg/publishers"
)

const testEndpoint = "http://profile.example.invalid/user/info?access_token=opaque"

func proxyConfig(t *testing.T, proxyURL string) *config.Config {
	t.Helper()
	u, err := url.Parse(proxyURL)
	if err != nil {
		t.Fatalf("parse proxy url: %v", err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("atoi: %v", err)
	}
	return &config.Config{
		ProxyHost:      host,
		ProxyPort:      port,
		EndpointURL:    testEndpoint,
		RequestTimeout: 2 * time.Second,
		UserAgent:      "profilefetch-test",
	}
}

func profileProxy(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Host != "profile.example.invalid" {
			t.Errorf("proxy received request for %q", r.Host)
		}
		if got := r.Header.Get("User-Agent"); got != "profilefetch-test" {
			t.Errorf("unexpected user agent %q", got)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestFetcherRunPrintsRecord(t *testing.T) {
	proxy := profileProxy(t, `{"data":{"username":"alice","total_fans":100,"total_videos":5}}`, http.StatusOK)
	defer proxy.Close()

	var out bytes.Buffer
	f, err := NewFetcher(context.Background(), proxyConfig(t, proxy.URL), nil, WithOutput(&out))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	if err := f.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := `{"username":"alice","total_fans":100,"total_videos":5}` + "\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestFetcherRunPrintsNothingOnDecodeError(t *testing.T) {
	proxy := profileProxy(t, `{"data":{"username":"bob"}}`, http.StatusOK)
	defer proxy.Close()

	var out bytes.Buffer
	f, err := NewFetcher(context.Background(), proxyConfig(t, proxy.URL), nil, WithOutput(&out))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	err = f.Run(context.Background())
	if !errors.Is(err, profile.ErrDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestFetcherRunReportsStatus(t *testing.T) {
	proxy := profileProxy(t, `{"message":"expired"}`, http.StatusUnauthorized)
	defer proxy.Close()

	f, err := NewFetcher(context.Background(), proxyConfig(t, proxy.URL), nil, WithOutput(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	err = f.Run(context.Background())
	var fe *profile.FetchError
	if !errors.As(err, &fe) || fe.Kind != profile.KindDecode || fe.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected decode error with status 401, got %v", err)
	}
}

func TestFetcherRunProxyGatewayErrorIsTransport(t *testing.T) {
	proxy := profileProxy(t, `<html>upstream unreachable</html>`, http.StatusBadGateway)
	defer proxy.Close()

	var out bytes.Buffer
	f, err := NewFetcher(context.Background(), proxyConfig(t, proxy.URL), nil, WithOutput(&out))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	if err := f.Run(context.Background()); !errors.Is(err, profile.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestNewFetcherRejectsInvalidProxy(t *testing.T) {
	cfg := &config.Config{ProxyHost: "", ProxyPort: 8888, EndpointURL: testEndpoint, RequestTimeout: time.Second}
	if _, err := NewFetcher(context.Background(), cfg, nil); !errors.Is(err, httpclient.ErrInvalidProxyURL) {
		t.Fatalf("expected invalid proxy error, got %v", err)
	}
}

func TestNewFetcherNilConfig(t *testing.T) {
	if _, err := NewFetcher(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestFetcherRunPublishesToHTTPSink(t *testing.T) {
	proxy := profileProxy(t, `{"data":{"username":"carol","total_fans":7,"total_videos":2}}`, http.StatusOK)
	defer proxy.Close()

	var hits int32
	var received publishers.Event
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode sink body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer sink.Close()

	cfg := proxyConfig(t, proxy.URL)
	cfg.SinksFile = writeSinks(t, fmt.Sprintf(`
sinks:
  - id: hook
    type: http
    http:
      url: %s
`, sink.URL))

	var out bytes.Buffer
	f, err := NewFetcher(context.Background(), cfg, nil, WithOutput(&out))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	if err := f.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected one sink delivery, got %d", hits)
	}
	want := domain.ProfileRecord{Username: "carol", TotalFans: 7, TotalVideos: 2}
	if received.Profile != want || received.Source != "profile.example.invalid" {
		t.Fatalf("unexpected event %#v", received)
	}
	if strings.Contains(out.String(), "opaque") {
		t.Fatalf("token leaked into output: %q", out.String())
	}
}

func TestFetcherRunPrintsRecordWhenSinkFails(t *testing.T) {
	proxy := profileProxy(t, `{"data":{"username":"dave","total_fans":1,"total_videos":1}}`, http.StatusOK)
	defer proxy.Close()

	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer sink.Close()

	cfg := proxyConfig(t, proxy.URL)
	cfg.SinksFile = writeSinks(t, fmt.Sprintf("sinks:\n  - id: hook\n    type: http\n    http:\n      url: %s\n", sink.URL))

	var out bytes.Buffer
	f, err := NewFetcher(context.Background(), cfg, nil, WithOutput(&out))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	if err := f.Run(context.Background()); err == nil {
		t.Fatalf("expected publish error")
	}
	if !strings.Contains(out.String(), `"username":"dave"`) {
		t.Fatalf("expected record printed despite sink failure, got %q", out.String())
	}
}

func TestNewFetcherBadSinksFile(t *testing.T) {
	cfg := &config.Config{
		ProxyHost:      "127.0.0.1",
		ProxyPort:      8888,
		EndpointURL:    testEndpoint,
		RequestTimeout: time.Second,
		SinksFile:      filepath.Join(t.TempDir(), "missing.yaml"),
	}
	if _, err := NewFetcher(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for missing sinks file")
	}
}

func writeSinks(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sinks.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write sinks file: %v", err)
	}
	return path
}
