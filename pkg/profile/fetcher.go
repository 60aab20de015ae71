package profile

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/samvad-hq/profile-fetcher/internal/domain"
	"github.com/samvad-hq/profile-fetcher/pkg/httpclient"
)

// HTTPClient aliases the shared httpclient.Client interface for clarity within profile.
type HTTPClient = httpclient.Client

// Fetcher retrieves one profile per call. It holds no state besides its
// client and request headers, so repeated calls are independent.
type Fetcher struct {
	client  HTTPClient
	headers map[string]string
}

// NewFetcher builds a Fetcher that sends the given headers with every request.
func NewFetcher(client HTTPClient, headers map[string]string) *Fetcher {
	cp := make(map[string]string, len(headers))
	for k, v := range headers {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		cp[k] = v
	}
	return &Fetcher{client: client, headers: cp}
}

// FetchProfile performs a single GET of endpointURL through client and decodes the result.
func FetchProfile(ctx context.Context, client HTTPClient, endpointURL string) (domain.ProfileRecord, error) {
	return NewFetcher(client, nil).Fetch(ctx, endpointURL)
}

// Fetch issues one request and returns the decoded record or a *FetchError.
// Proxy failure statuses (407, 502, 504) are transport errors; every other
// status is decoded like a success.
// endpointURL is used verbatim; any credential it embeds is opaque here.
func (f *Fetcher) Fetch(ctx context.Context, endpointURL string) (domain.ProfileRecord, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	resp, err := f.client.Get(ctx, endpointURL, f.headers)
	if err != nil {
		return domain.ProfileRecord{}, transportError(err)
	}
	if resp == nil {
		return domain.ProfileRecord{}, transportError(nil)
	}

	body := resp.Body()
	code := resp.StatusCode()
	if isProxyFailure(code) {
		return domain.ProfileRecord{}, proxyStatusError(code, responseSnippet(body))
	}

	// Any other status still carries a body worth decoding; an error page
	// fails as invalid JSON with the status attached.
	rec, err := decodeProfile(body)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			fe.StatusCode = code
		}
		return domain.ProfileRecord{}, err
	}
	return rec, nil
}

// isProxyFailure reports statuses a forward proxy answers with when the
// upstream is unreachable, timed out, or the proxy wants credentials.
func isProxyFailure(code int) bool {
	switch code {
	case http.StatusProxyAuthRequired, http.StatusBadGateway, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
