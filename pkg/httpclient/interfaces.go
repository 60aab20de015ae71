package httpclient

import "context"

// Response is what the fetcher needs back from a round trip: the fully read body and the status.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client issues GET requests. RestyClient is the proxy-bound implementation;
// tests substitute stubs.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}
