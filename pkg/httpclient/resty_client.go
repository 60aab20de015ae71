package httpclient

import (
	"context"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/profile-fetcher/internal/domain"
)

// DefaultTimeout bounds a whole request (connect, proxy handshake and body read).
const DefaultTimeout = 15 * time.Second

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewProxyClient creates a RestyClient whose only egress route is the given forward proxy.
// The proxy replaces any environment proxy settings and applies to every URL scheme.
func NewProxyClient(proxy domain.ProxyEndpoint, timeout time.Duration) (*RestyClient, error) {
	proxyURL, err := ProxyURL(proxy)
	if err != nil {
		return nil, err
	}

	c := newRestyBaseClient(timeout)
	c.SetProxy(proxyURL.String())
	if !c.IsProxySet() {
		// resty only logs SetProxy failures, so check the outcome explicitly.
		return nil, &ConfigError{Proxy: proxy, Reason: "proxy could not be attached to transport"}
	}
	return &RestyClient{client: c}, nil
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

func newRestyBaseClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// ProxyURL validates the endpoint and returns its parsed http://host:port/ form.
func ProxyURL(proxy domain.ProxyEndpoint) (*url.URL, error) {
	host := strings.TrimSpace(proxy.Host)
	if host == "" {
		return nil, &ConfigError{Proxy: proxy, Reason: "host is empty"}
	}
	bracketed := strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]")
	if bracketed {
		host = host[1 : len(host)-1]
	}
	if strings.ContainsAny(host, "[]") {
		return nil, &ConfigError{Proxy: proxy, Reason: "unbalanced brackets in host"}
	}
	// A colon is only valid inside an IPv6 literal; anything else is a host:port
	// pair that JoinHostPort would silently bracket.
	isIPv6 := strings.Contains(host, ":") && net.ParseIP(host) != nil
	if strings.Contains(host, ":") && !isIPv6 {
		return nil, &ConfigError{Proxy: proxy, Reason: "host must not include a port"}
	}
	if bracketed && !isIPv6 {
		return nil, &ConfigError{Proxy: proxy, Reason: "brackets are only allowed around an IPv6 address"}
	}
	if proxy.Port < 1 || proxy.Port > 65535 {
		return nil, &ConfigError{Proxy: proxy, Reason: "port must be in [1, 65535]"}
	}

	normalized := domain.ProxyEndpoint{Host: host, Port: proxy.Port}
	u, err := url.Parse(normalized.URL())
	if err != nil {
		return nil, &ConfigError{Proxy: proxy, Reason: "unparseable url", Err: err}
	}
	// Characters such as '/', '@' or '?' in the host survive formatting but move
	// parts of it into other URL components.
	if u.User != nil || u.Hostname() != host || u.Port() != strconv.Itoa(proxy.Port) || u.Path != "/" || u.RawQuery != "" || u.Fragment != "" {
		return nil, &ConfigError{Proxy: proxy, Reason: "host is not a plain hostname or address"}
	}
	return u, nil
}

// Get performs an HTTP GET request with the specified context, URL, and headers.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
