package domain

import (
	"net"
	"net/url"
	"strconv"
)

// Domain contains core models shared by the fetcher and its collaborators.

// ProxyEndpoint identifies the forward proxy every outbound request goes through.
type ProxyEndpoint struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// URL formats the endpoint as http://host:port/. It does not validate.
func (p ProxyEndpoint) URL() string {
	return "http://" + net.JoinHostPort(p.Host, strconv.Itoa(p.Port)) + "/"
}

// ProfileRecord is the typed projection of a user-info response.
type ProfileRecord struct {
	Username    string `json:"username"`
	TotalFans   int32  `json:"total_fans"`
	TotalVideos int32  `json:"total_videos"`
}

// EndpointHost returns the host[:port] of an endpoint URL. Path and query are
// dropped since the query may carry an access token.
func EndpointHost(endpointURL string) string {
	u, err := url.Parse(endpointURL)
	if err != nil {
		return ""
	}
	return u.Host
}
