package httpclient

import (
	"errors"
	"fmt"

	"github.com/samvad-hq/profile-fetcher/internal/domain"
)

// ErrInvalidProxyURL is matched by every ConfigError.
var ErrInvalidProxyURL = errors.New("invalid proxy url")

// ConfigError reports a proxy endpoint that cannot be turned into a usable proxy URL.
// It is returned before any network activity takes place.
type ConfigError struct {
	Proxy  domain.ProxyEndpoint
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("%s %s:%d: %s", ErrInvalidProxyURL, e.Proxy.Host, e.Proxy.Port, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidProxyURL }
func (e *ConfigError) Unwrap() error        { return e.Err }
