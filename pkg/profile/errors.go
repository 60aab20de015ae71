package profile

import (
	"errors"
	"fmt"
	"net/url"
)

// Kind names the stage of a fetch that failed.
type Kind int

const (
	KindTransport Kind = iota + 1
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Sentinels matched by FetchError through errors.Is.
var (
	ErrTransport = errors.New("profile fetch transport failure")
	ErrDecode    = errors.New("profile fetch decode failure")
)

// Decode reasons.
const (
	ReasonInvalidJSON        = "invalid JSON"
	ReasonMissingData        = "missing data object"
	ReasonFanCountRange      = "fan count out of range"
	ReasonVideoCountRange    = "video count out of range"
	reasonMalformedFieldStem = "missing or malformed field: "
)

// FetchError is returned for every failed fetch. Field is set for decode
// failures caused by a specific field of the data object. StatusCode is set
// whenever a response was received.
type FetchError struct {
	Kind       Kind
	Reason     string
	Field      string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("profile %s error: %s", e.Kind, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrDecode:
		return e.Kind == KindDecode
	}
	return false
}

// transportError keeps the cause but drops the query from any *url.Error,
// since the endpoint query can carry an access token.
func transportError(err error) *FetchError {
	var ue *url.Error
	if errors.As(err, &ue) {
		err = &url.Error{Op: ue.Op, URL: redactQuery(ue.URL), Err: ue.Err}
	}
	return &FetchError{Kind: KindTransport, Reason: "request failed", Err: err}
}

func redactQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}
	if u.RawQuery != "" {
		u.RawQuery = "redacted"
	}
	u.User = nil
	u.Fragment = ""
	return u.String()
}

// proxyStatusError reports a response the proxy produced itself because it
// could not reach or authenticate to the upstream.
func proxyStatusError(code int, snippet string) *FetchError {
	return &FetchError{
		Kind:       KindTransport,
		Reason:     fmt.Sprintf("proxy returned status %d: %s", code, snippet),
		StatusCode: code,
	}
}

func decodeError(reason string) *FetchError {
	return &FetchError{Kind: KindDecode, Reason: reason}
}

func fieldError(field string) *FetchError {
	return &FetchError{Kind: KindDecode, Reason: reasonMalformedFieldStem + field, Field: field}
}

func rangeError(field, reason string) *FetchError {
	return &FetchError{Kind: KindDecode, Reason: reason, Field: field}
}
