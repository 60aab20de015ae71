package publishers

import (
	"time"

	"github.com/samvad-hq/profile-fetcher/internal/domain"
)

// Event is the payload delivered to sinks after a successful fetch.
// Source is the endpoint host only; the full endpoint URL can carry a token.
type Event struct {
	Source    string               `json:"source"`
	Profile   domain.ProfileRecord `json:"profile"`
	FetchedAt time.Time            `json:"fetched_at"`
}

// NewEvent constructs an Event for the given source host + profile.
func NewEvent(source string, profile domain.ProfileRecord) Event {
	return Event{
		Source:    source,
		Profile:   profile,
		FetchedAt: time.Now().UTC(),
	}
}

// attributes are attached as message attributes by queue and topic sinks.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"source":   e.Source,
		"username": e.Profile.Username,
	}
}
