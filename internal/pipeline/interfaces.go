package pipeline

import (
	"context"

	"github.com/samvad-hq/profile-fetcher/internal/domain"
	"github.com/samvad-hq/profile-fetcher/pkg/publishers"
)

// ProfileFetcher retrieves one profile record from an endpoint.
type ProfileFetcher interface {
	Fetch(ctx context.Context, endpointURL string) (domain.ProfileRecord, error)
}

// EventPublisher delivers events downstream and reports how many sinks accepted them.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
