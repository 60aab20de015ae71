package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/profile-fetcher/internal/domain"
	"github.com/samvad-hq/profile-fetcher/internal/logger"
	"github.com/samvad-hq/profile-fetcher/pkg/profile"
	"github.com/samvad-hq/profile-fetcher/pkg/publishers"
)

// Result is the outcome of one pipeline run.
type Result struct {
	Profile   domain.ProfileRecord
	Fetched   bool
	Delivered int
}

// Service runs fetch, log and publish for a single endpoint.
type Service struct {
	fetcher   ProfileFetcher
	publisher EventPublisher
	log       logger.Logger
}

// NewService wires a pipeline. publisher may be nil when no sinks are configured.
func NewService(fetcher ProfileFetcher, publisher EventPublisher, log logger.Logger) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		fetcher:   fetcher,
		publisher: publisher,
		log:       log,
	}
}

// Run fetches the profile once. Fetch failures are returned as-is and nothing
// is published. Publish failures come back alongside the fetched profile.
func (s *Service) Run(ctx context.Context, endpointURL string) (Result, error) {
	if s == nil || s.fetcher == nil {
		return Result{}, fmt.Errorf("pipeline service is not initialized")
	}

	source := domain.EndpointHost(endpointURL)
	start := time.Now()

	rec, err := s.fetcher.Fetch(ctx, endpointURL)
	if err != nil {
		s.log.ErrorObj("profile fetch failed", "fetch_error", fetchErrorFields(source, err))
		return Result{}, err
	}
	s.log.InfoObj("profile fetched", "fetch_result", map[string]any{
		"source":       source,
		"username":     rec.Username,
		"total_fans":   rec.TotalFans,
		"total_videos": rec.TotalVideos,
		"elapsed_ms":   time.Since(start).Milliseconds(),
	})

	res := Result{Profile: rec, Fetched: true}
	if s.publisher == nil {
		return res, nil
	}

	delivered, err := s.publisher.Publish(ctx, publishers.NewEvent(source, rec))
	res.Delivered = delivered
	if err != nil {
		s.log.WarnObj("profile publish incomplete", "publish_result", map[string]any{
			"delivered": delivered,
			"error":     err.Error(),
		})
		return res, fmt.Errorf("publish profile: %w", err)
	}
	s.log.InfoObj("profile published", "publish_result", map[string]any{"delivered": delivered})
	return res, nil
}

func fetchErrorFields(source string, err error) map[string]any {
	fields := map[string]any{
		"source": source,
		"error":  err.Error(),
	}
	var fe *profile.FetchError
	if errors.As(err, &fe) {
		fields["stage"] = fe.Kind.String()
		if fe.Field != "" {
			fields["field"] = fe.Field
		}
		if fe.StatusCode != 0 {
			fields["status"] = fe.StatusCode
		}
	}
	return fields
}
