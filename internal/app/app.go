package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/samvad-hq/profile-fetcher/internal/config"
	"github.com/samvad-hq/profile-fetcher/internal/domain"
	"github.com/samvad-hq/profile-fetcher/internal/logger"
	"github.com/samvad-hq/profile-fetcher/internal/pipeline"
	"github.com/samvad-hq/profile-fetcher/pkg/httpclient"
	"github.com/samvad-hq/profile-fetcher/pkg/profile"
	"github.com/samvad-hq/profile-fetcher/pkg/publishers"
)

// Fetcher is the one-shot runtime behind the profilefetch command. It owns the
// proxy client, the configured sinks and the pipeline that ties them together.
type Fetcher struct {
	cfg     *config.Config
	service *pipeline.Service
	fanout  *publishers.Fanout
	log     logger.Logger
	out     io.Writer
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

// WithOutput redirects the printed record. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(f *Fetcher) {
		if w != nil {
			f.out = w
		}
	}
}

// NewFetcher builds the runtime from config.
func NewFetcher(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Fetcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := httpclient.NewProxyClient(cfg.Proxy(), cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("build proxy client: %w", err)
	}
	log.InfoObj("proxy client ready", "client_meta", map[string]any{
		"proxy":           cfg.Proxy().URL(),
		"timeout_seconds": int(cfg.RequestTimeout.Seconds()),
		"endpoint_host":   domain.EndpointHost(cfg.EndpointURL),
	})

	var headers map[string]string
	if cfg.UserAgent != "" {
		headers = map[string]string{"User-Agent": cfg.UserAgent}
	}
	fetcher := profile.NewFetcher(client, headers)

	fanout, err := buildFanout(ctx, cfg.SinksFile, log)
	if err != nil {
		return nil, err
	}

	var publisher pipeline.EventPublisher
	if fanout != nil {
		publisher = fanout
	}

	f := &Fetcher{
		cfg:     cfg,
		service: pipeline.NewService(fetcher, publisher, log),
		fanout:  fanout,
		log:     log,
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// buildFanout returns nil when no sinks file is configured.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		return nil, nil
	}
	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load sinks registry: %w", err)
	}
	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("sinks registry loaded", "sinks_meta", map[string]any{
		"count": len(summaries),
		"sinks": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

// Run performs one fetch. A fetched record is printed as a single JSON line
// even when publishing to a sink fails afterwards.
func (f *Fetcher) Run(ctx context.Context) error {
	if f == nil || f.service == nil {
		return fmt.Errorf("fetcher is not initialized")
	}
	defer f.closeSinks()

	res, runErr := f.service.Run(ctx, f.cfg.EndpointURL)
	if !res.Fetched {
		return runErr
	}
	if err := json.NewEncoder(f.out).Encode(res.Profile); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return runErr
}

func (f *Fetcher) closeSinks() {
	if f.fanout == nil {
		return
	}
	if err := f.fanout.Close(); err != nil {
		f.log.ErrorObj("sink close failed", "error", err)
	}
}
