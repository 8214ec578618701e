// Package remotesse provides a catalog that consumes the event-stream routes
// of another catalog service. Each call is one GET whose events are decoded
// as they arrive; the END_OF_STREAM and ERROR_MARKER events end the stream.
package remotesse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/drblury/mediacatalog/internal/catalog"
	"github.com/drblury/mediacatalog/internal/media"
	rterrors "github.com/drblury/mediacatalog/internal/runtime/errors"
	"github.com/drblury/mediacatalog/internal/runtime/jsoncodec"
	"github.com/drblury/mediacatalog/internal/routes"
	"github.com/drblury/mediacatalog/internal/stream"
	"github.com/drblury/mediacatalog/internal/transcode"
	"github.com/drblury/mediacatalog/provider"
)

// ProviderName is the name used to register this provider.
const ProviderName = "sse"

// DefaultTimeout bounds connecting and waiting for response headers. The body
// itself may stream for as long as the remote keeps sending.
const DefaultTimeout = 30 * time.Second

// StreamIDHeader carries the caller's stream id to the remote service.
const StreamIDHeader = "X-Stream-ID"

func init() {
	provider.RegisterWithCapabilities(ProviderName, Build, provider.RemoteSSECapabilities)
}

// Build creates the provider from cfg.GetRemoteSSEURL.
func Build(ctx context.Context, cfg provider.Config, logger watermill.LoggerAdapter) (provider.Provider, error) {
	c, err := New(Config{
		BaseURL: cfg.GetRemoteSSEURL(),
		Paths:   cfg.GetPaths(),
		Timeout: cfg.GetRemoteTimeout(),
	}, provider.StreamOptions(cfg, stream.NewPool(cfg.GetProducerConcurrency()))...)
	if err != nil {
		return provider.Provider{}, err
	}
	logger.Info("Remote event-stream catalog configured", watermill.LogFields{"url": c.base.Redacted()})
	return provider.Provider{
		Catalog: c,
		Closer: provider.CloserFunc(func() error {
			c.client.CloseIdleConnections()
			return nil
		}),
	}, nil
}

// Capabilities returns the capabilities of this provider.
func Capabilities() provider.Capabilities {
	return provider.RemoteSSECapabilities
}

// Config holds remote SSE settings.
type Config struct {
	// BaseURL is the scheme and host of the remote service, for example
	// http://catalog:8080. Paths are resolved against it.
	BaseURL string
	// Paths must match the route layout of the remote service.
	Paths routes.Paths
	// Timeout bounds connecting and receiving response headers.
	Timeout time.Duration
	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	c.Paths = c.Paths.WithDefaults()
	return c
}

// Catalog is a catalog.Catalog backed by a remote event stream.
type Catalog struct {
	base   *url.URL
	prefix string
	paths  routes.Paths
	client *http.Client
	opts   []stream.Option
}

var _ catalog.Catalog = (*Catalog)(nil)

// New validates cfg and returns the catalog.
func New(cfg Config, opts ...stream.Option) (*Catalog, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("remote SSE base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid remote SSE base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid remote SSE base URL %q: scheme must be http or https", cfg.BaseURL)
	}
	cfg = cfg.withDefaults()

	client := cfg.Client
	if client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.DialContext = (&net.Dialer{Timeout: cfg.Timeout}).DialContext
		transport.ResponseHeaderTimeout = cfg.Timeout
		client = &http.Client{Transport: transport}
	}
	base.RawQuery, base.Fragment = "", ""
	return &Catalog{
		base:   base,
		prefix: strings.TrimSuffix(base.String(), "/"),
		paths:  cfg.Paths,
		client: client,
		opts:   opts,
	}, nil
}

func fetch[T any](c *Catalog, ctx context.Context, op catalog.Operation, args ...string) stream.Stream[T] {
	target := c.prefix + c.paths.Path(op, true, args...)

	return stream.New(ctx, func(ctx context.Context, emit stream.Emit[T]) error {
		body, err := c.open(ctx, target)
		if err != nil {
			return err
		}
		defer body.Close()

		events := transcode.NewEventReader(body)
		for {
			ev, err := events.Next()
			if errors.Is(err, io.EOF) {
				return rterrors.Unavailable(ProviderName, rterrors.ErrStreamTruncated)
			}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return rterrors.Unavailable(ProviderName, err)
			}

			switch ev.ID {
			case transcode.EndOfStreamID:
				return nil
			case transcode.ErrorMarkerID:
				return &rterrors.RemoteStreamError{Message: ev.Data}
			}

			var item T
			if err := jsoncodec.UnmarshalString(ev.Data, &item); err != nil {
				return fmt.Errorf("decoding %s event %s: %w", ev.Name, ev.ID, err)
			}
			if err := emit(item); err != nil {
				return err
			}
		}
	}, c.opts...)
}

func (c *Catalog) open(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	if id, ok := catalog.StreamID(ctx); ok {
		req.Header.Set(StreamIDHeader, id)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, rterrors.Unavailable(ProviderName, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, rterrors.Unavailable(ProviderName,
			fmt.Errorf("GET %s: unexpected status %s: %s", req.URL.Redacted(), resp.Status, strings.TrimSpace(string(snippet))))
	}
	return resp.Body, nil
}

func (c *Catalog) Movies(ctx context.Context) stream.Stream[media.Movie] {
	return fetch[media.Movie](c, ctx, catalog.OpMovies)
}

func (c *Catalog) SearchMovies(ctx context.Context, text string) stream.Stream[media.Movie] {
	return fetch[media.Movie](c, ctx, catalog.OpSearchMovies, text)
}

func (c *Catalog) Audio(ctx context.Context) stream.Stream[media.Audio] {
	return fetch[media.Audio](c, ctx, catalog.OpAudio)
}

func (c *Catalog) SearchAudio(ctx context.Context, text string) stream.Stream[media.Audio] {
	return fetch[media.Audio](c, ctx, catalog.OpSearchAudio, text)
}

func (c *Catalog) AudioTracks(ctx context.Context, album string) stream.Stream[media.Audio] {
	return fetch[media.Audio](c, ctx, catalog.OpAudioTracks, album)
}

func (c *Catalog) TelevisionShows(ctx context.Context) stream.Stream[media.TelevisionShow] {
	return fetch[media.TelevisionShow](c, ctx, catalog.OpTelevisionShows)
}

func (c *Catalog) SearchTelevisionShows(ctx context.Context, text string) stream.Stream[media.TelevisionShow] {
	return fetch[media.TelevisionShow](c, ctx, catalog.OpSearchTelevisionShows, text)
}

func (c *Catalog) Episodes(ctx context.Context, series string, season int) stream.Stream[media.TelevisionShow] {
	return fetch[media.TelevisionShow](c, ctx, catalog.OpEpisodes, series, strconv.Itoa(season))
}

func (c *Catalog) Series(ctx context.Context, series string) stream.Stream[media.TelevisionShow] {
	return fetch[media.TelevisionShow](c, ctx, catalog.OpSeries, series)
}
