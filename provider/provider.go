// Package provider defines how catalog backends are configured and built.
// Each backend (memory, relational, remote SSE, remote gRPC) lives in its own
// sub-package and registers itself with the provider registry in init.
package provider

import (
	"context"
	"io"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/drblury/mediacatalog/internal/catalog"
	"github.com/drblury/mediacatalog/internal/routes"
	"github.com/drblury/mediacatalog/internal/stream"
)

// Provider is a built backend: the catalog plus whatever must be released on
// shutdown (connection pools, database handles, client connections).
type Provider struct {
	Catalog catalog.Catalog
	Closer  io.Closer
}

// Close releases the provider's resources. It is safe on a zero Provider.
func (p Provider) Close() error {
	if p.Closer == nil {
		return nil
	}
	return p.Closer.Close()
}

// Builder creates a provider from config.
type Builder func(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (Provider, error)

// Config exposes the settings providers read. It lets backends depend on
// this package alone rather than on the full config package.
type Config interface {
	// GetBackend returns the provider name to build.
	GetBackend() string

	// Memory
	GetDatasetDir() string

	// Relational
	GetPostgresURL() string
	GetSQLiteFile() string

	// Remote
	GetRemoteSSEURL() string
	GetRemoteGRPCAddress() string
	GetRemoteTimeout() time.Duration
	GetPaths() routes.Paths

	// Streaming
	GetStreamBufferSize() int
	GetProducerConcurrency() int
}

// StreamOptions turns the streaming settings of cfg into options for stream.New,
// backed by a pool sized from GetProducerConcurrency.
func StreamOptions(cfg Config, pool *stream.Pool) []stream.Option {
	opts := []stream.Option{stream.WithPool(pool)}
	if n := cfg.GetStreamBufferSize(); n > 0 {
		opts = append(opts, stream.WithBuffer(n))
	}
	return opts
}

// Closers combines several closers; Close runs them all and returns the first error.
type Closers []io.Closer

func (c Closers) Close() error {
	var first error
	for _, closer := range c {
		if closer == nil {
			continue
		}
		if err := closer.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// CloserFunc adapts a function to io.Closer.
type CloserFunc func() error

func (f CloserFunc) Close() error { return f() }
