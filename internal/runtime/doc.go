/*
Package runtime hosts a media catalog behind its network listeners.

# Architecture Overview

A Service resolves the configured backend through the provider registry,
wraps the resulting catalog with timing, logging and tracing, and serves that
one instrumented catalog over every transport it starts.

# Package Structure

## Core Service (service.go)

The Service struct is the central orchestrator that wires together:
  - The catalog provider built from Config.Backend
  - The instrumented catalog and its Prometheus metrics
  - The REST router (buffered JSON and Server-Sent Events)
  - The gRPC server with the Movies, Audio and TelevisionShows services
  - A /metrics listener when metrics are enabled

Start binds every listener, serves until the context is cancelled and then
shuts the listeners down within Config.ShutdownTimeout before closing the
provider.

# Sub-packages

  - config/: Service configuration with YAML, environment overrides and validation
  - errors/: Sentinel errors and error types shared by providers and transports
  - ids/: ULID stream identifiers
  - jsoncodec/: JSON marshaling utilities
  - logging/: Logger interface and adapters
  - resources/: Process usage sampling for the health endpoint

# Usage Example

	cfg := mediacatalog.DefaultConfig()
	cfg.Backend = "sqlite"
	cfg.SQLiteFile = "catalog.db"
	cfg.DatasetDir = "./data"

	svc, err := mediacatalog.TryNewService(&cfg, logger, ctx, mediacatalog.ServiceDependencies{})
	if err != nil {
		return err
	}
	return svc.Start(ctx)
*/
package runtime
