// Package mediacatalog serves a read-only catalog of movies, audio tracks and
// television episodes as lazy streams. Every catalog call returns a Stream that
// produces items one at a time and ends either normally or with a single
// terminal error; closing it early releases whatever the backend holds open.
//
// Service reads the backend from Config, wraps it with timing, logging and
// tracing, and serves the same catalog three ways: buffered JSON lists under
// /media, Server-Sent Events under /media/stream, and server-streaming gRPC
// services (media.v1.Movies, media.v1.Audio, media.v1.TelevisionShows). A
// minimal setup therefore involves filling Config, creating a Service, and
// calling Start.
//
// # Providers
//
// Five backends are registered when this package is imported:
//   - memory: filters a CSV dataset loaded at startup
//   - postgres: streams rows from PostgreSQL through a cursor
//   - sqlite: the same queries against an embedded SQLite file
//   - sse: consumes the event-stream endpoints of another catalog service
//   - grpc: consumes the gRPC services of another catalog service
//
// Remote providers map the remote terminal event or status back into the same
// errors a local provider would report, so services can be chained.
//
// # Errors
//
// An unreachable store becomes ProviderUnavailableError (HTTP 400 with the
// cause text, SSE ERROR_MARKER, gRPC Unavailable); a malformed parameter such
// as a non-numeric season becomes MalformedRequestError (gRPC InvalidArgument).
// Errors raised after items were delivered end the stream instead of
// replacing it.
//
// When you need more control, ServiceDependencies lets you bring a catalog of
// your own, a provider registry, call hooks, a tracer, or a Prometheus registry.
package mediacatalog
