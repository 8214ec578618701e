package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/drblury/mediacatalog/internal/catalog"
	configpkg "github.com/drblury/mediacatalog/internal/runtime/config"
	rterrors "github.com/drblury/mediacatalog/internal/runtime/errors"
	loggingpkg "github.com/drblury/mediacatalog/internal/runtime/logging"
	"github.com/drblury/mediacatalog/internal/runtime/resources"
	"github.com/drblury/mediacatalog/internal/server/rest"
	"github.com/drblury/mediacatalog/internal/server/rpc"
	"github.com/drblury/mediacatalog/provider"
)

// ListenFunc opens a listener. net.Listen is the default.
type ListenFunc func(network, address string) (net.Listener, error)

// ServiceDependencies holds the optional collaborators that the Service can use.
// Leave fields nil to take the defaults.
type ServiceDependencies struct {
	// Providers resolves Config.Backend. Defaults to provider.DefaultRegistry.
	Providers *provider.Registry
	// Catalog skips the provider registry and serves this catalog directly.
	// The Service does not close it.
	Catalog catalog.Catalog
	// MetricsRegistry receives the catalog collectors. A fresh registry with
	// the Go and process collectors is created when nil.
	MetricsRegistry *prometheus.Registry
	// Hooks run after the built-in logging and metrics hooks on every call.
	Hooks  catalog.CallHooks
	Tracer trace.Tracer
	// Listen opens the REST, gRPC and metrics listeners.
	Listen ListenFunc
}

// Service wires a catalog provider to its REST, gRPC and metrics listeners.
type Service struct {
	Conf   *configpkg.Config
	Logger loggingpkg.ServiceLogger

	// Catalog is the instrumented catalog every listener serves.
	Catalog *catalog.Instrumented
	Metrics *catalog.Metrics

	provider     provider.Provider
	capabilities provider.Capabilities
	registry     *prometheus.Registry
	rest         *rest.Server
	rpc          *rpc.Server
	listen       ListenFunc

	httpServers   map[int]*http.ServeMux
	httpServersMu sync.Mutex

	addrs   map[string]net.Addr
	addrsMu sync.Mutex
	ready   chan struct{}
}

// NewService constructs a Service for the supplied configuration and panics
// when that fails. Use TryNewService to handle the error.
func NewService(conf *configpkg.Config, log loggingpkg.ServiceLogger, ctx context.Context, deps ServiceDependencies) *Service {
	s, err := TryNewService(conf, log, ctx, deps)
	if err != nil {
		panic(err)
	}
	return s
}

// TryNewService validates conf, builds the configured provider and prepares
// the listeners. Nothing listens until Start.
func TryNewService(conf *configpkg.Config, log loggingpkg.ServiceLogger, ctx context.Context, deps ServiceDependencies) (*Service, error) {
	if log == nil {
		return nil, rterrors.ErrLoggerRequired
	}
	if conf == nil {
		return nil, rterrors.ErrConfigRequired
	}
	if err := rterrors.NewConfigValidationError(conf.Validate()); err != nil {
		return nil, err
	}
	log.Info("Creating catalog service",
		loggingpkg.LogFields{
			"backend": conf.GetBackend(),
			"config":  conf.String(),
		})

	s := &Service{
		Conf:     conf,
		Logger:   log,
		registry: deps.MetricsRegistry,
		listen:   deps.Listen,
		addrs:    make(map[string]net.Addr),
		ready:    make(chan struct{}),
	}
	if s.listen == nil {
		s.listen = net.Listen
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	inner, err := s.buildCatalog(ctx, deps)
	if err != nil {
		return nil, err
	}

	if err := s.wire(inner, deps); err != nil {
		_ = s.provider.Close()
		return nil, err
	}
	return s, nil
}

func (s *Service) buildCatalog(ctx context.Context, deps ServiceDependencies) (catalog.Catalog, error) {
	if deps.Catalog != nil {
		s.capabilities = provider.Capabilities{Name: s.Conf.GetBackend()}
		return deps.Catalog, nil
	}
	registry := deps.Providers
	if registry == nil {
		registry = provider.DefaultRegistry
	}
	built, err := registry.Build(ctx, s.Conf, loggingpkg.NewWatermillAdapter(s.Logger))
	if err != nil {
		return nil, fmt.Errorf("building %s provider: %w", s.Conf.GetBackend(), err)
	}
	s.provider = built
	s.capabilities = registry.GetCapabilities(s.Conf.GetBackend())
	return built.Catalog, nil
}

func (s *Service) wire(inner catalog.Catalog, deps ServiceDependencies) error {
	s.Metrics = catalog.NewMetrics(s.registry)
	if err := s.Metrics.Register(); err != nil {
		return fmt.Errorf("registering catalog metrics: %w", err)
	}

	inst, err := catalog.NewInstrumented(inner, catalog.InstrumentOptions{
		Provider: s.capabilities.Name,
		Logger:   s.Logger,
		Recorder: s.Metrics,
		Hooks:    deps.Hooks,
		Tracer:   deps.Tracer,
		Timeout:  s.Conf.CallTimeout,
	})
	if err != nil {
		return err
	}
	s.Catalog = inst

	s.rest, err = rest.New(rest.Options{
		Catalog:        inst,
		Logger:         s.Logger,
		Paths:          s.Conf.GetPaths(),
		Capabilities:   s.capabilities,
		Metrics:        s.Metrics,
		AllowedOrigins: s.Conf.CORSAllowedOrigins,
		Resources:      resources.NewTracker(),
	})
	if err != nil {
		return err
	}
	s.rpc, err = rpc.New(inst, s.Logger)
	if err != nil {
		return err
	}

	if s.Conf.RESTPort != 0 {
		s.RegisterHTTPHandler(s.Conf.RESTPort, "/", s.rest)
	}
	if s.Conf.MetricsEnabled && s.Conf.MetricsPort != 0 {
		s.RegisterHTTPHandler(s.Conf.MetricsPort, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}))
	}
	return nil
}

// Capabilities describes the backend the service was built with.
func (s *Service) Capabilities() provider.Capabilities { return s.capabilities }

// Handler is the REST API, for mounting in another server or for tests.
func (s *Service) Handler() http.Handler { return s.rest }

// RegisterGRPC adds the media services to r.
func (s *Service) RegisterGRPC(r grpc.ServiceRegistrar) { s.rpc.Register(r) }

// MetricsRegistry is the registry served on /metrics.
func (s *Service) MetricsRegistry() *prometheus.Registry { return s.registry }

// RegisterHTTPHandler mounts handler on the listener for port, creating the
// listener on first use. Call it before Start.
func (s *Service) RegisterHTTPHandler(port int, pattern string, handler http.Handler) {
	s.httpServersMu.Lock()
	defer s.httpServersMu.Unlock()

	if s.httpServers == nil {
		s.httpServers = make(map[int]*http.ServeMux)
	}

	mux, ok := s.httpServers[port]
	if !ok {
		mux = http.NewServeMux()
		s.httpServers[port] = mux
	}

	mux.Handle(pattern, handler)
}

// Ready is closed once every listener is bound.
func (s *Service) Ready() <-chan struct{} { return s.ready }

// Addr returns the bound address of a listener ("grpc" or "http:<port>"),
// valid after Ready is closed.
func (s *Service) Addr(name string) net.Addr {
	s.addrsMu.Lock()
	defer s.addrsMu.Unlock()
	return s.addrs[name]
}

func (s *Service) bind(name, address string) (net.Listener, error) {
	lis, err := s.listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listening on %s for %s: %w", address, name, err)
	}
	s.addrsMu.Lock()
	s.addrs[name] = lis.Addr()
	s.addrsMu.Unlock()
	return lis, nil
}

type boundHTTP struct {
	server *http.Server
	lis    net.Listener
}

// Start serves every listener until ctx is cancelled, then shuts them down
// within the configured shutdown timeout and releases the provider. A listener
// failing stops the others and is returned. Start may be called once.
func (s *Service) Start(ctx context.Context) error {
	defer func() {
		if err := s.provider.Close(); err != nil {
			s.Logger.Error("Failed to close provider", err, nil)
		}
	}()

	httpServers, grpcServer, grpcLis, err := s.bindAll()
	if err != nil {
		return err
	}
	close(s.ready)

	g, gctx := errgroup.WithContext(ctx)
	for _, bound := range httpServers {
		// Open event streams end with the service instead of holding shutdown open.
		bound.server.BaseContext = func(net.Listener) context.Context { return gctx }
		g.Go(func() error {
			s.Logger.Info("Starting HTTP server", loggingpkg.LogFields{"address": bound.lis.Addr().String()})
			if err := bound.server.Serve(bound.lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server %s: %w", bound.lis.Addr(), err)
			}
			return nil
		})
	}
	if grpcServer != nil {
		g.Go(func() error {
			s.Logger.Info("Starting gRPC server", loggingpkg.LogFields{"address": grpcLis.Addr().String()})
			if err := grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server %s: %w", grpcLis.Addr(), err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		s.shutdown(httpServers, grpcServer)
		return nil
	})
	return g.Wait()
}

func (s *Service) bindAll() ([]boundHTTP, *grpc.Server, net.Listener, error) {
	s.httpServersMu.Lock()
	ports := make([]int, 0, len(s.httpServers))
	for port := range s.httpServers {
		ports = append(ports, port)
	}
	s.httpServersMu.Unlock()
	sort.Ints(ports)

	var bound []boundHTTP
	closeAll := func() {
		for _, b := range bound {
			_ = b.lis.Close()
		}
	}
	for _, port := range ports {
		lis, err := s.bind(fmt.Sprintf("http:%d", port), fmt.Sprintf(":%d", port))
		if err != nil {
			closeAll()
			return nil, nil, nil, err
		}
		bound = append(bound, boundHTTP{
			// No WriteTimeout: event streams stay open for as long as the catalog produces.
			server: &http.Server{
				Handler:           s.httpServers[port],
				ReadHeaderTimeout: 10 * time.Second,
				IdleTimeout:       2 * time.Minute,
			},
			lis: lis,
		})
	}

	if s.Conf.GRPCPort == 0 {
		return bound, nil, nil, nil
	}
	lis, err := s.bind("grpc", fmt.Sprintf(":%d", s.Conf.GRPCPort))
	if err != nil {
		closeAll()
		return nil, nil, nil, err
	}
	grpcServer := grpc.NewServer(rpc.ServerOptions(s.Logger)...)
	s.rpc.Register(grpcServer)
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	return bound, grpcServer, lis, nil
}

func (s *Service) shutdown(httpServers []boundHTTP, grpcServer *grpc.Server) {
	timeout := s.Conf.GetShutdownTimeout()
	s.Logger.Info("Shutting down catalog service", loggingpkg.LogFields{"timeout": timeout.String()})
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, bound := range httpServers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := bound.server.Shutdown(ctx); err != nil {
				s.Logger.Error("HTTP server did not shut down cleanly", err, loggingpkg.LogFields{"address": bound.lis.Addr().String()})
				_ = bound.server.Close()
			}
		}()
	}
	if grpcServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stopped := make(chan struct{})
			go func() {
				grpcServer.GracefulStop()
				close(stopped)
			}()
			select {
			case <-stopped:
			case <-ctx.Done():
				s.Logger.Info("Forcing gRPC server stop", nil)
				grpcServer.Stop()
			}
		}()
	}
	wg.Wait()
}
