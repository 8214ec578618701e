package main

import (
	"time"

	"github.com/spf13/cobra"

	runtimepkg "github.com/drblury/mediacatalog/internal/runtime"
	"github.com/drblury/mediacatalog/internal/runtime/config"
	"github.com/drblury/mediacatalog/internal/runtime/logging"
)

func newServeCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over REST, SSE and gRPC",
		Long: `Build the configured provider and serve it until interrupted.

Buffered JSON lists are served under the media root, event streams under its
stream segment, and the media.v1 services on the gRPC port. A port of 0
disables that listener.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := s.load(cmd)
			if err != nil {
				return err
			}
			log, err := s.logger(cmd, cfg)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, err := runtimepkg.TryNewService(cfg, log, ctx, runtimepkg.ServiceDependencies{})
			if err != nil {
				return err
			}
			log.Info("Catalog service starting", logging.LogFields{
				"backend":      svc.Capabilities().Name,
				"rest_port":    cfg.RESTPort,
				"grpc_port":    cfg.GRPCPort,
				"metrics_port": metricsPort(cfg),
			})
			return svc.Start(ctx)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&s.restPort, "rest-port", config.DefaultRESTPort, "REST and SSE port, 0 disables")
	flags.IntVar(&s.grpcPort, "grpc-port", config.DefaultGRPCPort, "gRPC port, 0 disables")
	flags.IntVar(&s.metricsPort, "metrics-port", config.DefaultMetricsPort, "Prometheus metrics port")
	flags.BoolVar(&s.metrics, "metrics", false, "Expose Prometheus metrics")
	flags.StringSliceVar(&s.corsOrigins, "cors-origin", nil, "Allowed CORS origin, repeatable")
	addStreamFlags(cmd, s)
	return cmd
}

func addStreamFlags(cmd *cobra.Command, s *settings) {
	flags := cmd.Flags()
	flags.StringVar(&s.callTimeout, "call-timeout", config.DefaultCallTimeout.String(), "Upper bound for one catalog call, 0 disables")
	flags.IntVar(&s.bufferSize, "stream-buffer", config.DefaultStreamBufferSize, "Items buffered ahead of each consumer")
	flags.IntVar(&s.producerPool, "producer-concurrency", config.DefaultProducerConcurrency, "Catalog producers allowed to run at once")
}

func metricsPort(cfg *config.Config) int {
	if !cfg.MetricsEnabled {
		return 0
	}
	return cfg.MetricsPort
}

func parseDuration(raw string) (time.Duration, error) {
	if raw == "0" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}
