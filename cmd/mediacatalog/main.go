// Command mediacatalog serves, seeds and queries a media catalog.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/drblury/mediacatalog/internal/runtime/config"
	"github.com/drblury/mediacatalog/internal/runtime/logging"
	_ "github.com/drblury/mediacatalog/provider/providers"
)

// Build information, set with -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// settings collects the flags shared by every command. Flags override the
// config file and the environment only when they are set explicitly.
type settings struct {
	configFile   string
	backend      string
	datasetDir   string
	postgresURL  string
	sqliteFile   string
	remoteSSE    string
	remoteGRPC   string
	logLevel     string
	logFormat    string
	restPort     int
	grpcPort     int
	metricsPort  int
	metrics      bool
	corsOrigins  []string
	callTimeout  string
	bufferSize   int
	producerPool int
}

func newRootCmd() *cobra.Command {
	root, _ := newRoot()
	return root
}

func newRoot() (*cobra.Command, *settings) {
	s := &settings{}
	root := &cobra.Command{
		Use:           "mediacatalog",
		Short:         "Media catalog streaming service",
		Long:          "Serve a catalog of movies, audio and television episodes over REST, Server-Sent Events and gRPC.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				printVersionInfo(cmd)
				return nil
			}
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&s.configFile, "config", "", "Path to a YAML config file")
	flags.StringVar(&s.backend, "backend", "", "Catalog provider: memory, postgres, sqlite, sse or grpc")
	flags.StringVar(&s.datasetDir, "dataset", "", "Directory holding movies.csv, audio.csv and tv.csv")
	flags.StringVar(&s.postgresURL, "postgres-url", "", "PostgreSQL connection string")
	flags.StringVar(&s.sqliteFile, "sqlite-file", "", "SQLite database file")
	flags.StringVar(&s.remoteSSE, "remote-sse-url", "", "Base URL of a remote catalog's REST API")
	flags.StringVar(&s.remoteGRPC, "remote-grpc-address", "", "Address of a remote catalog's gRPC services")
	flags.StringVar(&s.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&s.logFormat, "log-format", "", "Log format: json or text")
	root.Flags().Bool("version", false, "Show version information and exit")

	root.AddCommand(newServeCmd(s), newSeedCmd(s), newQueryCmd(s), newVersionCmd())
	return root, s
}

func printVersionInfo(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "mediacatalog %s (commit %s, built %s)\n", Version, GitCommit, BuildTime)
	fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
	fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersionInfo(cmd)
		},
	}
}

// load resolves the config: defaults, then the config file, then
// MEDIACATALOG_* variables, then explicit flags.
func (s *settings) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if s.configFile != "" {
		loaded, err := config.LoadFile(s.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(config.EnvPrefix); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	str := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
		}
	}
	num := func(name string, dst *int, value int) {
		if flags.Changed(name) {
			*dst = value
		}
	}
	str("backend", &cfg.Backend, s.backend)
	str("dataset", &cfg.DatasetDir, s.datasetDir)
	str("postgres-url", &cfg.PostgresURL, s.postgresURL)
	str("sqlite-file", &cfg.SQLiteFile, s.sqliteFile)
	str("remote-sse-url", &cfg.RemoteSSEURL, s.remoteSSE)
	str("remote-grpc-address", &cfg.RemoteGRPCAddress, s.remoteGRPC)
	str("log-level", &cfg.LogLevel, s.logLevel)
	str("log-format", &cfg.LogFormat, s.logFormat)
	num("rest-port", &cfg.RESTPort, s.restPort)
	num("grpc-port", &cfg.GRPCPort, s.grpcPort)
	num("metrics-port", &cfg.MetricsPort, s.metricsPort)
	num("stream-buffer", &cfg.StreamBufferSize, s.bufferSize)
	num("producer-concurrency", &cfg.ProducerConcurrency, s.producerPool)
	if flags.Changed("metrics") {
		cfg.MetricsEnabled = s.metrics
	}
	if flags.Changed("cors-origin") {
		cfg.CORSAllowedOrigins = s.corsOrigins
	}
	if flags.Changed("call-timeout") {
		d, err := parseDuration(s.callTimeout)
		if err != nil {
			return nil, fmt.Errorf("--call-timeout: %w", err)
		}
		cfg.CallTimeout = d
	}
	return &cfg, nil
}

func (s *settings) logger(cmd *cobra.Command, cfg *config.Config) (logging.ServiceLogger, error) {
	return logging.New(cmd.ErrOrStderr(), cfg.LogFormat, cfg.LogLevel)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
