package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drblury/mediacatalog/internal/catalog"
	"github.com/drblury/mediacatalog/internal/runtime/jsoncodec"
	"github.com/drblury/mediacatalog/internal/runtime/logging"
	"github.com/drblury/mediacatalog/internal/stream"
	"github.com/drblury/mediacatalog/provider"
)

// operationArgs is the number of positional arguments each operation takes.
var operationArgs = map[catalog.Operation][]string{
	catalog.OpSearchMovies:          {"text"},
	catalog.OpSearchAudio:           {"text"},
	catalog.OpAudioTracks:           {"album"},
	catalog.OpSearchTelevisionShows: {"text"},
	catalog.OpEpisodes:              {"series", "season"},
	catalog.OpSeries:                {"series"},
}

func operationUsage() string {
	var b strings.Builder
	for _, op := range catalog.Operations() {
		fmt.Fprintf(&b, "  %-24s %s", op.String(), op.Description())
		if names := operationArgs[op]; len(names) > 0 {
			fmt.Fprintf(&b, " (args: %s)", strings.Join(names, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func newQueryCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <operation> [args...]",
		Short: "Run one catalog operation and print its items as JSON lines",
		Long: "Build the configured provider and print every item of one operation, one JSON object per line.\n\nOperations:\n" +
			operationUsage(),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := lookupOperation(args[0])
			if err != nil {
				return err
			}
			if want := len(operationArgs[op]); len(args)-1 != want {
				return fmt.Errorf("%s takes %d argument(s), got %d", op, want, len(args)-1)
			}

			cfg, err := s.load(cmd)
			if err != nil {
				return err
			}
			log, err := s.logger(cmd, cfg)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			built, err := provider.Build(ctx, cfg, logging.NewWatermillAdapter(log))
			if err != nil {
				return err
			}
			defer built.Close()

			c, err := catalog.NewInstrumented(built.Catalog, catalog.InstrumentOptions{
				Provider: cfg.GetBackend(),
				Logger:   log,
				Timeout:  cfg.CallTimeout,
			})
			if err != nil {
				return err
			}
			return runQuery(ctx, c, op, args[1:], cmd.OutOrStdout())
		},
	}
	addStreamFlags(cmd, s)
	return cmd
}

func lookupOperation(name string) (catalog.Operation, error) {
	for _, op := range catalog.Operations() {
		if strings.EqualFold(op.String(), name) {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", name)
}

func runQuery(ctx context.Context, c catalog.Catalog, op catalog.Operation, args []string, w io.Writer) error {
	switch op {
	case catalog.OpMovies:
		return printItems(c.Movies(ctx), w)
	case catalog.OpSearchMovies:
		return printItems(c.SearchMovies(ctx, args[0]), w)
	case catalog.OpAudio:
		return printItems(c.Audio(ctx), w)
	case catalog.OpSearchAudio:
		return printItems(c.SearchAudio(ctx, args[0]), w)
	case catalog.OpAudioTracks:
		return printItems(c.AudioTracks(ctx, args[0]), w)
	case catalog.OpTelevisionShows:
		return printItems(c.TelevisionShows(ctx), w)
	case catalog.OpSearchTelevisionShows:
		return printItems(c.SearchTelevisionShows(ctx, args[0]), w)
	case catalog.OpEpisodes:
		return printItems(catalog.EpisodesArg(ctx, c, args[0], args[1]), w)
	case catalog.OpSeries:
		return printItems(c.Series(ctx, args[0]), w)
	}
	return fmt.Errorf("unsupported operation %s", op)
}

func printItems[T any](s stream.Stream[T], w io.Writer) error {
	return stream.Each(s, func(item T) error {
		return jsoncodec.Encode(w, item)
	})
}
