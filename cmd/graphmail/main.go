// The graphmail command searches and incrementally synchronizes a
// remote mailbox from the command line.
package main

import (
	"os"

	"github.com/mwhelan/graphmail/internal/config"
	"github.com/mwhelan/graphmail/internal/graph"
	"github.com/mwhelan/graphmail/internal/graphhttp"
	"github.com/mwhelan/graphmail/internal/tracehttp"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagTrace   bool
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:           "graphmail",
		Short:         "Search and synchronize a remote mailbox",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if flagVerbose || flagTrace {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		},
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "graphmail.yaml", "path to the config file")
	root.PersistentFlags().BoolVar(&flagTrace, "trace", false, "dump requests and responses")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newSearchCmd(), newSyncCmd())

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("failed")
	}
}

// newService wires the configured, authenticated transport.
func newService(cmd *cobra.Command) (*graph.Service, *config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to load configuration")
	}
	httpClient, err := graphhttp.New(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to initialize HTTP client")
	}
	if flagTrace {
		tracehttp.WrapClient(httpClient, log.Logger)
	}

	opts := []graph.Option{graph.WithLogger(log.Logger)}
	if cfg.BaseURL != "" {
		opts = append(opts, graph.WithBaseURL(cfg.BaseURL))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, graph.WithRateLimit(cfg.RateLimit, int(cfg.RateLimit)*2+1))
	}
	return graph.New(httpClient, opts...), cfg, nil
}
