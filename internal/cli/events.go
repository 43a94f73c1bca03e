package cli

import (
	"fmt"

	"github.com/LeJamon/goAMM/internal/config"
	"github.com/LeJamon/goAMM/internal/core/events"
	"github.com/spf13/cobra"
)

func newEventsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect events stored by a SQL event sink",
	}

	var (
		pool  uint32
		limit int
	)

	list := &cobra.Command{
		Use:   "list",
		Short: "List the most recent events, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			var driver, dsn string
			switch cfg.Events.Sink {
			case config.SinkSQLite:
				driver, dsn = events.DriverSQLite, cfg.Events.Path
			case config.SinkPostgres:
				driver, dsn = events.DriverPostgres, cfg.Events.DSN
			default:
				return fmt.Errorf("events sink %q is not queryable; use sqlite or postgres", cfg.Events.Sink)
			}
			if limit <= 0 {
				return fmt.Errorf("limit must be positive")
			}

			sink, err := events.NewSQLSink(cmd.Context(), driver, dsn)
			if err != nil {
				return err
			}
			defer sink.Close()

			rows, err := sink.Recent(cmd.Context(), pool, limit)
			if err != nil {
				return err
			}
			if rows == nil {
				rows = []events.StoredEvent{}
			}
			return printJSON(cmd, rows)
		},
	}
	list.Flags().Uint32Var(&pool, "pool", 0, "only events for this pool (0 = all)")
	list.Flags().IntVar(&limit, "limit", 20, "maximum number of events")

	cmd.AddCommand(list)
	return cmd
}
