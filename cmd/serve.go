package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/modelrl/server"
)

func NewServeCmd(root *cobra.Command) *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve sessions over HTTP",
		Long: "Serve a session over HTTP. POST /simulator creates the grid " +
			"world, GET /next ticks the session, GET /state reports the " +
			"running tuple, and GET /map.png renders the map.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd, map[string]string{
				"server.address":   "address",
				"environment.seed": "seed",
			})
			if err != nil {
				return err
			}
			if err := cfg.Agent.Validate(); err != nil {
				return err
			}

			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return server.New(cfg, logger).ListenAndServe(ctx)
		},
	}
	root.AddCommand(c)
	c.Flags().String("address", "", "Listen on this address")
	c.Flags().Uint64("seed", 0, "Seed actuator drift")
	return c
}

// register the subcommand into rootCmd
var _ = NewServeCmd(rootCmd)
