package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/samuelfneumann/modelrl/experiment"
	"github.com/samuelfneumann/modelrl/utils/floatutils"
	"github.com/samuelfneumann/modelrl/utils/progressbar"
)

const progressWidth = 40

func NewRunCmd(root *cobra.Command) *cobra.Command {
	c := &cobra.Command{
		Use:   "run",
		Short: "Run the agent in the grid world",
		Long: "Run the agent in the grid world. Without --steps, commands " +
			"are read interactively from stdin. With --steps, the given " +
			"number of ticks is run and a summary printed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd, map[string]string{
				"experiment.steps":            "steps",
				"experiment.checkpoint_every": "checkpoint-every",
				"experiment.rewards_file":     "rewards",
				"environment.seed":            "seed",
			})
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}

			var session *experiment.Online
			if resume, _ := cmd.Flags().GetString("load"); resume != "" {
				session, err = loadSession(resume, cfg, logger)
			} else {
				session, err = newSession(cfg, logger)
			}
			if err != nil {
				return err
			}

			if cfg.Experiment.Steps > 0 {
				return runBatch(cmd, session, cfg.Experiment.Steps, logger)
			}

			colours, _ := cmd.Flags().GetBool("color")
			r := &repl{
				session: session,
				cfg:     cfg,
				colours: colours,
				out:     cmd.OutOrStdout(),
				logger:  logger,
			}
			return r.Run(cmd.InOrStdin())
		},
	}
	root.AddCommand(c)
	c.Flags().Int("steps", 0, "Run this many ticks non-interactively")
	c.Flags().Uint64("seed", 0, "Seed actuator drift")
	c.Flags().Int("checkpoint-every", 0, "Checkpoint the session every this many ticks")
	c.Flags().String("rewards", "", "Save the reward of each tick to this file")
	c.Flags().String("load", "", "Resume the session saved in this file")
	c.Flags().Bool("color", true, "Colour the map")
	return c
}

// runBatch runs steps ticks of session, reporting progress, and saves
// the tracked data
func runBatch(cmd *cobra.Command, session *experiment.Online, steps int,
	logger logrus.FieldLogger) error {
	out := cmd.OutOrStdout()
	bar := progressbar.New(out, progressWidth, steps)

	rewards := make([]float64, 0, steps)
	unconverged := 0
	for i := 0; i < steps; i++ {
		tick, err := session.Tick()
		if err != nil {
			bar.Close()
			return err
		}
		rewards = append(rewards, tick.Reward)
		if !tick.Converged {
			unconverged++
		}

		bar.Increment()
		bar.SetStatus(fmt.Sprintf("reward %.2f", tick.Reward))
		bar.Display()
	}
	bar.Close()

	if err := session.Save(); err != nil {
		return err
	}

	fmt.Fprintf(out, "ticks: %d\n", session.Ticks())
	fmt.Fprintf(out, "mean reward: %.4f\n", stat.Mean(rewards, nil))
	fmt.Fprintf(out, "reward range: [%v, %v]\n", floatutils.Min(rewards...),
		floatutils.Max(rewards...))
	fmt.Fprintf(out, "state: %v\n", session.CurState())
	logger.WithFields(logrus.Fields{
		"ticks":       session.Ticks(),
		"unconverged": unconverged,
	}).Info("run finished")
	return nil
}

// register the subcommand into rootCmd
var _ = NewRunCmd(rootCmd)
