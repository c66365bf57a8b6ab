package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/modelrl/experiment/trackers"
)

func NewPlotCmd(root *cobra.Command) *cobra.Command {
	c := &cobra.Command{
		Use:   "plot REWARDS",
		Short: "Plot the rewards saved by a run",
		Long: "Plot the rewards saved by a run with --rewards as an HTML " +
			"line chart of the reward and running mean reward of each tick.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := trackers.LoadData(appFS, args[0])
			if err != nil {
				return err
			}

			output, _ := cmd.Flags().GetString("output")
			title, _ := cmd.Flags().GetString("title")
			if title == "" {
				title = args[0]
			}

			f, err := appFS.Create(output)
			if err != nil {
				return err
			}
			if err := trackers.Plot(f, title, data); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "plotted %d rewards to %v\n",
				len(data), output)
			return nil
		},
	}
	root.AddCommand(c)
	c.Flags().StringP("output", "o", "rewards.html", "Write the chart to this file")
	c.Flags().String("title", "", "Title of the chart")
	return c
}

// register the subcommand into rootCmd
var _ = NewPlotCmd(rootCmd)
