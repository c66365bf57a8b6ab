package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/modelrl/environment/gridworld"
)

func NewRenderCmd(root *cobra.Command) *cobra.Command {
	c := &cobra.Command{
		Use:   "render",
		Short: "Render the grid world as a PNG image",
		Long: "Render the configured grid world, or the grid world of a " +
			"saved session, as a PNG image.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd, nil)
			if err != nil {
				return err
			}

			var g *gridworld.GridWorld
			if session, _ := cmd.Flags().GetString("session"); session != "" {
				logger, err := newLogger(cmd)
				if err != nil {
					return err
				}
				s, err := loadSession(session, cfg, logger)
				if err != nil {
					return err
				}
				g = s.Environment().(*gridworld.GridWorld)
			} else {
				g, _, err = cfg.Environment.Create()
				if err != nil {
					return err
				}
			}

			output, _ := cmd.Flags().GetString("output")
			cellSize, _ := cmd.Flags().GetInt("cell-size")
			if cellSize <= 0 {
				return fmt.Errorf("cell size must be positive, got %d", cellSize)
			}

			f, err := appFS.Create(output)
			if err != nil {
				return err
			}
			if err := g.EncodePNG(f, cellSize); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "rendered %v\n", output)
			return nil
		},
	}
	root.AddCommand(c)
	c.Flags().StringP("output", "o", "map.png", "Write the image to this file")
	c.Flags().Int("cell-size", 40, "Side length of a cell in pixels")
	c.Flags().String("session", "", "Render the grid world of this saved session")
	return c
}

// register the subcommand into rootCmd
var _ = NewRenderCmd(rootCmd)
