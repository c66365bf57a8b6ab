package cmd

import (
	"github.com/spf13/cobra"
)

func NewConfigCmd(root *cobra.Command) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: "Print the configuration assembled from defaults, the config " +
			"file, and MODELRL_* environment variables as YAML.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd, nil)
			if err != nil {
				return err
			}

			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			if err != nil {
				return err
			}

			if validate, _ := cmd.Flags().GetBool("validate"); validate {
				return cfg.Validate()
			}
			return nil
		},
	}
	root.AddCommand(c)
	c.Flags().Bool("validate", false, "Fail if the configuration is invalid")
	return c
}

// register the subcommand into rootCmd
var _ = NewConfigCmd(rootCmd)
