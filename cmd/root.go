// Package cmd implements the modelrl command line interface
package cmd

import (
	"io"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/twpayne/go-vfs"

	"github.com/samuelfneumann/modelrl/config"
)

// appFS is the filesystem that every command reads and writes
var appFS vfs.FS = vfs.OSFS

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modelrl",
		Short: "Model-based reinforcement learning on an obstacle grid world",
		Long: "modelrl runs a tabular model-based agent, which learns " +
			"transition and reward models and acts greedily on the values " +
			"found by value iteration, in a grid world with noisy actuators " +
			"and range limited obstacle sensors.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String("config", "", "Set config file")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	cmd.PersistentFlags().String("logfile", "", "Set logfile")
	cmd.PersistentFlags().Bool("quiet", false, "Do not output logs to stderr")
	_ = viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", cmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("logfile", cmd.PersistentFlags().Lookup("logfile"))
	_ = viper.BindPFlag("quiet", cmd.PersistentFlags().Lookup("quiet"))
	return cmd
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = NewRootCmd()

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// readConfig loads the configuration from the --config file, MODELRL_*
// environment variables, and the flags of cmd named in flags, which maps
// configuration keys to flag names
func readConfig(cmd *cobra.Command, flags map[string]string) (config.Config,
	error) {
	for key, name := range flags {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return config.Config{}, err
		}
	}
	return config.Load(viper.GetViper(), appFS, viper.GetString("config"))
}

// newLogger returns a logger configured by the --debug, --logfile, and
// --quiet flags. Logs go to the error stream of cmd so that they never
// interleave with command output.
func newLogger(cmd *cobra.Command) (*logrus.Logger, error) {
	logger := logrus.New()

	// Set debug level
	if viper.GetBool("debug") {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Set formatter so both file and stderr format are equal
	logger.SetFormatter(&logrus.TextFormatter{
		ForceColors:      true,
		DisableColors:    false,
		DisableTimestamp: false,
		FullTimestamp:    true,
	})

	logfile := viper.GetString("logfile")
	quiet := viper.GetBool("quiet")
	switch {
	case logfile != "":
		o, err := appFS.OpenFile(logfile, os.O_APPEND|os.O_CREATE|os.O_WRONLY,
			fs.ModePerm)
		if err != nil {
			return nil, err
		}

		if quiet { // if quiet is set, only log to the file
			logger.SetOutput(o)
		} else {
			logger.SetOutput(io.MultiWriter(cmd.ErrOrStderr(), o))
		}
	case quiet:
		logger.SetOutput(io.Discard)
	default:
		logger.SetOutput(cmd.ErrOrStderr())
	}

	return logger, nil
}
