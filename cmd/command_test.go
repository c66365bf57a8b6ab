package cmd

import (
	"bytes"
	"io"

	"github.com/spf13/cobra"
)

func executeCommandC(cmd *cobra.Command, in io.Reader, args ...string) (
	c *cobra.Command, output string, err error) {
	var out bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	if in != nil {
		cmd.SetIn(in)
	}

	c, err = cmd.ExecuteC()
	return c, out.String(), err
}

// newTestRootCmd returns a root command with every subcommand registered
func newTestRootCmd() *cobra.Command {
	root := NewRootCmd()
	_ = NewRunCmd(root)
	_ = NewServeCmd(root)
	_ = NewPlotCmd(root)
	_ = NewRenderCmd(root)
	_ = NewConfigCmd(root)
	return root
}
