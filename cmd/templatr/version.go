package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd, cmd.OutOrStdout())
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", p.heading.Sprint("templatr"), version, runtime.Version())
			return nil
		},
	}
}
