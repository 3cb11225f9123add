package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/execprobe/internal/version"
)

func newVersionCommand() *cobra.Command {
	var asJSON bool

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print the version, commit, and build date of execprobe.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), version.JSON())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
	versionCmd.Flags().BoolVar(&asJSON, "json", false, "output version information as JSON")
	return versionCmd
}
