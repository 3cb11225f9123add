package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/execprobe/internal/suite"
)

func newCasesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cases",
		Short: "Print the built-in test cases as YAML",
		Long: `Print the built-in test cases in the case file layout.

The output can be edited and passed back with --cases:

  execprobe cases > cases.yaml
  execprobe --cases cases.yaml <api-key>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return suite.EncodeYAML(cmd.OutOrStdout(), suite.DefaultCases())
		},
	}
}
