package main

import (
	"github.com/spf13/cobra"

	"github.com/bizvet/bizvet/internal/version"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bizvet",
		Short:         "Multi-signal business record verification",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newRunCommand())

	return rootCmd
}
