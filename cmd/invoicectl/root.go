package main

import "github.com/spf13/cobra"

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "invoicectl",
		Short:         "Operator tooling for the trade invoice registry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newHashCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show invoicectl version",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write([]byte("invoicectl " + version + " (" + commit + ")\n"))
			return err
		},
	}
}
