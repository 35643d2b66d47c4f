package cmd

import "github.com/spf13/cobra"

func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stackable",
		Short: "stackable token launchpad backend",
	}
	cmd.PersistentFlags().String("config", "config.yml", "config file path")
	cmd.AddCommand(ServerCmd())
	cmd.AddCommand(MigrateCmd())
	cmd.AddCommand(ClassifyCmd())
	cmd.AddCommand(ImportStatsCmd())
	return cmd
}
