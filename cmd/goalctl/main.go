package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/SNU-Hackathon/Doany-sub000/cmd/goalctl/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "goalctl",
		Short:         "Offline tools for goal schedules, verification and the database",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(cmd.OccurrencesCmd())
	rootCmd.AddCommand(cmd.EvaluateCmd())
	rootCmd.AddCommand(cmd.WeeklyCmd())
	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.TokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
