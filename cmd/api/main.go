package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ArielVlevin/maintainer-backend/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "maintainer",
		Short: "Maintainer API Server",
		Long:  `Maintainer is a maintenance tracking backend that keeps household products healthy by scheduling, reminding about and recording their recurring maintenance tasks.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
