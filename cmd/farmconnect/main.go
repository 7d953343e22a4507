package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "farmconnect",
		Short: "FarmConnect marketplace backend",
		Long: `FarmConnect connects local farmers with buyers.

serve runs the HTTP API the mobile shell talks to; the other commands
inspect or manipulate local state without starting a server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		recipeCmd(),
		cartCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
