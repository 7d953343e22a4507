package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/farmconnect/internal/config"
	"github.com/Skotchmaster/farmconnect/internal/logging"
	"github.com/Skotchmaster/farmconnect/internal/recipe"
)

func recipeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recipe <ingredient>",
		Short: "Suggest a recipe for an ingredient",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			gen := recipe.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiModel, logging.New(cfg.LogLevel))
			fmt.Fprintln(cmd.OutOrStdout(), gen.Generate(cmd.Context(), strings.Join(args, " ")))
			return nil
		},
	}
}
