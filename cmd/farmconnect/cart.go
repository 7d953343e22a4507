package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/farmconnect/internal/config"
	"github.com/Skotchmaster/farmconnect/internal/logging"
	"github.com/Skotchmaster/farmconnect/internal/models"
	"github.com/Skotchmaster/farmconnect/internal/persist"
	"github.com/Skotchmaster/farmconnect/internal/store"
)

func cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the persisted cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			return withStorage(cmd.Context(), cfg, func(storage persist.Storage) error {
				adapter := persist.NewAdapter(storage, cfg.StorageKey, logging.Discard())
				cart, _, err := adapter.Load(cmd.Context())
				if err != nil {
					return err
				}
				if cart == nil {
					cart = []models.CartItem{}
				}
				out, err := json.MarshalIndent(map[string]any{
					"items": cart,
					"count": store.CartCount(cart),
					"total": store.CartTotal(cart),
				}, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the persisted cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			return withStorage(cmd.Context(), cfg, func(storage persist.Storage) error {
				if err := storage.RemoveItem(cmd.Context(), cfg.StorageKey); err != nil {
					return fmt.Errorf("remove %s: %w", cfg.StorageKey, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", cfg.StorageKey)
				return nil
			})
		},
	})

	return cmd
}

func withStorage(ctx context.Context, cfg config.Config, fn func(persist.Storage) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	storage, err := persist.Open(ctx, cfg.StorageDSN)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer storage.Close()
	return fn(storage)
}
