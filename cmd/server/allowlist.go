package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nohumanman/descenders-modding/internal/factory"
	"github.com/nohumanman/descenders-modding/internal/model"
	"github.com/nohumanman/descenders-modding/internal/storage"
)

func newAllowListCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allowlist",
		Short: "Manage identities allowed to moderate",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List allowed identity ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cfg, func(store storage.Storage) error {
				ids, err := store.GetAuthorizedIDs(cmd.Context())
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <identity-id>",
		Short: "Allow an identity to moderate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cfg, func(store storage.Storage) error {
				return store.AddAuthorizedID(cmd.Context(), model.IdentityID(args[0]))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <identity-id>",
		Short: "Revoke an identity's moderation access",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cfg, func(store storage.Storage) error {
				return store.RemoveAuthorizedID(cmd.Context(), model.IdentityID(args[0]))
			})
		},
	})

	return cmd
}

// withStorage opens the configured backend for a one-off maintenance command
func withStorage(cfg *Config, fn func(store storage.Storage) error) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if cfg.storage == factory.StorageTypeMemory {
		logger.Warn("allow-list changes to memory storage are lost on exit")
	}

	app, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	return fn(app.Storage)
}
