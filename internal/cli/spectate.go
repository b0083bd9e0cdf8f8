package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSpectateCmd() *cobra.Command {
	var observer, observerName, target string

	cmd := &cobra.Command{
		Use:   "spectate",
		Short: "Point an observer at a player and monitor that player",
		RunE: func(cmd *cobra.Command, args []string) error {
			if observer == "" || target == "" {
				return fmt.Errorf("--observer and --target are required")
			}

			req := map[string]string{
				"observer_id":   observer,
				"observer_name": observerName,
				"target_id":     target,
			}
			var result Player
			if err := client.Post("/api/v1/spectate", req, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&observer, "observer", "", "Observer player id (required)")
	cmd.Flags().StringVar(&observerName, "observer-name", "", "Observer display name")
	cmd.Flags().StringVar(&target, "target", "", "Target player id (required)")
	_ = cmd.MarkFlagRequired("observer")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func newMonitoredCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitored",
		Short: "Show the monitored player",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Player
			if err := client.Get("/api/v1/monitored", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSpectatedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spectated",
		Short: "Show the player the first observer is watching",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Player
			if err := client.Get("/api/v1/spectated", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
