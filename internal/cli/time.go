package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newTimeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "time",
		Short: "Moderate recorded times",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <time-id>",
		Short: "Show a recorded time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result TimeRecord
			if err := client.Get("/api/v1/times/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "verify <time-id>",
		Short: "Mark a time as verified and announce it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result TimeRecord
			if err := client.Post("/api/v1/times/"+url.PathEscape(args[0])+"/verify", nil, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent times",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result TimeList
			if err := client.Get("/api/v1/times"+limitQuery(limit), &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 0, "Number of times to show (server default when 0)")
	cmd.AddCommand(listCmd)

	var restore bool
	ignoreCmd := &cobra.Command{
		Use:   "ignore <time-id>",
		Short: "Hide a time from leaderboards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]bool{"ignored": !restore}
			var result TimeRecord
			if err := client.Post("/api/v1/times/"+url.PathEscape(args[0])+"/ignore", req, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
	ignoreCmd.Flags().BoolVar(&restore, "restore", false, "Clear the ignore flag instead")
	cmd.AddCommand(ignoreCmd)

	return cmd
}
