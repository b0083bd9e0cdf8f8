package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func limitQuery(limit int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf("?limit=%d", limit)
}

func newLeaderboardCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard <trail>",
		Short: "Show the fastest runs on a trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Leaderboard
			if err := client.Get("/api/v1/leaderboard/"+url.PathEscape(args[0])+limitQuery(limit), &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Number of places to show (server default when 0)")
	return cmd
}

func newTrailsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trails",
		Short: "List trails with recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result TrailList
			if err := client.Get("/api/v1/trails", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newWorldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worlds",
		Short: "List worlds with recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result WorldList
			if err := client.Get("/api/v1/worlds", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
