package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	recomputeRestaurant string
	recomputeAll        bool
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Rebuild rating stats from stored ratings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if recomputeRestaurant == "" && !recomputeAll {
			return fmt.Errorf("either --restaurant or --all is required")
		}
		ctx := cmd.Context()

		a, err := newApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.close()

		ids := []string{recomputeRestaurant}
		if recomputeAll {
			if ids, err = a.restaurantIDs(ctx); err != nil {
				return err
			}
		}

		ratings := a.ratings()
		for _, id := range ids {
			stats, changed, err := ratings.Recalculate(ctx, id)
			if err != nil {
				return fmt.Errorf("recompute %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\ttotal=%d\taverage=%.2f\tchanged=%t\n",
				id, stats.TotalRatings, stats.AverageRating, changed)
		}
		return nil
	},
}

func init() {
	recomputeCmd.Flags().StringVar(&recomputeRestaurant, "restaurant", "", "restaurant id to recompute")
	recomputeCmd.Flags().BoolVar(&recomputeAll, "all", false, "recompute every known restaurant")
}
