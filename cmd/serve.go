package cmd

import (
	"os/signal"
	"syscall"

	httpapi "lunchstats/internal/api/http"
	"lunchstats/internal/logger"
	"lunchstats/internal/service"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the statistics HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.close()

		entry := log.WithField("app", "lunchstats")
		ratings := a.ratings()
		handler := httpapi.NewHandler(
			service.NewRestaurantService(a.accessor, logger.Component(log, "restaurants")),
			ratings,
			service.NewOrderService(a.accessor, ratings, a.publisher, service.DefaultQRGenerator{},
				cfg.RatingBaseURL, logger.Component(log, "orders")),
			service.NewStatsService(a.accessor, logger.Component(log, "stats")),
			cfg.APIPrefix,
			entry,
		)
		return httpapi.StartServer(ctx, cfg.Address, httpapi.NewRouter(handler, cfg.Origins, entry), entry)
	},
}
