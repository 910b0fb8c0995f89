package cmd

import (
	"os/signal"
	"syscall"

	"lunchstats/config"
	"lunchstats/internal/events"
	"lunchstats/internal/logger"

	"github.com/spf13/cobra"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Consume restaurant events and recompute rating stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.close()

		consumer := events.NewConsumer(config.NewKafkaReader(cfg), a.ratings(), logger.Component(log, "consumer").WithField("topic", cfg.KafkaTopic))
		defer consumer.Close()
		return consumer.Start(ctx)
	},
}
