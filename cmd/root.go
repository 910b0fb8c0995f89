package cmd

import (
	"fmt"
	"os"

	"lunchstats/config"
	"lunchstats/internal/logger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfg config.Config
	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lunchstats",
	Short: "Restaurant appearance, menu and rating statistics for a lunch delivery marketplace",
	Long: `lunchstats tracks which restaurants appear on which days, whether they sold out,
what their menus contain and what each user ordered and rated, and serves the
aggregated statistics over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		log = logger.New(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, aggregateCmd, recomputeCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
