package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/instagram-roaster/internal/server"
)

var (
	servePort     int
	serveFixtures string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing POST /roast, POST /roast/stream, GET /scrape, GET /health and GET /metrics.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT, default 3001)")
	serveCmd.Flags().StringVar(&serveFixtures, "fixtures", "", "Serve profiles from <username>.html files in this directory instead of scraping")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	roaster, err := newRoaster(cfg, "", serveFixtures)
	if err != nil {
		return fmt.Errorf("failed to create roaster: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, roaster).Run(ctx)
}
