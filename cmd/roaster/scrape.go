package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/instagram-roaster/internal/observability"
)

var (
	scrapeDriver   string
	scrapeFixtures string
	scrapeJSON     bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <username>",
	Short: "Scrape an Instagram profile",
	Long:  "Render an Instagram profile page and print the extracted profile data.",
	Args:  cobra.ExactArgs(1),
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeDriver, "driver", "", "Browser driver: chromedp, rod or http (overrides BROWSER_DRIVER)")
	scrapeCmd.Flags().StringVar(&scrapeFixtures, "fixtures", "", "Read <username>.html from this directory instead of scraping")
	scrapeCmd.Flags().BoolVar(&scrapeJSON, "json", false, "Print the profile as JSON")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	source, err := newSource(cfg, scrapeDriver, scrapeFixtures)
	if err != nil {
		return err
	}

	username := args[0]
	profile, err := source.Extract(cmd.Context(), username)
	if err != nil {
		return fmt.Errorf("failed to scrape @%s: %w", username, err)
	}

	if scrapeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintProfile(profile)
	return nil
}
