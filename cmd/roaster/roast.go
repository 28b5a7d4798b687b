package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/instagram-roaster/internal/observability"
	"github.com/jonathan/instagram-roaster/internal/pipeline"
	"github.com/jonathan/instagram-roaster/internal/types"
)

var (
	roastLanguage string
	roastDataFile string
	roastAPIKey   string
	roastDriver   string
	roastFixtures string
	roastVerbose  bool
)

var roastCmd = &cobra.Command{
	Use:   "roast <username>",
	Short: "Roast an Instagram profile",
	Long:  "Scrape an Instagram profile (or read it from --data) and print a generated roast.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoast,
}

func init() {
	roastCmd.Flags().StringVarP(&roastLanguage, "language", "l", string(types.LanguageAuto), "Roast language: english, indonesia or auto")
	roastCmd.Flags().StringVar(&roastDataFile, "data", "", "Path to a profile JSON file used instead of scraping")
	roastCmd.Flags().StringVar(&roastAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY)")
	roastCmd.Flags().StringVar(&roastDriver, "driver", "", "Browser driver: chromedp, rod or http (overrides BROWSER_DRIVER)")
	roastCmd.Flags().StringVar(&roastFixtures, "fixtures", "", "Read <username>.html from this directory instead of scraping")
	roastCmd.Flags().BoolVarP(&roastVerbose, "verbose", "v", false, "Print pipeline steps to stderr")
	rootCmd.AddCommand(roastCmd)
}

func runRoast(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var jsonData string
	if roastDataFile != "" {
		data, err := os.ReadFile(roastDataFile)
		if err != nil {
			return fmt.Errorf("failed to read profile data: %w", err)
		}
		jsonData = string(data)
	}

	roaster, err := newRoaster(cfg, roastDriver, roastFixtures)
	if err != nil {
		return err
	}

	username := args[0]
	opts := pipeline.RoastOptions{
		Username: username,
		JSONData: jsonData,
		Language: types.ParseLanguage(roastLanguage),
		APIKey:   roastAPIKey,
	}
	if roastVerbose {
		opts.OnProgress = func(event pipeline.ProgressEvent) {
			fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s\n", event.Step, event.Message) //nolint:errcheck
		}
	}

	roast, err := roaster.Roast(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("failed to roast @%s: %w", username, err)
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintRoast(username, roast)
	return nil
}
