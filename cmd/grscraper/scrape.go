package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"grscraper/pkg/config"
	"grscraper/pkg/logger"
	"grscraper/pkg/scraper"
	"grscraper/pkg/ui"
)

var (
	// Scrape command flags
	listID           string
	startPage        int
	endPage          int
	downloadCovers   bool
	noCovers         bool
	maxCoversPerPage int
	delayPages       int
	delayCovers      int
	outputFile       string
	coversDir        string
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape a Goodreads list into a CSV dataset",
	Long: `Scrape the configured page range of a Goodreads list and merge the
results into a CSV dataset.

Re-running the same command is safe: the scraper resumes past pages it has
already saved, and books are deduplicated by their Goodreads URL. Press
Ctrl-C at any time; collected data is flushed before exiting.`,
	Example: `  # Scrape the default list with default settings
  grscraper scrape

  # Scrape a specific list, pages 1 through 10
  grscraper scrape --list-id 264.Books_That_Everyone_Should_Read --end-page 10

  # Skip cover downloads and write to a custom file
  grscraper scrape --no-covers --output data/books.csv

  # Slow down between pages to be gentler on the site
  grscraper scrape --delay-pages 30`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runScrape(cmd)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVarP(&listID, "list-id", "l", "", "list identifier, e.g. 1.Best_Books_Ever")
	scrapeCmd.Flags().IntVar(&startPage, "start-page", 0, "first page to scrape")
	scrapeCmd.Flags().IntVar(&endPage, "end-page", 0, "last page to scrape")
	scrapeCmd.Flags().BoolVar(&downloadCovers, "download-covers", true, "download cover images")
	scrapeCmd.Flags().BoolVar(&noCovers, "no-covers", false, "skip cover image downloads")
	scrapeCmd.Flags().IntVar(&maxCoversPerPage, "max-covers-per-page", -1, "cover downloads allowed per page")
	scrapeCmd.Flags().IntVar(&delayPages, "delay-pages", -1, "seconds to wait between pages")
	scrapeCmd.Flags().IntVar(&delayCovers, "delay-covers", -1, "base seconds to wait between cover downloads")
	scrapeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "dataset CSV file")
	scrapeCmd.Flags().StringVar(&coversDir, "covers-dir", "", "directory for downloaded covers")

	// Mirror the flags on the root command so `grscraper --list-id ...`
	// works without the scrape subcommand.
	rootCmd.Flags().StringVarP(&listID, "list-id", "l", "", "list identifier, e.g. 1.Best_Books_Ever")
	rootCmd.Flags().IntVar(&startPage, "start-page", 0, "first page to scrape")
	rootCmd.Flags().IntVar(&endPage, "end-page", 0, "last page to scrape")
	rootCmd.Flags().BoolVar(&downloadCovers, "download-covers", true, "download cover images")
	rootCmd.Flags().BoolVar(&noCovers, "no-covers", false, "skip cover image downloads")
	rootCmd.Flags().IntVar(&maxCoversPerPage, "max-covers-per-page", -1, "cover downloads allowed per page")
	rootCmd.Flags().IntVar(&delayPages, "delay-pages", -1, "seconds to wait between pages")
	rootCmd.Flags().IntVar(&delayCovers, "delay-covers", -1, "base seconds to wait between cover downloads")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "dataset CSV file")
	rootCmd.Flags().StringVar(&coversDir, "covers-dir", "", "directory for downloaded covers")
}

func runScrape(cmd *cobra.Command) {
	// Build flags map from command line
	flags := make(map[string]interface{})
	if listID != "" {
		flags["list-id"] = listID
	}
	if startPage > 0 {
		flags["start-page"] = startPage
	}
	if endPage > 0 {
		flags["end-page"] = endPage
	}
	if noCovers || !downloadCovers {
		flags["download-covers"] = false
	}
	if maxCoversPerPage >= 0 {
		flags["max-covers-per-page"] = maxCoversPerPage
	}
	if delayPages >= 0 {
		flags["delay-pages"] = delayPages
	}
	if delayCovers >= 0 {
		flags["delay-covers"] = delayCovers
	}
	if outputFile != "" {
		flags["output"] = outputFile
	}
	if coversDir != "" {
		flags["covers-dir"] = coversDir
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	// Load configuration
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logging.Level); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	logger.GetLogger().WithField("version", version).Info("Goodreads Scraper starting")

	ui.PrintInfo("Target List", cfg.List.ID)
	ui.PrintInfo("Pages", fmt.Sprintf("%d-%d", cfg.List.StartPage, cfg.List.EndPage))
	ui.PrintInfo("Dataset", cfg.Output.File)
	if cfg.Covers.Download {
		ui.PrintInfo("Covers", fmt.Sprintf("up to %d per page into %s", cfg.Covers.MaxPerPage, cfg.Covers.Directory))
	}

	// Ctrl-C cancels the run; the scraper flushes and reports a partial
	// summary instead of dying mid-page.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := scraper.New(cfg)
	if err != nil {
		ui.PrintError("Failed to initialize scraper", err.Error())
		os.Exit(1)
	}

	summary, err := s.Run(ctx)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Scrape failed")
		ui.PrintError("SCRAPE FAILED", err.Error())
		os.Exit(1)
	}

	printSummary(summary)
}

func printSummary(summary *scraper.Summary) {
	if summary.Interrupted {
		ui.PrintWarning("Scrape interrupted, collected data was saved")
	} else {
		ui.PrintSuccess("Scrape completed successfully")
	}

	ui.PrintInfo("Total books", fmt.Sprintf("%d", summary.TotalBooks))
	ui.PrintInfo("New this run", fmt.Sprintf("%d", summary.NewBooks))
	ui.PrintInfo("Books with covers", fmt.Sprintf("%d", summary.CoversDownloaded))
	ui.PrintInfo("Highest page", fmt.Sprintf("%d", summary.HighestPage))
	ui.PrintInfo("Dataset file", summary.OutputFile)
}

// Make scrape the default command when no subcommand is specified
func init() {
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return scrapeCmd.RunE(scrapeCmd, args)
	}
}
