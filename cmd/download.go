package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/lucsky/cuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/courtaudio/oralargs/archive"
	"github.com/courtaudio/oralargs/browser"
	"github.com/courtaudio/oralargs/config"
	"github.com/courtaudio/oralargs/download"
	"github.com/courtaudio/oralargs/media"
	"github.com/courtaudio/oralargs/model"
	"github.com/courtaudio/oralargs/pipeline"
)

var (
	flagYear      string
	flagOutputDir string
)

func init() {
	downloadCmd.Flags().StringVar(&flagYear, "year", "", "year of arguments to download (2006 through the current year)")
	downloadCmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "base directory for audio files (default: ~/Downloads)")
	downloadCmd.MarkFlagRequired("year")
	rootCmd.AddCommand(downloadCmd)
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Downloads a year's oral-argument audio from the court archive",
	Long: `Downloads a year's oral-argument audio from the court archive.

Fetches the archived-video listing for the given year, resolves each case's
streaming manifest, and extracts the audio track with yt-dlp into
<output-dir>/<year>/.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.FromEnvfile()

		log.SetLevel(cfg.LogLevel)
		switch cfg.LogFormat {
		case config.LogFormatJSON:
			log.SetFormatter(&log.JSONFormatter{})
		default:
			log.SetFormatter(&log.TextFormatter{})
		}

		year, err := model.ValidYear(flagYear)
		if err != nil {
			log.Fatal(err)
		}

		outputDir := flagOutputDir
		if outputDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				log.Fatalf("cannot locate home directory: %v", err)
			}
			outputDir = filepath.Join(home, "Downloads")
		}

		ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer done()

		// One correlation ID per invocation, stamped on every pipeline line.
		runLog := log.WithField("run", cuid.Slug())

		source := archive.NewSource(
			archive.NewClient(cfg.Archive.ListingURL),
			func(ctx context.Context) browser.Session {
				return browser.NewChrome(ctx, browser.WithOpTimeout(cfg.Archive.BrowserTimeout))
			},
		)
		resolver := media.NewResolver(media.Config{
			Attempts:      cfg.Resolver.Attempts,
			BackoffFactor: cfg.Resolver.BackoffFactor,
			Timeout:       cfg.Resolver.Timeout,
		})
		downloader := download.NewRunner(cfg.Ytdlp.Binary, cfg.Ytdlp.AudioFormat)

		summary, err := pipeline.New(source, resolver, downloader).WithLogger(runLog).Run(ctx, year, outputDir)
		if err != nil {
			runLog.Fatalf("run aborted: %v", err)
		}
		if summary.Failed > 0 {
			runLog.Warnf("%d of %d cases failed; rerun to retry them", summary.Failed, summary.Found)
		}
	},
}
