// Package pipeline runs one year's worth of cases through resolution and
// download, strictly sequentially. A failure on one case never touches the
// others; a failure fetching the listing aborts the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/courtaudio/oralargs/download"
	"github.com/courtaudio/oralargs/model"
)

type ListingSource interface {
	Listings(ctx context.Context, year string) ([]model.CaseListing, int, error)
}

type ManifestResolver interface {
	Resolve(ctx context.Context, playerURL string) (string, error)
}

type AudioDownloader interface {
	Download(ctx context.Context, req model.DownloadRequest) error
}

// Summary is the run's terminal accounting.
type Summary struct {
	Found       int
	Downloaded  int
	Failed      int
	SkippedRows int
}

type Pipeline struct {
	source     ListingSource
	resolver   ManifestResolver
	downloader AudioDownloader
	log        *log.Entry
}

func New(source ListingSource, resolver ManifestResolver, downloader AudioDownloader) *Pipeline {
	return &Pipeline{
		source:     source,
		resolver:   resolver,
		downloader: downloader,
		log:        log.NewEntry(log.StandardLogger()),
	}
}

// WithLogger attaches run-scoped fields (e.g. a run correlation ID) to every
// line the pipeline logs.
func (p *Pipeline) WithLogger(entry *log.Entry) *Pipeline {
	p.log = entry
	return p
}

// Run processes every case of year, writing audio under <outputDir>/<year>/.
// The year directory is created up front, even if no case survives to a
// download. The returned error is non-nil only for run-fatal conditions: a
// listing fetch failure or context cancellation. Per-case failures are
// logged, counted in the Summary, and never escalate.
func (p *Pipeline) Run(ctx context.Context, year string, outputDir string) (Summary, error) {
	yearDir := filepath.Join(outputDir, year)
	if err := os.MkdirAll(yearDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("creating output directory: %w", err)
	}
	p.log.WithField("year", year).Infof("processing year %s, saving audio to %s", year, yearDir)

	listings, skipped, err := p.source.Listings(ctx, year)
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{Found: len(listings), SkippedRows: skipped}
	p.log.Infof("found %d cases", len(listings))
	if skipped > 0 {
		p.log.Warnf("skipped %d malformed listing rows", skipped)
	}

	for _, listing := range listings {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if p.processCase(ctx, listing, yearDir) {
			summary.Downloaded++
		} else {
			summary.Failed++
		}
	}

	p.log.Infof("done: %d downloaded, %d failed of %d cases", summary.Downloaded, summary.Failed, summary.Found)
	return summary, nil
}

func (p *Pipeline) processCase(ctx context.Context, listing model.CaseListing, yearDir string) bool {
	title := download.SanitizeCaseName(listing.CaseName)
	caseLog := p.log.WithField("case", title)
	caseLog.Info("processing case")

	resolved := p.resolveCase(ctx, listing, caseLog)
	if resolved.ManifestURL == "" {
		return false
	}

	caseLog.Info("downloading audio")
	err := p.downloader.Download(ctx, model.DownloadRequest{
		OutputPrefix: filepath.Join(yearDir, title),
		ManifestURL:  resolved.ManifestURL,
	})
	if err != nil {
		var dlErr *download.DownloadError
		if errors.As(err, &dlErr) {
			caseLog.Errorf("download failed (exit code %d)", dlErr.ExitCode)
		} else {
			caseLog.Errorf("download failed: %v", err)
		}
		return false
	}

	caseLog.Info("finished")
	return true
}

// resolveCase maps a listing to its manifest; an empty ManifestURL signals
// resolution failure and short-circuits the download.
func (p *Pipeline) resolveCase(ctx context.Context, listing model.CaseListing, caseLog *log.Entry) model.ResolvedCase {
	resolved := model.ResolvedCase{CaseName: listing.CaseName}
	manifestURL, err := p.resolver.Resolve(ctx, listing.MediaPlayerURL)
	if err != nil {
		caseLog.Errorf("could not resolve manifest: %v", err)
		return resolved
	}
	resolved.ManifestURL = manifestURL
	return resolved
}
