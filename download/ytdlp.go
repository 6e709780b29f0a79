// Package download extracts the audio track of a stream to disk by driving
// the external yt-dlp binary.
package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/courtaudio/oralargs/model"
)

const (
	DefaultBinary      = "yt-dlp"
	DefaultAudioFormat = "mp3"
)

// DownloadError reports a non-zero exit from the external downloader.
type DownloadError struct {
	Output   string
	ExitCode int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("downloader exited with code %d", e.ExitCode)
}

// Runner invokes yt-dlp for one stream at a time.
type Runner struct {
	binary      string
	audioFormat string
}

func NewRunner(binary, audioFormat string) *Runner {
	if binary == "" {
		binary = DefaultBinary
	}
	if audioFormat == "" {
		audioFormat = DefaultAudioFormat
	}
	return &Runner{binary: binary, audioFormat: audioFormat}
}

// Download pulls the manifest's audio track into the directory of
// req.OutputPrefix, creating it if needed. yt-dlp resolves the final
// extension through the %(ext)s output template.
func (r *Runner) Download(ctx context.Context, req model.DownloadRequest) error {
	dir := filepath.Dir(req.OutputPrefix)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	args := r.commandArgs(req)
	log.WithField("args", args).Debug("invoking downloader")

	cmd := exec.CommandContext(ctx, r.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &DownloadError{Output: string(output), ExitCode: exitErr.ExitCode()}
		}
		return fmt.Errorf("running %s: %w", r.binary, err)
	}
	return nil
}

// The manifest is treated as one asset even though HLS playlists can carry
// several streams, hence --no-playlist.
func (r *Runner) commandArgs(req model.DownloadRequest) []string {
	return []string{
		"--no-playlist",
		"--extract-audio",
		"--audio-format", r.audioFormat,
		"-o", req.OutputPrefix + ".%(ext)s",
		req.ManifestURL,
	}
}
