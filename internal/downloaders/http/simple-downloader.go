package modhttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/tanq16/forgemods/internal/utils"
)

// PerformSimpleDownload streams url into outputPath through a .part file.
// Nothing is left at either path when it fails.
func PerformSimpleDownload(ctx context.Context, url, outputPath string, client *utils.ModHTTPClient) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return 0, fmt.Errorf("error creating output directory: %w", err)
	}
	tempOutputPath := utils.PartPath(outputPath)
	written, err := downloadAttempt(ctx, url, tempOutputPath, client)
	if err != nil {
		if rmErr := os.Remove(tempOutputPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Warn().Str("op", "http/simple-downloader").Err(rmErr).Msgf("Could not remove partial file %s", tempOutputPath)
		}
		log.Error().Str("op", "http/simple-downloader").Err(err).Msgf("Download failed for %s", outputPath)
		return 0, err
	}
	if err := os.Rename(tempOutputPath, outputPath); err != nil {
		os.Remove(tempOutputPath)
		return 0, fmt.Errorf("error renaming (finalizing) output file: %w", err)
	}
	log.Info().Str("op", "http/simple-downloader").Msgf("Downloaded %s (%s)", outputPath, humanize.Bytes(uint64(written)))
	return written, nil
}

func downloadAttempt(ctx context.Context, url, tempOutputPath string, client *utils.ModHTTPClient) (int64, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("error creating GET request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, &utils.TransportError{Op: "download", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &utils.TransportError{Op: "download", StatusCode: resp.StatusCode}
	}

	outFile, err := os.OpenFile(tempOutputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("error creating output file: %w", err)
	}
	defer outFile.Close()

	stall := client.Config().StallTimeout
	body := newStallReader(resp.Body, stall, func() {
		cancel(fmt.Errorf("no data received for %s", stall))
	})
	defer body.stop()

	buffer := make([]byte, utils.DefaultBufferSize)
	written, err := io.CopyBuffer(outFile, body, buffer)
	if err != nil {
		if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
			err = cause
		}
		return written, &utils.TransportError{Op: "download", Err: err}
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		return written, &utils.TransportError{Op: "download", Err: fmt.Errorf("short body: got %d of %d bytes", written, resp.ContentLength)}
	}
	if err := outFile.Sync(); err != nil {
		return written, fmt.Errorf("error writing to output file: %w", err)
	}
	return written, nil
}

// stallReader fires onStall when no Read completes within timeout.
type stallReader struct {
	r     io.Reader
	timer *time.Timer
	d     time.Duration
}

func newStallReader(r io.Reader, d time.Duration, onStall func()) *stallReader {
	return &stallReader{r: r, d: d, timer: time.AfterFunc(d, onStall)}
}

func (s *stallReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if n > 0 {
		s.timer.Reset(s.d)
	}
	return n, err
}

func (s *stallReader) stop() {
	s.timer.Stop()
}
