package covers

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"grscraper/pkg/goodreads"
	"grscraper/pkg/logger"
	"grscraper/pkg/ratelimit"
	"grscraper/pkg/storage"
)

var (
	nonWordPattern    = regexp.MustCompile(`[^\w\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

const (
	maxFilenameLength = 30
	coverExtension    = ".jpg"
)

// ImageFetcher downloads raw image bytes.
type ImageFetcher interface {
	DownloadImage(ctx context.Context, url string) ([]byte, error)
}

// Downloader fetches cover images under a per-page budget. The filename
// derived from the title is both the storage key and the existence check,
// so books whose covers were fetched on an earlier run cost nothing.
type Downloader struct {
	fetcher    ImageFetcher
	store      *storage.Manager
	pacer      *ratelimit.Pacer
	maxPerPage int
	logger     logger.Logger
}

// Budget caps how many covers one page may download.
type Budget struct {
	remaining int
}

// Remaining returns the number of downloads the budget still allows.
func (b *Budget) Remaining() int {
	return b.remaining
}

// NewDownloader creates a cover downloader.
func NewDownloader(fetcher ImageFetcher, store *storage.Manager, pacer *ratelimit.Pacer, maxPerPage int, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Downloader{
		fetcher:    fetcher,
		store:      store,
		pacer:      pacer,
		maxPerPage: maxPerPage,
		logger:     log,
	}
}

// NewPageBudget returns a fresh budget at the configured per-page maximum.
func (d *Downloader) NewPageBudget() *Budget {
	return &Budget{remaining: d.maxPerPage}
}

// MaybeDownload fetches the cover for a book if the URL is usable and the
// page budget allows it. It returns the stored filename, or the empty
// string when the cover is unavailable; failures are logged, never raised.
// A cover already on disk is returned immediately without a fetch or delay
// and does not consume budget.
func (d *Downloader) MaybeDownload(ctx context.Context, budget *Budget, coverURL, title string) string {
	if coverURL == "" || budget.remaining <= 0 {
		return ""
	}

	filename := sanitizeFilename(title) + coverExtension

	if d.store.Exists(filename) {
		d.logger.DebugWithFields("cover already stored", map[string]interface{}{
			"title": title,
			"file":  filename,
		})
		return filename
	}

	// Jittered pause before hitting the image host.
	if err := d.pacer.Wait(ctx); err != nil {
		return ""
	}

	data, err := d.fetcher.DownloadImage(ctx, goodreads.ImproveCoverResolution(coverURL))
	if err != nil {
		d.logger.WarnWithFields("cover download failed", map[string]interface{}{
			"title": title,
			"url":   coverURL,
			"error": err.Error(),
		})
		return ""
	}

	if err := d.store.Save(bytes.NewReader(data), filename); err != nil {
		d.logger.WarnWithFields("cover save failed", map[string]interface{}{
			"title": title,
			"file":  filename,
			"error": err.Error(),
		})
		return ""
	}

	budget.remaining--
	d.logger.InfoWithFields("cover downloaded", map[string]interface{}{
		"title": title,
		"file":  filename,
		"used":  d.maxPerPage - budget.remaining,
		"max":   d.maxPerPage,
	})

	return filename
}

// sanitizeFilename turns a title into a safe deterministic file stem,
// e.g. "Harry Potter and the..." -> "harry_potter_and_the".
func sanitizeFilename(title string) string {
	safe := nonWordPattern.ReplaceAllString(title, "")
	safe = whitespacePattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(safe)), "_")
	if len(safe) > maxFilenameLength {
		safe = safe[:maxFilenameLength]
	}
	return safe
}
