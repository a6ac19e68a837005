package scraper

import (
	"context"
	"fmt"
	"time"

	"grscraper/pkg/config"
	"grscraper/pkg/covers"
	"grscraper/pkg/dataset"
	"grscraper/pkg/goodreads"
	"grscraper/pkg/logger"
	"grscraper/pkg/models"
	"grscraper/pkg/ratelimit"
	"grscraper/pkg/storage"
)

// coverJitter is the random slack added on top of the configured
// inter-cover delay.
const coverJitter = 2 * time.Second

// Scraper drives the page-by-page crawl of one list. It owns the dataset
// for the duration of a run; everything happens on a single goroutine and
// the only suspensions are the pacing waits and the rate-limit cooldown.
type Scraper struct {
	fetcher    PageFetcher
	downloader CoverDownloader
	pagePacer  *ratelimit.Pacer
	config     *config.Config
	logger     logger.Logger
}

// Summary is the operator-facing result of a run.
type Summary struct {
	TotalBooks       int
	NewBooks         int
	CoversDownloaded int
	HighestPage      int
	OutputFile       string
	CoversDir        string
	Interrupted      bool
}

// New creates a Scraper wired from configuration.
func New(cfg *config.Config) (*Scraper, error) {
	log := logger.GetLogger()

	client := goodreads.NewClient(cfg.Network, log)

	var downloader CoverDownloader
	if cfg.Covers.Download {
		store, err := storage.NewManager(cfg.Covers.Directory)
		if err != nil {
			return nil, fmt.Errorf("failed to set up covers storage: %w", err)
		}
		coverPacer := ratelimit.NewJittered(cfg.Covers.CoverDelay(), coverJitter)
		downloader = covers.NewDownloader(client, store, coverPacer, cfg.Covers.MaxPerPage, log)
	}

	return &Scraper{
		fetcher:    client,
		downloader: downloader,
		pagePacer:  ratelimit.NewFixed(cfg.List.PageDelay()),
		config:     cfg,
		logger:     log,
	}, nil
}

// Run crawls pages from the effective start page to the end page, merging
// and persisting after every page so any interruption loses at most the
// page in flight. When ctx is cancelled the accumulated dataset is flushed
// and a partial summary is returned; cancellation is not an error.
func (s *Scraper) Run(ctx context.Context) (*Summary, error) {
	books := dataset.Load(s.config.Output.File)
	initialCount := len(books)

	startPage := dataset.ResumeStartPage(books, s.config.List.StartPage)
	if startPage != s.config.List.StartPage {
		s.logger.InfoWithFields("resuming past already-scraped pages", map[string]interface{}{
			"last_page_scraped": dataset.MaxPage(books),
			"start_page":        startPage,
		})
	}
	endPage := s.config.List.EndPage

	s.logger.InfoWithFields("starting crawl", map[string]interface{}{
		"list":           s.config.List.ID,
		"start_page":     startPage,
		"end_page":       endPage,
		"existing_books": initialCount,
	})
	if s.downloader != nil {
		s.logger.InfoWithFields("cover downloads enabled", map[string]interface{}{
			"max_per_page": s.config.Covers.MaxPerPage,
		})
	}

	currentPage := startPage
	hasMore := true
	interrupted := false

	for hasMore && currentPage <= endPage {
		if ctx.Err() != nil {
			interrupted = true
			break
		}

		batch, more := s.scrapePage(ctx, currentPage)
		hasMore = more

		if len(batch) > 0 {
			var stats dataset.MergeStats
			books, stats = dataset.Merge(books, batch)

			if err := dataset.Save(books, s.config.Output.File); err != nil {
				// Keep going; the next successful save restores durability.
				s.logger.ErrorWithFields("failed to save dataset", map[string]interface{}{
					"page":  currentPage,
					"path":  s.config.Output.File,
					"error": err.Error(),
				})
			} else {
				s.logger.InfoWithFields("page saved", map[string]interface{}{
					"page":           currentPage,
					"books_on_page":  len(batch),
					"books_added":    stats.BooksAdded,
					"covers_updated": stats.CoversUpdated,
					"total_books":    len(books),
				})
			}
		} else {
			s.logger.WarnWithFields("no books extracted", map[string]interface{}{
				"page": currentPage,
			})
		}

		if hasMore && currentPage < endPage {
			s.logger.InfoWithFields("waiting before next page", map[string]interface{}{
				"delay": s.config.List.PageDelay(),
			})
			if err := s.pagePacer.Wait(ctx); err != nil {
				interrupted = true
				break
			}
		}
		currentPage++
	}

	if ctx.Err() != nil {
		interrupted = true
	}

	// Mandatory flush: on interrupt make sure the latest merge reached
	// disk even if the mid-run save failed.
	if interrupted {
		s.logger.Warn("interrupted, flushing collected data")
		if err := dataset.Save(books, s.config.Output.File); err != nil {
			s.logger.ErrorWithFields("failed to flush dataset", map[string]interface{}{
				"path":  s.config.Output.File,
				"error": err.Error(),
			})
		}
	}

	summary := s.summarize(books, initialCount, interrupted)
	s.logger.InfoWithFields("crawl finished", map[string]interface{}{
		"total_books":  summary.TotalBooks,
		"new_books":    summary.NewBooks,
		"highest_page": summary.HighestPage,
		"interrupted":  summary.Interrupted,
	})

	return summary, nil
}

// scrapePage fetches and processes a single list page. A fetch failure is
// treated as an empty page with more pages assumed to exist, so one bad
// page never ends the run; the same holds for a panic while processing the
// page.
func (s *Scraper) scrapePage(ctx context.Context, page int) (batch []models.Book, hasMore bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorWithFields("page processing failed", map[string]interface{}{
				"page":  page,
				"panic": fmt.Sprintf("%v", r),
			})
			batch, hasMore = nil, true
		}
	}()

	url := goodreads.ListURL(s.config.List.ID, page)
	s.logger.DebugWithFields("fetching page", map[string]interface{}{
		"page": page,
		"url":  url,
	})

	doc, err := s.fetcher.FetchDocument(ctx, url)
	if err != nil {
		s.logger.WarnWithFields("page fetch failed, skipping", map[string]interface{}{
			"page":  page,
			"error": err.Error(),
		})
		return nil, true
	}

	batch, hasMore = goodreads.ExtractPage(doc, page)
	s.logger.InfoWithFields("page scraped", map[string]interface{}{
		"page":     page,
		"books":    len(batch),
		"has_more": hasMore,
	})

	if s.downloader != nil {
		budget := s.downloader.NewPageBudget()
		for i := range batch {
			if batch[i].CoverURL == "" {
				continue
			}
			batch[i].CoverID = s.downloader.MaybeDownload(ctx, budget, batch[i].CoverURL, batch[i].Title)
		}
	}

	return batch, hasMore
}

// summarize builds the run summary from the final dataset.
func (s *Scraper) summarize(books []models.Book, initialCount int, interrupted bool) *Summary {
	withCovers := 0
	for _, b := range books {
		if b.HasCover() {
			withCovers++
		}
	}

	return &Summary{
		TotalBooks:       len(books),
		NewBooks:         len(books) - initialCount,
		CoversDownloaded: withCovers,
		HighestPage:      dataset.MaxPage(books),
		OutputFile:       s.config.Output.File,
		CoversDir:        s.config.Covers.Directory,
		Interrupted:      interrupted,
	}
}
