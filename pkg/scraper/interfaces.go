package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"grscraper/pkg/covers"
)

// PageFetcher defines the interface for fetching catalogue pages.
type PageFetcher interface {
	FetchDocument(ctx context.Context, url string) (*goquery.Document, error)
}

// CoverDownloader defines the interface for budgeted cover downloads.
type CoverDownloader interface {
	NewPageBudget() *covers.Budget
	MaybeDownload(ctx context.Context, budget *covers.Budget, coverURL, title string) string
}
