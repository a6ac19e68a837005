package dataset

import (
	"testing"

	"grscraper/pkg/models"
)

func pages(ps ...int) []models.Book {
	books := make([]models.Book, len(ps))
	for i, p := range ps {
		books[i] = models.Book{BookURL: string(rune('A' + i)), Page: p}
	}
	return books
}

func TestMaxPage(t *testing.T) {
	if got := MaxPage(nil); got != 0 {
		t.Errorf("empty dataset: expected 0, got %d", got)
	}
	if got := MaxPage(pages(3, 7, 1)); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
	// Unparsable pages were normalized to 0 at load time and are ignored.
	if got := MaxPage(pages(0, 0, 2)); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}

func TestResumeStartPage(t *testing.T) {
	spanning := pages(1, 2, 3, 4, 5, 6, 7)

	t.Run("ContinuesPastScrapedPages", func(t *testing.T) {
		if got := ResumeStartPage(spanning, 1); got != 8 {
			t.Errorf("expected 8, got %d", got)
		}
	})

	t.Run("RequestBeyondMaxUnchanged", func(t *testing.T) {
		if got := ResumeStartPage(spanning, 10); got != 10 {
			t.Errorf("expected 10, got %d", got)
		}
	})

	t.Run("EmptyDatasetUnchanged", func(t *testing.T) {
		if got := ResumeStartPage(nil, 4); got != 4 {
			t.Errorf("expected 4, got %d", got)
		}
	})
}
