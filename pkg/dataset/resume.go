package dataset

import "grscraper/pkg/models"

// MaxPage returns the highest page index represented in the dataset, or 0
// when the dataset is empty. Records whose page could not be parsed at load
// time carry page 0 and are effectively ignored.
func MaxPage(books []models.Book) int {
	maxPage := 0
	for _, b := range books {
		if b.Page > maxPage {
			maxPage = b.Page
		}
	}
	return maxPage
}

// ResumeStartPage advances the requested start page past pages already
// represented in the dataset, so re-running the same command after an
// interruption continues instead of re-scraping.
func ResumeStartPage(books []models.Book, requested int) int {
	maxPage := MaxPage(books)
	if maxPage > 0 && requested <= maxPage {
		return maxPage + 1
	}
	return requested
}
