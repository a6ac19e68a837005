package models

// Sentinel is the placeholder written to the CSV for fields that could not
// be extracted. In memory an absent field is the empty string; the sentinel
// exists only on the wire so previously persisted files stay compatible.
const Sentinel = "N/A"

// TimeFormat is the wall-clock format recorded in the scraped_at column.
const TimeFormat = "2006-01-02 15:04:05"

// Book is one catalogue item extracted from a list page.
//
// BookURL is the canonical absolute URL and acts as the identity of the
// record: it is never recomputed after creation, and records without it do
// not participate in deduplication. Page is the list page the book was
// first observed on and never changes afterwards. CoverID is the only field
// the merge engine may update, and only from absent to a concrete value.
type Book struct {
	Title        string
	Author       string
	AvgRating    string
	RatingsCount string
	Page         int
	CoverURL     string
	CoverID      string
	BookURL      string
	AuthorURL    string
	ScrapedAt    string
}

// HasIdentity reports whether the book can be deduplicated.
func (b Book) HasIdentity() bool {
	return b.BookURL != ""
}

// HasCover reports whether a cover file has been stored for the book.
func (b Book) HasCover() bool {
	return b.CoverID != ""
}
