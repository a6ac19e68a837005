package goodreads

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"grscraper/pkg/models"
)

var (
	decimalPattern      = regexp.MustCompile(`(\d+\.\d+)`)
	ratingsCountPattern = regexp.MustCompile(`([\d,]+)\s+ratings`)
)

// ExtractPage pulls all book rows out of a parsed list page and reports
// whether a further page exists. It is pure apart from reading the clock
// for the scraped_at stamp; it performs no I/O.
func ExtractPage(doc *goquery.Document, pageIndex int) ([]models.Book, bool) {
	var books []models.Book

	doc.Find(`table.tableList tr[itemtype="http://schema.org/Book"]`).Each(func(_ int, row *goquery.Selection) {
		books = append(books, extractBook(row, pageIndex))
	})

	return books, hasNextPage(doc)
}

// extractBook reads the fields of a single table row. Missing elements
// leave the corresponding fields empty; they become the sentinel on the
// wire.
func extractBook(row *goquery.Selection, pageIndex int) models.Book {
	book := models.Book{
		Page:      pageIndex,
		ScrapedAt: time.Now().Format(models.TimeFormat),
	}

	title := row.Find("a.bookTitle").First()
	book.Title = strings.TrimSpace(title.Text())
	if href, ok := title.Attr("href"); ok {
		book.BookURL = absoluteURL(href)
	}

	author := row.Find("a.authorName").First()
	book.Author = strings.TrimSpace(author.Text())
	if href, ok := author.Attr("href"); ok {
		book.AuthorURL = absoluteURL(href)
	}

	if rating := row.Find("span.minirating").First(); rating.Length() > 0 {
		text := rating.Text()
		book.AvgRating = extractDecimal(text)
		book.RatingsCount = extractRatingsCount(text)
	}

	if src, ok := row.Find("img.bookCover").First().Attr("src"); ok {
		book.CoverURL = src
	}

	return book
}

// hasNextPage checks the pagination footer for an enabled next link.
func hasNextPage(doc *goquery.Document) bool {
	next := doc.Find("a.next_page").First()
	return next.Length() > 0 && !next.HasClass("disabled")
}

// absoluteURL resolves a relative href against the catalogue origin.
func absoluteURL(href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	base, _ := url.Parse(BaseURL)
	return base.ResolveReference(ref).String()
}

// extractDecimal returns the first decimal number in the text,
// e.g. "4.23 avg rating" -> "4.23".
func extractDecimal(text string) string {
	if m := decimalPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// extractRatingsCount returns the ratings count with commas stripped,
// e.g. "1,234 ratings" -> "1234".
func extractRatingsCount(text string) string {
	if m := ratingsCountPattern.FindStringSubmatch(text); m != nil {
		return strings.ReplaceAll(m[1], ",", "")
	}
	return ""
}

// ImproveCoverResolution rewrites a cover thumbnail URL into its
// higher-resolution variant.
func ImproveCoverResolution(coverURL string) string {
	if coverURL == "" {
		return coverURL
	}

	highRes := coverURL
	for _, marker := range []string{"._SX50_", "._SY75_", "._SX98_"} {
		highRes = strings.ReplaceAll(highRes, marker, "")
	}

	if strings.Contains(highRes, "_SX") {
		highRes = strings.ReplaceAll(highRes, "._SX200_", "._SX400_")
	}

	return highRes
}
