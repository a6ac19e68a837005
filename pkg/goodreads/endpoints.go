package goodreads

import "fmt"

// BaseURL is the catalogue origin.
const BaseURL = "https://www.goodreads.com"

// ListURL builds the URL for one page of a list. The first page is the bare
// list URL; later pages carry a page query parameter.
func ListURL(listID string, page int) string {
	base := fmt.Sprintf("%s/list/show/%s", BaseURL, listID)
	if page <= 1 {
		return base
	}
	return fmt.Sprintf("%s?page=%d", base, page)
}
