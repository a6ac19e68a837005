// Package goodreads talks to the Goodreads list pages.
//
// It provides:
//   - An HTTP client with a reusable header set, separate timeouts for page
//     and image requests, and a cooldown-and-retry protocol for HTTP 429
//   - URL construction for paginated list pages
//   - goquery-based extraction of book rows and the pagination signal
//
// Example usage:
//
//	client := goodreads.NewClient(cfg.Network, log)
//	doc, err := client.FetchDocument(ctx, goodreads.ListURL("1.Best_Books_Ever", 2))
//	if err != nil {
//	    // transient errors mean "no page": skip and continue
//	}
//	books, hasMore := goodreads.ExtractPage(doc, 2)
package goodreads
