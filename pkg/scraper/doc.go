// Package scraper orchestrates the crawl of a Goodreads list: it pages
// through the list, extracts books, optionally downloads a budgeted number
// of covers per page, merges each page into the persisted dataset, and
// saves after every page so a run can be resumed from where it stopped.
package scraper
