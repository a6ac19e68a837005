// Package dataset persists the scraped book collection as a flat CSV table
// and merges freshly scraped batches into it.
//
// The dataset doubles as the crawl checkpoint: the highest page index it
// contains decides where a resumed run starts, so no separate checkpoint
// file is needed.
package dataset
