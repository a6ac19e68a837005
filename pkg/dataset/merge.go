package dataset

import "grscraper/pkg/models"

// MergeStats reports what a merge changed. Used for operator summaries
// only, never for control flow.
type MergeStats struct {
	BooksAdded    int
	CoversUpdated int
}

// Merge combines a new batch into an existing dataset, deduplicating by
// book URL. Existing records are authoritative: the only field a batch may
// change is an absent cover id, which is patched once and never reverted.
// Batch records without an identity are dropped. The inputs are not
// modified; existing records keep their original order, new ones append in
// batch order.
func Merge(existing, batch []models.Book) ([]models.Book, MergeStats) {
	merged := make([]models.Book, len(existing))
	copy(merged, existing)

	index := make(map[string]int, len(merged))
	for i, b := range merged {
		if b.HasIdentity() {
			index[b.BookURL] = i
		}
	}

	var stats MergeStats
	for _, b := range batch {
		if !b.HasIdentity() {
			continue
		}

		i, ok := index[b.BookURL]
		if !ok {
			index[b.BookURL] = len(merged)
			merged = append(merged, b)
			stats.BooksAdded++
			continue
		}

		if !merged[i].HasCover() && b.HasCover() {
			merged[i].CoverID = b.CoverID
			stats.CoversUpdated++
		}
	}

	return merged, stats
}
