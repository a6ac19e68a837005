package dataset

import (
	"sort"
	"testing"

	"grscraper/pkg/models"
)

func book(url string, page int, coverID string) models.Book {
	return models.Book{
		Title:   "Title " + url,
		BookURL: url,
		Page:    page,
		CoverID: coverID,
	}
}

func urlsOf(books []models.Book) []string {
	urls := make([]string, len(books))
	for i, b := range books {
		urls[i] = b.BookURL
	}
	sort.Strings(urls)
	return urls
}

func TestMergeEmptyBatchIsIdentity(t *testing.T) {
	existing := []models.Book{book("A", 1, "a.jpg"), book("B", 2, "")}

	merged, stats := Merge(existing, nil)

	if len(merged) != len(existing) {
		t.Fatalf("expected %d books, got %d", len(existing), len(merged))
	}
	for i := range existing {
		if merged[i] != existing[i] {
			t.Errorf("record %d changed: %+v != %+v", i, merged[i], existing[i])
		}
	}
	if stats.BooksAdded != 0 || stats.CoversUpdated != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}

func TestMergeAddsNewBooks(t *testing.T) {
	existing := []models.Book{book("A", 1, "")}
	batch := []models.Book{book("B", 2, ""), book("C", 2, "c.jpg")}

	merged, stats := Merge(existing, batch)

	if len(merged) != 3 {
		t.Fatalf("expected 3 books, got %d", len(merged))
	}
	if stats.BooksAdded != 2 {
		t.Errorf("expected 2 added, got %d", stats.BooksAdded)
	}
	if stats.CoversUpdated != 0 {
		t.Errorf("expected 0 cover updates, got %d", stats.CoversUpdated)
	}
}

func TestMergeCoverPatchScenario(t *testing.T) {
	existing := []models.Book{book("A", 3, "")}
	batch := []models.Book{book("A", 3, "cover_a.jpg"), book("B", 4, "")}

	merged, stats := Merge(existing, batch)

	if len(merged) != 2 {
		t.Fatalf("expected 2 books, got %d", len(merged))
	}
	if merged[0].CoverID != "cover_a.jpg" {
		t.Errorf("expected cover to be patched, got %q", merged[0].CoverID)
	}
	if stats.CoversUpdated != 1 {
		t.Errorf("expected 1 cover update, got %d", stats.CoversUpdated)
	}
	if stats.BooksAdded != 1 {
		t.Errorf("expected 1 book added, got %d", stats.BooksAdded)
	}
}

func TestMergeCoverIsWriteOnce(t *testing.T) {
	existing := []models.Book{book("A", 1, "original.jpg")}

	for _, incoming := range []string{"", "other.jpg"} {
		merged, stats := Merge(existing, []models.Book{book("A", 1, incoming)})
		if merged[0].CoverID != "original.jpg" {
			t.Errorf("cover %q overwrote existing, incoming %q", merged[0].CoverID, incoming)
		}
		if stats.CoversUpdated != 0 {
			t.Errorf("expected no cover update for incoming %q", incoming)
		}
	}
}

func TestMergeExistingRecordWins(t *testing.T) {
	existing := []models.Book{{BookURL: "A", Title: "First Seen", Page: 2, AvgRating: "4.1"}}
	batch := []models.Book{{BookURL: "A", Title: "Seen Again", Page: 9, AvgRating: "4.5"}}

	merged, stats := Merge(existing, batch)

	if len(merged) != 1 {
		t.Fatalf("expected 1 book, got %d", len(merged))
	}
	if merged[0].Title != "First Seen" || merged[0].Page != 2 || merged[0].AvgRating != "4.1" {
		t.Errorf("existing record was modified: %+v", merged[0])
	}
	if stats.BooksAdded != 0 {
		t.Errorf("duplicate should not count as added, got %d", stats.BooksAdded)
	}
}

func TestMergeDropsRecordsWithoutIdentity(t *testing.T) {
	merged, stats := Merge(nil, []models.Book{{Title: "No URL", Page: 1}})

	if len(merged) != 0 {
		t.Fatalf("expected record without identity to be dropped, got %d", len(merged))
	}
	if stats.BooksAdded != 0 {
		t.Errorf("expected 0 added, got %d", stats.BooksAdded)
	}
}

func TestMergeOrderIndependentOnDisjointBatches(t *testing.T) {
	base := []models.Book{book("A", 1, "")}
	batchOne := []models.Book{book("B", 2, ""), book("C", 2, "")}
	batchTwo := []models.Book{book("D", 3, ""), book("E", 3, "")}

	ab, _ := Merge(base, batchOne)
	ab, _ = Merge(ab, batchTwo)

	ba, _ := Merge(base, batchTwo)
	ba, _ = Merge(ba, batchOne)

	gotAB := urlsOf(ab)
	gotBA := urlsOf(ba)

	if len(gotAB) != len(gotBA) {
		t.Fatalf("set sizes differ: %d vs %d", len(gotAB), len(gotBA))
	}
	for i := range gotAB {
		if gotAB[i] != gotBA[i] {
			t.Errorf("sets differ at %d: %s vs %s", i, gotAB[i], gotBA[i])
		}
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	existing := []models.Book{book("A", 1, "")}
	batch := []models.Book{book("A", 1, "a.jpg")}

	Merge(existing, batch)

	if existing[0].CoverID != "" {
		t.Error("merge mutated the existing slice")
	}
}
