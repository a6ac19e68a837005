package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"grscraper/pkg/logger"
	"grscraper/pkg/models"
)

// Columns is the fixed CSV column order. It never changes so persisted
// files stay diffable across runs and compatible with earlier datasets.
var Columns = []string{
	"title",
	"author",
	"avg_rating",
	"ratings_count",
	"page",
	"cover_url",
	"cover_id",
	"book_url",
	"author_url",
	"scraped_at",
}

// Load reads a previously persisted dataset. A missing file yields an empty
// dataset; a malformed file is logged and also yields an empty dataset.
// Neither is an error for the caller: the crawl simply starts fresh.
func Load(path string) []models.Book {
	log := logger.GetLogger()

	file, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WarnWithFields("failed to open existing dataset", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
		}
		return nil
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		log.WarnWithFields("failed to parse existing dataset", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return nil
	}

	if len(rows) < 2 {
		return nil // header only, or empty file
	}

	// Map header names to positions so column reordering in old files
	// still loads.
	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[name] = i
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return fromWire(row[i])
	}

	books := make([]models.Book, 0, len(rows)-1)
	for _, row := range rows[1:] {
		page, _ := strconv.Atoi(field(row, "page"))
		books = append(books, models.Book{
			Title:        field(row, "title"),
			Author:       field(row, "author"),
			AvgRating:    field(row, "avg_rating"),
			RatingsCount: field(row, "ratings_count"),
			Page:         page,
			CoverURL:     field(row, "cover_url"),
			CoverID:      field(row, "cover_id"),
			BookURL:      field(row, "book_url"),
			AuthorURL:    field(row, "author_url"),
			ScrapedAt:    field(row, "scraped_at"),
		})
	}

	log.InfoWithFields("existing dataset loaded", map[string]interface{}{
		"path":  path,
		"books": len(books),
	})

	return books
}

// Save persists the full dataset, overwriting the previous file atomically
// via a temporary file and rename so a crash mid-write never corrupts the
// dataset.
func Save(books []models.Book, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create dataset directory: %w", err)
		}
	}

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary dataset file: %w", err)
	}

	writer := csv.NewWriter(file)
	writeErr := writer.Write(Columns)
	for _, b := range books {
		if writeErr != nil {
			break
		}
		writeErr = writer.Write([]string{
			toWire(b.Title),
			toWire(b.Author),
			toWire(b.AvgRating),
			toWire(b.RatingsCount),
			strconv.Itoa(b.Page),
			toWire(b.CoverURL),
			toWire(b.CoverID),
			toWire(b.BookURL),
			toWire(b.AuthorURL),
			toWire(b.ScrapedAt),
		})
	}
	writer.Flush()
	if writeErr == nil {
		writeErr = writer.Error()
	}

	if writeErr != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write dataset: %w", writeErr)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync dataset file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close dataset file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace dataset file: %w", err)
	}

	return nil
}

// toWire maps an absent field to the sentinel the CSV format requires.
func toWire(s string) string {
	if s == "" {
		return models.Sentinel
	}
	return s
}

// fromWire maps the wire sentinel back to an absent field.
func fromWire(s string) string {
	if s == models.Sentinel {
		return ""
	}
	return s
}
