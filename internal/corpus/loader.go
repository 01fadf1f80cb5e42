package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/errors"
)

const maxLineSize = 4 * 1024 * 1024

// Adder receives validated records.
type Adder interface {
	AddDocument(docID int, text string, status index.Status, ratings []int) error
}

// Read decodes one JSON record per line. Blank lines are skipped.
func Read(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []Record
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", apperrors.ErrInvalidInput, line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}
	return records, nil
}

func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Ingest validates and adds records in order, stopping at the first
// failure. It returns the number of records added.
func Ingest(dst Adder, records []Record) (int, error) {
	for i := range records {
		rec := &records[i]
		status, err := Validate(rec)
		if err != nil {
			return i, fmt.Errorf("record %d (id %d): %w", i, rec.ID, err)
		}
		if err := dst.AddDocument(rec.ID, rec.Text, status, rec.Ratings); err != nil {
			return i, fmt.Errorf("record %d (id %d): %w", i, rec.ID, err)
		}
	}
	return len(records), nil
}

// LoadFile reads the corpus at path into dst.
func LoadFile(dst Adder, path string) (int, error) {
	records, err := ReadFile(path)
	if err != nil {
		return 0, err
	}
	n, err := Ingest(dst, records)
	if err != nil {
		return n, err
	}
	slog.Default().With("component", "corpus").Info("corpus loaded", "path", path, "documents", n)
	return n, nil
}
