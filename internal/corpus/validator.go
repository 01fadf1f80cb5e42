package corpus

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/errors"
)

const (
	maxTextLength = 1048576
	maxRatings    = 1024
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// Validate checks the record's shape and returns its parsed status. Word
// validity is left to the index.
func Validate(rec *Record) (index.Status, error) {
	errs := make(map[string]string)

	if rec.ID < 0 {
		errs["id"] = "id must not be negative"
	}
	if len(rec.Text) > maxTextLength {
		errs["text"] = fmt.Sprintf("text must be at most %d bytes", maxTextLength)
	}
	if len(rec.Ratings) > maxRatings {
		errs["ratings"] = fmt.Sprintf("at most %d ratings are allowed", maxRatings)
	}
	status, err := index.ParseStatus(rec.Status)
	if err != nil {
		errs["status"] = fmt.Sprintf("unknown status %q", rec.Status)
	}
	if len(errs) > 0 {
		return index.StatusActive, &ValidationError{Fields: errs}
	}
	return status, nil
}
