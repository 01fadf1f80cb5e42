package index

import (
	"fmt"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/errors"
)

type Status int

const (
	StatusActive Status = iota
	StatusIrrelevant
	StatusBanned
	StatusRemoved
)

var statusNames = [...]string{"active", "irrelevant", "banned", "removed"}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ParseStatus maps a case-insensitive status name to a Status. An empty
// string is StatusActive.
func ParseStatus(s string) (Status, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" || name == "actual" {
		return StatusActive, nil
	}
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return StatusActive, fmt.Errorf("%w: unknown document status %q", apperrors.ErrInvalidInput, s)
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// DocumentData is the per-document metadata consulted by ranking filters.
type DocumentData struct {
	Rating int
	Status Status
}

type Posting struct {
	DocID     int
	Frequency float64
}

// PostingList is ordered by ascending DocID.
type PostingList []Posting
