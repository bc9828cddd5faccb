package navigator

import (
	"fmt"
	"sort"

	"github.com/desertthunder/mangax/internal/models"
	"github.com/desertthunder/mangax/internal/shared"
)

// SequenceEntry is a chapter record placed in its title's reading order.
type SequenceEntry struct {
	Record  models.ChapterRecord
	SortKey float64
	Index   int
}

// ID returns the chapter id of the entry.
func (e SequenceEntry) ID() string { return e.Record.ID }

// Sequence is the reading order of every chapter of one title. Index i holds the entry with Index i.
type Sequence []SequenceEntry

// Build orders records by [ParseLabel] of their labels, ascending.
//
// Records with equal keys keep their input order, so building the same input twice yields identical sequences.
// A record that fails validation rejects the whole input with [shared.ErrInvalidCatalogData].
func Build(records []models.ChapterRecord) (Sequence, error) {
	seq := make(Sequence, len(records))
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		seq[i] = SequenceEntry{Record: rec, SortKey: ParseLabel(rec.Label)}
	}

	sort.SliceStable(seq, func(i, j int) bool {
		return seq[i].SortKey < seq[j].SortKey
	})

	for i := range seq {
		seq[i].Index = i
	}

	return seq, nil
}

// IndexOf returns the position of the first entry with the chapter id, or -1.
func (s Sequence) IndexOf(chapterID string) int {
	for i := range s {
		if s[i].Record.ID == chapterID {
			return i
		}
	}
	return -1
}

// At returns a copy of the entry at index, or nil when index is outside the sequence.
func (s Sequence) At(index int) *SequenceEntry {
	if index < 0 || index >= len(s) {
		return nil
	}
	e := s[index]
	return &e
}

// errNotInSequence builds the [shared.ErrChapterNotInSequence] error for a chapter id.
func errNotInSequence(chapterID string, n int) error {
	return fmt.Errorf("%w: %q is not among %d chapters", shared.ErrChapterNotInSequence, chapterID, n)
}
