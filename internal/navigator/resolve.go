package navigator

import "strconv"

// Neighbors holds the navigation targets around the current entry. A nil field means no target in that direction.
type Neighbors struct {
	Previous *SequenceEntry
	Next     *SequenceEntry
}

// Resolve computes the previous and next entries around seq[current].
//
// With a non-empty group the scan walks away from current and returns the first entry published by that group.
// When the group never appears in a direction, or group is empty, the index-adjacent entry is used instead.
// A group that matches nothing in the title therefore behaves exactly like no group.
// The first entry has no previous and the last entry has no next.
//
// idx may be nil, in which case it is built from seq. A current index outside the sequence
// returns [shared.ErrChapterNotInSequence] and no neighbors.
func Resolve(seq Sequence, idx *GroupIndex, current int, group string) (Neighbors, error) {
	if current < 0 || current >= len(seq) {
		return Neighbors{}, errNotInSequence(indexLabel(current), len(seq))
	}
	if idx == nil {
		idx = NewGroupIndex(seq)
	}

	return Neighbors{
		Previous: scan(seq, idx, current, -1, group),
		Next:     scan(seq, idx, current, +1, group),
	}, nil
}

// scan walks from current in direction step (+1 or -1).
func scan(seq Sequence, idx *GroupIndex, current, step int, group string) *SequenceEntry {
	adjacent := current + step
	if adjacent < 0 || adjacent >= len(seq) {
		return nil
	}

	if group != "" {
		for i := adjacent; i >= 0 && i < len(seq); i += step {
			if idx.HasGroup(seq[i], group) {
				return seq.At(i)
			}
		}
	}

	return seq.At(adjacent)
}

func indexLabel(i int) string {
	return "#" + strconv.Itoa(i)
}
