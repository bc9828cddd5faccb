package navigator

// Listing returns the entries of seq newest first, as shown in a chapter picker.
//
// With a non-empty group only entries published by that group are kept. Entries with equal sort keys
// appear in reverse fetch order.
func Listing(seq Sequence, group string) []SequenceEntry {
	var idx *GroupIndex
	if group != "" {
		idx = NewGroupIndex(seq)
	}

	out := make([]SequenceEntry, 0, len(seq))
	for i := len(seq) - 1; i >= 0; i-- {
		if idx != nil && !idx.HasGroup(seq[i], group) {
			continue
		}
		out = append(out, seq[i])
	}
	return out
}
