package navigator

import (
	"sort"

	"github.com/maruel/natural"
)

// GroupIndex answers translation group membership for the entries of one [Sequence].
type GroupIndex struct {
	members []map[string]struct{}
	counts  map[string]int
}

// NewGroupIndex indexes the groups of every entry of seq.
func NewGroupIndex(seq Sequence) *GroupIndex {
	idx := &GroupIndex{
		members: make([]map[string]struct{}, len(seq)),
		counts:  make(map[string]int),
	}

	for i, e := range seq {
		if len(e.Record.Groups) == 0 {
			continue
		}
		set := make(map[string]struct{}, len(e.Record.Groups))
		for _, g := range e.Record.Groups {
			if _, dup := set[g]; dup {
				continue
			}
			set[g] = struct{}{}
			idx.counts[g]++
		}
		idx.members[i] = set
	}

	return idx
}

// GroupsOf returns the groups that published the entry, in record order.
func (g *GroupIndex) GroupsOf(e SequenceEntry) []string {
	if g.members == nil || e.Index < 0 || e.Index >= len(g.members) || g.members[e.Index] == nil {
		return nil
	}
	out := make([]string, len(e.Record.Groups))
	copy(out, e.Record.Groups)
	return out
}

// HasGroup reports whether group published the entry. Entries without groups match nothing, nor does "".
func (g *GroupIndex) HasGroup(e SequenceEntry, group string) bool {
	if group == "" || e.Index < 0 || e.Index >= len(g.members) {
		return false
	}
	_, ok := g.members[e.Index][group]
	return ok
}

// Count returns how many entries group published.
func (g *GroupIndex) Count(group string) int {
	return g.counts[group]
}

// Groups returns every group of the title in natural order.
func (g *GroupIndex) Groups() []string {
	out := make([]string, 0, len(g.counts))
	for name := range g.counts {
		out = append(out, name)
	}
	sort.Sort(natural.StringSlice(out))
	return out
}
