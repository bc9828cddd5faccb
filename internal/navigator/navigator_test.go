package navigator

import (
	"errors"
	"reflect"
	"testing"

	"github.com/desertthunder/mangax/internal/models"
	"github.com/desertthunder/mangax/internal/shared"
	tu "github.com/desertthunder/mangax/internal/testing"
)

func ids(entries []SequenceEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Record.ID
	}
	return out
}

func mustBuild(t *testing.T, records ...models.ChapterRecord) Sequence {
	t.Helper()
	seq, err := Build(records)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return seq
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		label string
		want  float64
	}{
		{"1", 1},
		{"10.5", 10.5},
		{"12a", 12},
		{"  7  ", 7},
		{"-2", -2},
		{".5", 0.5},
		{"1e2", 100},
		{"1e", 1},
		{"3.", 3},
		{"Extra", 0},
		{"abc", 0},
		{"", 0},
		{"NaN", 0},
		{"-Infinity", 0},
		{"Infinity", 0},
		{"1e400", 0},
		{"-0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := ParseLabel(tt.label); got != tt.want {
				t.Errorf("ParseLabel(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	t.Run("sorts ascending by label", func(t *testing.T) {
		seq := mustBuild(t,
			tu.Chapter("c3", "3"),
			tu.Chapter("c1", "1"),
			tu.Chapter("c2", "2.5"),
		)

		if got := ids(seq); !reflect.DeepEqual(got, []string{"c1", "c2", "c3"}) {
			t.Errorf("order = %v", got)
		}
		for i, e := range seq {
			if e.Index != i {
				t.Errorf("entry %d has Index %d", i, e.Index)
			}
		}
		if seq[1].SortKey != 2.5 {
			t.Errorf("SortKey = %v, want 2.5", seq[1].SortKey)
		}
	})

	t.Run("ties keep fetch order", func(t *testing.T) {
		seq := mustBuild(t,
			tu.Chapter("b", "5", "H"),
			tu.Chapter("a", "5", "G"),
			tu.Chapter("c", "4"),
		)

		if got := ids(seq); !reflect.DeepEqual(got, []string{"c", "b", "a"}) {
			t.Errorf("order = %v", got)
		}
	})

	t.Run("unparsable label sorts as zero", func(t *testing.T) {
		seq := mustBuild(t,
			tu.Chapter("one", "1"),
			tu.Chapter("abc", "abc"),
			tu.Chapter("two", "2"),
		)

		if got := ids(seq); !reflect.DeepEqual(got, []string{"abc", "one", "two"}) {
			t.Errorf("order = %v", got)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		records := []models.ChapterRecord{
			tu.Chapter("x", "2", "G"),
			tu.Chapter("y", "1", "H"),
			tu.Chapter("z", "2", "H"),
			tu.Chapter("w", "Extra"),
		}

		first, _ := Build(records)
		second, _ := Build(records)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Build is not deterministic: %v vs %v", ids(first), ids(second))
		}

		sorted := make([]models.ChapterRecord, len(first))
		for i, e := range first {
			sorted[i] = e.Record
		}
		rebuilt, _ := Build(sorted)
		if !reflect.DeepEqual(ids(first), ids(rebuilt)) {
			t.Errorf("rebuilding a sequence changed it: %v vs %v", ids(first), ids(rebuilt))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		seq, err := Build(nil)
		if err != nil {
			t.Fatalf("Build(nil) error = %v", err)
		}
		if len(seq) != 0 {
			t.Errorf("len = %d, want 0", len(seq))
		}
	})

	t.Run("rejects records without id", func(t *testing.T) {
		_, err := Build([]models.ChapterRecord{tu.Chapter("a", "1"), tu.Chapter("", "2")})
		if !errors.Is(err, shared.ErrInvalidCatalogData) {
			t.Errorf("error = %v, want ErrInvalidCatalogData", err)
		}
	})
}

func TestSequenceLookup(t *testing.T) {
	seq := mustBuild(t, tu.Chapter("a", "1"), tu.Chapter("b", "2"))

	if got := seq.IndexOf("b"); got != 1 {
		t.Errorf("IndexOf(b) = %d, want 1", got)
	}
	if got := seq.IndexOf("missing"); got != -1 {
		t.Errorf("IndexOf(missing) = %d, want -1", got)
	}
	if seq.At(-1) != nil || seq.At(2) != nil {
		t.Error("At() outside the sequence should be nil")
	}
	if e := seq.At(0); e == nil || e.ID() != "a" {
		t.Errorf("At(0) = %v", e)
	}
}

func TestGroupIndex(t *testing.T) {
	seq := mustBuild(t,
		tu.Chapter("a", "1", "Group 10", "Group 2"),
		tu.Chapter("b", "2", "Group 2"),
		tu.Chapter("c", "3"),
	)
	idx := NewGroupIndex(seq)

	t.Run("membership", func(t *testing.T) {
		if !idx.HasGroup(seq[0], "Group 10") || !idx.HasGroup(seq[0], "Group 2") {
			t.Error("entry a should belong to both groups")
		}
		if idx.HasGroup(seq[1], "Group 10") {
			t.Error("entry b should not belong to Group 10")
		}
	})

	t.Run("chapter without groups matches nothing", func(t *testing.T) {
		if idx.HasGroup(seq[2], "Group 2") || idx.HasGroup(seq[2], "") {
			t.Error("entry c has no groups")
		}
		if got := idx.GroupsOf(seq[2]); got != nil {
			t.Errorf("GroupsOf(c) = %v, want nil", got)
		}
	})

	t.Run("groups of entry keep record order", func(t *testing.T) {
		if got := idx.GroupsOf(seq[0]); !reflect.DeepEqual(got, []string{"Group 10", "Group 2"}) {
			t.Errorf("GroupsOf(a) = %v", got)
		}
	})

	t.Run("groups are naturally sorted", func(t *testing.T) {
		if got := idx.Groups(); !reflect.DeepEqual(got, []string{"Group 2", "Group 10"}) {
			t.Errorf("Groups() = %v", got)
		}
		if got := idx.Count("Group 2"); got != 2 {
			t.Errorf("Count(Group 2) = %d, want 2", got)
		}
	})

	t.Run("out of range entry", func(t *testing.T) {
		if idx.HasGroup(SequenceEntry{Index: 9}, "Group 2") {
			t.Error("HasGroup should be false for foreign entries")
		}
	})
}

func TestResolve(t *testing.T) {
	t.Run("scenario: all chapters from one group", func(t *testing.T) {
		seq := mustBuild(t,
			tu.Chapter("1", "1", "G"),
			tu.Chapter("2", "2", "G"),
			tu.Chapter("3", "3", "G"),
		)

		n, err := Resolve(seq, nil, 1, "G")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if n.Previous == nil || n.Previous.ID() != "1" {
			t.Errorf("Previous = %v, want 1", n.Previous)
		}
		if n.Next == nil || n.Next.ID() != "3" {
			t.Errorf("Next = %v, want 3", n.Next)
		}
	})

	mixed := mustBuild(t,
		tu.Chapter("1", "1", "G"),
		tu.Chapter("2", "2", "H"),
		tu.Chapter("3", "3", "G"),
	)

	t.Run("scenario: preferred group skips other groups", func(t *testing.T) {
		n, err := Resolve(mixed, NewGroupIndex(mixed), 0, "G")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if n.Previous != nil {
			t.Errorf("Previous = %v, want none", n.Previous)
		}
		if n.Next == nil || n.Next.ID() != "3" {
			t.Errorf("Next = %v, want 3", n.Next)
		}
	})

	t.Run("scenario: no group falls back to adjacent", func(t *testing.T) {
		n, _ := Resolve(mixed, nil, 0, "")
		if n.Next == nil || n.Next.ID() != "2" {
			t.Errorf("Next = %v, want 2", n.Next)
		}
	})

	t.Run("scenario: unparsable label orders first", func(t *testing.T) {
		seq := mustBuild(t,
			tu.Chapter("one", "1"),
			tu.Chapter("abc", "abc"),
			tu.Chapter("two", "2"),
		)

		n, _ := Resolve(seq, nil, 0, "")
		if n.Previous != nil {
			t.Errorf("Previous = %v, want none", n.Previous)
		}
		if n.Next == nil || n.Next.ID() != "one" {
			t.Errorf("Next = %v, want one", n.Next)
		}
	})

	t.Run("scenario: chapter missing from sequence", func(t *testing.T) {
		current := mixed.IndexOf("missing")
		n, err := Resolve(mixed, nil, current, "G")
		if !errors.Is(err, shared.ErrChapterNotInSequence) {
			t.Errorf("error = %v, want ErrChapterNotInSequence", err)
		}
		if current != -1 || n.Previous != nil || n.Next != nil {
			t.Errorf("got index %d and neighbors %+v, want none", current, n)
		}
	})

	t.Run("group missing in one direction falls back to adjacent", func(t *testing.T) {
		n, _ := Resolve(mixed, nil, 1, "G")
		if n.Previous == nil || n.Previous.ID() != "1" {
			t.Errorf("Previous = %v, want 1", n.Previous)
		}
		if n.Next == nil || n.Next.ID() != "3" {
			t.Errorf("Next = %v, want 3", n.Next)
		}

		n, _ = Resolve(mixed, nil, 2, "H")
		if n.Previous == nil || n.Previous.ID() != "2" {
			t.Errorf("Previous = %v, want 2", n.Previous)
		}
		if n.Next != nil {
			t.Errorf("Next = %v, want none", n.Next)
		}
	})

	t.Run("unmatched group behaves like no group", func(t *testing.T) {
		for i := range mixed {
			withGroup, _ := Resolve(mixed, nil, i, "Nobody")
			without, _ := Resolve(mixed, nil, i, "")
			if !reflect.DeepEqual(withGroup, without) {
				t.Errorf("index %d: %+v != %+v", i, withGroup, without)
			}
		}
	})

	t.Run("never returns the current entry", func(t *testing.T) {
		seq := mustBuild(t,
			tu.Chapter("a", "1", "G"),
			tu.Chapter("b", "1", "G"),
			tu.Chapter("c", "2", "H"),
			tu.Chapter("d", "3", "G"),
			tu.Chapter("e", "Extra"),
		)
		for _, group := range []string{"", "G", "H", "X"} {
			for i := range seq {
				n, err := Resolve(seq, nil, i, group)
				if err != nil {
					t.Fatalf("Resolve(%d, %q) error = %v", i, group, err)
				}
				if n.Previous != nil && n.Previous.Index >= i {
					t.Errorf("Resolve(%d, %q).Previous = %d", i, group, n.Previous.Index)
				}
				if n.Next != nil && n.Next.Index <= i {
					t.Errorf("Resolve(%d, %q).Next = %d", i, group, n.Next.Index)
				}
			}
		}
	})

	t.Run("boundaries", func(t *testing.T) {
		n, _ := Resolve(mixed, nil, len(mixed)-1, "G")
		if n.Next != nil {
			t.Errorf("last entry Next = %v, want none", n.Next)
		}
		n, _ = Resolve(mixed, nil, 0, "H")
		if n.Previous != nil {
			t.Errorf("first entry Previous = %v, want none", n.Previous)
		}
	})

	t.Run("single chapter", func(t *testing.T) {
		seq := mustBuild(t, tu.Chapter("only", "1", "G"))
		n, err := Resolve(seq, nil, 0, "G")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if n.Previous != nil || n.Next != nil {
			t.Errorf("neighbors = %+v, want none", n)
		}
	})

	t.Run("index outside sequence", func(t *testing.T) {
		for _, i := range []int{-1, 3} {
			n, err := Resolve(mixed, nil, i, "")
			if !errors.Is(err, shared.ErrChapterNotInSequence) {
				t.Errorf("Resolve(%d) error = %v", i, err)
			}
			if n.Previous != nil || n.Next != nil {
				t.Errorf("Resolve(%d) neighbors = %+v", i, n)
			}
		}
	})
}

func TestListing(t *testing.T) {
	seq := mustBuild(t,
		tu.Chapter("1", "1", "G"),
		tu.Chapter("2", "2", "H"),
		tu.Chapter("3", "3", "G", "H"),
	)

	t.Run("newest first", func(t *testing.T) {
		if got := ids(Listing(seq, "")); !reflect.DeepEqual(got, []string{"3", "2", "1"}) {
			t.Errorf("Listing() = %v", got)
		}
	})

	t.Run("filtered by group", func(t *testing.T) {
		if got := ids(Listing(seq, "H")); !reflect.DeepEqual(got, []string{"3", "2"}) {
			t.Errorf("Listing(H) = %v", got)
		}
		if got := Listing(seq, "Nobody"); len(got) != 0 {
			t.Errorf("Listing(Nobody) = %v, want empty", ids(got))
		}
	})
}
