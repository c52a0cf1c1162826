package versemap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/crosswire-go/versimap/core/versification"
)

// chapterSpec and bookSpec let tests build small, fully deterministic
// Versification fakes without pulling in the real catalog package's KJV/
// Vulgate tables - most scenarios here hinge on verse-0 behavior the real
// tables don't exercise at all (they never set ChapterData.HasZero).

type chapterSpec struct {
	verses int
	zero   bool
}

type bookSpec struct {
	name     string
	chapters []chapterSpec
}

// fakeSystem is a minimal versification.Versification built directly from a
// flat ordinal table, enough to drive the expander/table tests without any
// of the real OSIS grammar or catalog machinery.
type fakeSystem struct {
	sysName string
	order   []versification.Verse
	index   map[versification.Verse]int
}

func newFakeSystem(name string, books []bookSpec) *fakeSystem {
	f := &fakeSystem{sysName: name, index: make(map[versification.Verse]int)}
	for _, b := range books {
		for ci, ch := range b.chapters {
			chapter := ci + 1
			if ch.zero {
				f.push(versification.Verse{Book: b.name, Chapter: chapter, Number: 0})
			}
			for vn := 1; vn <= ch.verses; vn++ {
				f.push(versification.Verse{Book: b.name, Chapter: chapter, Number: vn})
			}
		}
	}
	return f
}

func (f *fakeSystem) push(v versification.Verse) {
	f.index[v] = len(f.order)
	f.order = append(f.order, v)
}

func (f *fakeSystem) Name() string { return f.sysName }

func (f *fakeSystem) Equal(other versification.Versification) bool {
	o, ok := other.(*fakeSystem)
	return ok && o == f
}

func (f *fakeSystem) Ordinal(v versification.Verse) (int, error) {
	idx, ok := f.index[v]
	if !ok {
		return 0, fmt.Errorf("%s: no such verse in %s", v, f.sysName)
	}
	return idx, nil
}

func (f *fakeSystem) Add(v versification.Verse, n int) (versification.Verse, error) {
	idx, err := f.Ordinal(v)
	if err != nil {
		return versification.Verse{}, err
	}
	idx += n
	if idx < 0 || idx >= len(f.order) {
		return versification.Verse{}, fmt.Errorf("%s+%d: out of range in %s", v, n, f.sysName)
	}
	return f.order[idx], nil
}

func (f *fakeSystem) Subtract(v versification.Verse, n int) (versification.Verse, error) {
	return f.Add(v, -n)
}

func (f *fakeSystem) Iterate(r versification.VerseRange) ([]versification.Verse, error) {
	idx, err := f.Ordinal(r.Start)
	if err != nil {
		return nil, err
	}
	if idx+r.Cardinality > len(f.order) {
		return nil, fmt.Errorf("%s,%d: range exceeds %s", r.Start, r.Cardinality, f.sysName)
	}
	out := make([]versification.Verse, r.Cardinality)
	copy(out, f.order[idx:idx+r.Cardinality])
	return out, nil
}

func (f *fakeSystem) ParseOSIS(ref string) (*versification.Passage, error) {
	p := versification.NewPassage()
	for _, seg := range strings.Split(ref, ";") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		parts := strings.SplitN(seg, "-", 2)
		start, err := parseTriple(parts[0])
		if err != nil {
			return nil, err
		}
		if len(parts) == 1 {
			if _, err := f.Ordinal(start); err != nil {
				return nil, err
			}
			p.Add(start)
			continue
		}
		end, err := parseTriple(parts[1])
		if err != nil {
			return nil, err
		}
		si, err := f.Ordinal(start)
		if err != nil {
			return nil, err
		}
		ei, err := f.Ordinal(end)
		if err != nil {
			return nil, err
		}
		if ei < si {
			return nil, fmt.Errorf("inverted range %q", seg)
		}
		for idx := si; idx <= ei; idx++ {
			p.Add(f.order[idx])
		}
	}
	if p.IsEmpty() {
		return nil, fmt.Errorf("empty reference %q", ref)
	}
	return p, nil
}

func (f *fakeSystem) FormatOSIS(p *versification.Passage) string {
	vs := p.Verses()
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return strings.Join(out, ";")
}

func parseTriple(s string) (versification.Verse, error) {
	fields := strings.Split(s, ".")
	if len(fields) != 3 {
		return versification.Verse{}, fmt.Errorf("malformed reference %q", s)
	}
	ch, err := strconv.Atoi(fields[1])
	if err != nil {
		return versification.Verse{}, err
	}
	vn, err := strconv.Atoi(fields[2])
	if err != nil {
		return versification.Verse{}, err
	}
	return versification.Verse{Book: fields[0], Chapter: ch, Number: vn}, nil
}

// testLeft and testPivot model the two systems most scenario tests need:
// a Genesis chapter identical on both sides, and a Psalms corner where the
// two sides disagree about verse 0 and chapter length - enough to exercise
// every cardinality path without the real catalog's much larger tables.
func testLeft() *fakeSystem {
	return newFakeSystem("TestLeft", []bookSpec{
		{name: "Gen", chapters: []chapterSpec{{verses: 10}}},
		{name: "Ps", chapters: []chapterSpec{
			{verses: 2, zero: true}, // Ps.1
			{verses: 2, zero: true}, // Ps.2
			{verses: 2, zero: true}, // Ps.3
		}},
	})
}

func testPivot() *fakeSystem {
	return newFakeSystem("TestPivot", []bookSpec{
		{name: "Gen", chapters: []chapterSpec{{verses: 10}}},
		{name: "Ps", chapters: []chapterSpec{
			{verses: 2}, // Ps.1
			{verses: 2}, // Ps.2
			{verses: 2}, // Ps.3, no verse 0
		}},
	})
}

// testPivotWithPsalm18 models the chapter-boundary offset scenario: Ps.18
// runs 1-50 and Ps.19 has no verse 0, so subtracting 1 from Ps.19.1 lands on
// Ps.18.50.
func testPivotWithPsalm18() *fakeSystem {
	chapters := make([]chapterSpec, 19)
	chapters[17] = chapterSpec{verses: 50}
	chapters[18] = chapterSpec{verses: 2}
	return newFakeSystem("TestPivotChapterBoundary", []bookSpec{
		{name: "Ps", chapters: chapters},
	})
}

// testLeftWithZeroPsalm19 gives Ps.19 a verse 0 on the left side only, the
// left-hand counterpart of testPivotWithPsalm18. No test calls it at present:
// TestOffsetResolverFailsWhenBasisUnaddressableInPivot builds its Ps.19.0
// basis passage directly.
func testLeftWithZeroPsalm19() *fakeSystem {
	chapters := make([]chapterSpec, 19)
	chapters[18] = chapterSpec{verses: 2, zero: true}
	return newFakeSystem("TestLeftChapterBoundary", []bookSpec{
		{name: "Ps", chapters: chapters},
	})
}
