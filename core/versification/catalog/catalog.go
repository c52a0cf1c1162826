// Package catalog provides concrete Versification handles built from
// book/chapter/verse tables, adapted from the SWORD canon tables the
// teacher's pure-Go SWORD reader embeds (canon.h for KJV, canon_vulg.h for
// Vulgate). The name registry behind Lookup/Register is a package-level,
// mutex-guarded map; the mapper itself never consults it - callers look a
// system up and pass the returned handle into versemap.Build themselves.
package catalog

import (
	"fmt"
	"sync"

	"github.com/crosswire-go/versimap/core/osisref"
	"github.com/crosswire-go/versimap/core/versification"
)

// ChapterData describes one chapter: how many verses it has, and whether it
// additionally has a verse 0 (used by traditions that address material
// preceding verse 1, such as psalm titles, as its own addressable verse).
type ChapterData struct {
	Verses  int
	HasZero bool
}

// BookData is the per-book verse table for one versification system.
type BookData struct {
	Name     string
	OSIS     string
	Chapters []ChapterData
}

// System is a Versification built from a static BookData table. Verse
// existence and ordering are both derived once, at construction, into a
// flat canonical ordering; all of Add/Subtract/Iterate/Ordinal are then
// simple slice/map lookups.
type System struct {
	id    string
	books []BookData

	order []versification.Verse
	index map[versification.Verse]int
}

// New builds a System from an id and a book table. It panics if the table
// contains a duplicate OSIS book ID or a non-positive chapter verse count,
// since both indicate a malformed catalog entry rather than bad caller
// input.
func New(id string, books []BookData) *System {
	s := &System{
		id:    id,
		books: books,
		index: make(map[versification.Verse]int),
	}
	seenBooks := make(map[string]struct{}, len(books))
	for _, b := range books {
		if _, dup := seenBooks[b.OSIS]; dup {
			panic(fmt.Sprintf("catalog: duplicate book %q in system %q", b.OSIS, id))
		}
		seenBooks[b.OSIS] = struct{}{}
		for ci, ch := range b.Chapters {
			if ch.Verses <= 0 {
				panic(fmt.Sprintf("catalog: %s %d has non-positive verse count in system %q", b.OSIS, ci+1, id))
			}
			first := 1
			if ch.HasZero {
				first = 0
			}
			for vn := first; vn <= ch.Verses; vn++ {
				v := versification.Verse{Book: b.OSIS, Chapter: ci + 1, Number: vn}
				s.index[v] = len(s.order)
				s.order = append(s.order, v)
			}
		}
	}
	return s
}

// Name implements versification.Versification.
func (s *System) Name() string { return s.id }

// Equal implements versification.Versification.
func (s *System) Equal(other versification.Versification) bool {
	o, ok := other.(*System)
	return ok && o.id == s.id
}

// Ordinal implements versification.Versification.
func (s *System) Ordinal(v versification.Verse) (int, error) {
	ord, ok := s.index[v]
	if !ok {
		return 0, fmt.Errorf("catalog: %s has no verse %s", s.id, v)
	}
	return ord, nil
}

// Add implements versification.Versification.
func (s *System) Add(v versification.Verse, n int) (versification.Verse, error) {
	if n < 0 {
		return versification.Verse{}, fmt.Errorf("catalog: Add requires n >= 0, got %d", n)
	}
	ord, ok := s.index[v]
	if !ok {
		return versification.Verse{}, fmt.Errorf("catalog: %s has no verse %s", s.id, v)
	}
	target := ord + n
	if target >= len(s.order) {
		return versification.Verse{}, fmt.Errorf("catalog: %s has no verse %d positions after %s", s.id, n, v)
	}
	return s.order[target], nil
}

// Subtract implements versification.Versification.
func (s *System) Subtract(v versification.Verse, n int) (versification.Verse, error) {
	if n < 0 {
		return versification.Verse{}, fmt.Errorf("catalog: Subtract requires n >= 0, got %d", n)
	}
	ord, ok := s.index[v]
	if !ok {
		return versification.Verse{}, fmt.Errorf("catalog: %s has no verse %s", s.id, v)
	}
	target := ord - n
	if target < 0 {
		return versification.Verse{}, fmt.Errorf("catalog: %s has no verse %d positions before %s", s.id, n, v)
	}
	return s.order[target], nil
}

// Iterate implements versification.Versification.
func (s *System) Iterate(r versification.VerseRange) ([]versification.Verse, error) {
	if r.Cardinality < 1 {
		return nil, fmt.Errorf("catalog: range cardinality must be >= 1, got %d", r.Cardinality)
	}
	start, ok := s.index[r.Start]
	if !ok {
		return nil, fmt.Errorf("catalog: %s has no verse %s", s.id, r.Start)
	}
	end := start + r.Cardinality
	if end > len(s.order) {
		return nil, fmt.Errorf("catalog: %s range starting at %s overruns the system with cardinality %d", s.id, r.Start, r.Cardinality)
	}
	out := make([]versification.Verse, r.Cardinality)
	copy(out, s.order[start:end])
	return out, nil
}

// ParseOSIS implements versification.Versification, delegating the textual
// grammar to package osisref and resolving each parsed reference/range
// against this system's own book/chapter/verse tables.
func (s *System) ParseOSIS(ref string) (*versification.Passage, error) {
	ranges, err := osisref.ParseList(ref)
	if err != nil {
		return nil, err
	}
	p := versification.NewPassage()
	for _, rg := range ranges {
		if err := s.addRangeToPassage(p, rg); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *System) addRangeToPassage(p *versification.Passage, rg osisref.Range) error {
	startVerse, err := s.resolveRef(rg.Start, 1)
	if err != nil {
		return err
	}
	if rg.End == nil {
		p.Add(startVerse)
		return nil
	}
	endRef := *rg.End
	if !endRef.HasChapter {
		// A bare book as a range end means its last chapter, the same
		// chapter lastVerseOf takes its verse count from.
		for _, b := range s.books {
			if b.OSIS == endRef.Book {
				endRef.Chapter, endRef.HasChapter = len(b.Chapters), true
			}
		}
	}
	endVerse, err := s.resolveRef(endRef, s.lastVerseOf(endRef))
	if err != nil {
		return err
	}
	startOrd, err := s.Ordinal(startVerse)
	if err != nil {
		return err
	}
	endOrd, err := s.Ordinal(endVerse)
	if err != nil {
		return err
	}
	if endOrd < startOrd {
		return fmt.Errorf("catalog: range %s ends before it starts in system %q", rg, s.id)
	}
	for ord := startOrd; ord <= endOrd; ord++ {
		p.Add(s.order[ord])
	}
	return nil
}

// resolveRef fills in a missing chapter with 1 and a missing verse with
// defaultVerse, then looks the resulting verse up to confirm it exists in
// this system.
func (s *System) resolveRef(ref osisref.Ref, defaultVerse int) (versification.Verse, error) {
	chapter := ref.Chapter
	if !ref.HasChapter {
		chapter = 1
	}
	verse := ref.Verse
	if !ref.HasVerse {
		verse = defaultVerse
	}
	v := versification.Verse{Book: ref.Book, Chapter: chapter, Number: verse}
	if _, ok := s.index[v]; !ok {
		return versification.Verse{}, fmt.Errorf("catalog: %s has no verse %s", s.id, v)
	}
	return v, nil
}

// lastVerseOf returns the final verse number of ref's chapter, used when a
// range's end reference omits its own verse (e.g. "Gen.1.1-Gen.2" ends at
// Gen.2's last verse, not Gen.2.1).
func (s *System) lastVerseOf(ref osisref.Ref) int {
	for _, b := range s.books {
		if b.OSIS != ref.Book {
			continue
		}
		chapter := ref.Chapter
		if !ref.HasChapter {
			chapter = len(b.Chapters)
		}
		if chapter < 1 || chapter > len(b.Chapters) {
			return 1
		}
		return b.Chapters[chapter-1].Verses
	}
	return 1
}

// FormatOSIS implements versification.Versification, collapsing contiguous
// runs (by canonical ordinal) into "Start-End" ranges and joining
// discontiguous runs with ";", the same separator ParseOSIS accepts.
func (s *System) FormatOSIS(p *versification.Passage) string {
	if p == nil || p.IsEmpty() {
		return ""
	}
	ords := make([]int, 0, p.Cardinality())
	for _, v := range p.Verses() {
		ord, err := s.Ordinal(v)
		if err != nil {
			continue
		}
		ords = append(ords, ord)
	}
	if len(ords) == 0 {
		return ""
	}
	sortInts(ords)

	var parts []string
	runStart := ords[0]
	prev := ords[0]
	flush := func(end int) {
		if runStart == end {
			parts = append(parts, s.order[runStart].String())
		} else {
			parts = append(parts, s.order[runStart].String()+"-"+s.order[end].String())
		}
	}
	for _, ord := range ords[1:] {
		if ord == prev+1 {
			prev = ord
			continue
		}
		flush(prev)
		runStart, prev = ord, ord
	}
	flush(prev)

	out := parts[0]
	for _, p := range parts[1:] {
		out += ";" + p
	}
	return out
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

var (
	registryMu sync.Mutex
	registry   = map[string]*System{
		"KJV":     New("KJV", kjvBooks),
		"Vulgate": New("Vulgate", vulgateBooks),
	}
)

// Lookup returns the named built-in system. It is not a package-level
// singleton in the sense JSword's Versifications registry is: the returned
// handle is a plain, immutable value that callers hold themselves; Lookup
// is only a convenience constructor for the handful of well-known systems
// shipped here. Register adds to or overrides this table, primarily for
// tests and for callers loading custom systems (e.g. via xmlcanon) that want
// them reachable by name alongside the built-ins.
func Lookup(name string) (*System, error) {
	registryMu.Lock()
	defer registryMu.Unlock()
	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("catalog: unknown versification system %q", name)
	}
	return s, nil
}

// Register adds or replaces a named system in the lookup table.
func Register(s *System) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[s.Name()] = s
}

// Names returns the currently registered system names.
func Names() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
