// Package versification defines the data model and external contract the
// versification mapper (package versemap) is built against: verses, verse
// ranges, passages, and the opaque Versification handle itself.
//
// Versification is treated as an external collaborator (see spec §1): the
// mapper never reaches into a versification's book/chapter/verse tables
// directly, it only calls Name, Equal, Ordinal, Add, Subtract, Iterate,
// ParseOSIS and FormatOSIS. Concrete catalogs of real systems live in the
// sibling catalog package.
package versification

import "fmt"

// Verse is a (book, chapter, verse-number) triple. Verse number 0 is legal
// and denotes material that precedes verse 1 in some numbering traditions
// (titles, Septuagint prologues).
type Verse struct {
	Book    string
	Chapter int
	Number  int
}

// String renders the verse in dotted OSIS form, e.g. "Gen.1.1".
func (v Verse) String() string {
	return fmt.Sprintf("%s.%d.%d", v.Book, v.Chapter, v.Number)
}

// Equal reports whether two verses denote the same (book, chapter, verse).
func (v Verse) Equal(o Verse) bool {
	return v.Book == o.Book && v.Chapter == o.Chapter && v.Number == o.Number
}

// VerseRange is a contiguous pair (start Verse, cardinality >= 1) within one
// Versification.
type VerseRange struct {
	Start       Verse
	Cardinality int
}

// NewSingleVerseRange returns a range of cardinality 1 starting (and ending)
// at v. A single verse is always treated as a range of cardinality 1 per
// spec §4.1 step 2.
func NewSingleVerseRange(v Verse) VerseRange {
	return VerseRange{Start: v, Cardinality: 1}
}

// Passage is an ordered set of Verses, built by union. Order reflects the
// order verses were first added (duplicates are dropped on insertion); it is
// not resorted into canonical book order, since nothing in this mapper
// depends on that.
type Passage struct {
	verses []Verse
	seen   map[Verse]struct{}
}

// NewPassage returns an empty passage.
func NewPassage() *Passage {
	return &Passage{seen: make(map[Verse]struct{})}
}

// NewPassageOf returns a passage containing exactly the given verses, in
// order, deduplicated.
func NewPassageOf(verses ...Verse) *Passage {
	p := NewPassage()
	for _, v := range verses {
		p.Add(v)
	}
	return p
}

// Add unions a single verse into the passage.
func (p *Passage) Add(v Verse) {
	if p.seen == nil {
		p.seen = make(map[Verse]struct{})
	}
	if _, ok := p.seen[v]; ok {
		return
	}
	p.seen[v] = struct{}{}
	p.verses = append(p.verses, v)
}

// AddAll unions every verse of other into p. A nil other is a no-op.
func (p *Passage) AddAll(other *Passage) {
	if other == nil {
		return
	}
	for _, v := range other.verses {
		p.Add(v)
	}
}

// AddRange unions every verse of a VerseRange, as iterated by vsn.
func (p *Passage) AddRange(vsn Versification, r VerseRange) error {
	verses, err := vsn.Iterate(r)
	if err != nil {
		return err
	}
	for _, v := range verses {
		p.Add(v)
	}
	return nil
}

// Contains reports whether v is a member of the passage.
func (p *Passage) Contains(v Verse) bool {
	if p == nil || p.seen == nil {
		return false
	}
	_, ok := p.seen[v]
	return ok
}

// ContainsAll reports whether every verse of other is a member of p.
func (p *Passage) ContainsAll(other *Passage) bool {
	if other == nil {
		return true
	}
	for _, v := range other.verses {
		if !p.Contains(v) {
			return false
		}
	}
	return true
}

// Verses returns the passage's verses in insertion order. The returned slice
// must not be mutated by callers.
func (p *Passage) Verses() []Verse {
	if p == nil {
		return nil
	}
	return p.verses
}

// Cardinality returns the number of distinct verses in the passage.
func (p *Passage) Cardinality() int {
	if p == nil {
		return 0
	}
	return len(p.verses)
}

// IsEmpty reports whether the passage has no verses.
func (p *Passage) IsEmpty() bool {
	return p.Cardinality() == 0
}

// OSISRef renders the passage as an OSIS reference string via vsn.
func (p *Passage) OSISRef(vsn Versification) string {
	if p == nil {
		return ""
	}
	return vsn.FormatOSIS(p)
}

// Versification is the opaque, external handle the mapper is built against.
// Implementations are expected to be read-only and safe for concurrent use
// once constructed; the mapper never mutates one.
type Versification interface {
	// Name returns a human-readable identifier, e.g. "KJV".
	Name() string

	// Equal reports whether other denotes the same versification system.
	Equal(other Versification) bool

	// Ordinal returns a monotonically increasing integer for v, usable to
	// compare two verses for canonical order. Returns an error if v does not
	// exist in this system.
	Ordinal(v Verse) (int, error)

	// Add returns the verse n positions after v, honoring this system's
	// book/chapter boundaries. n must be >= 0.
	Add(v Verse, n int) (Verse, error)

	// Subtract returns the verse n positions before v, honoring this
	// system's book/chapter boundaries. n must be >= 0.
	Subtract(v Verse, n int) (Verse, error)

	// Iterate returns the cardinality-many verses of r, in canonical order.
	Iterate(r VerseRange) ([]Verse, error)

	// ParseOSIS parses an OSIS reference string (a single verse, a chapter,
	// a book, or a "A-B" range) into a Passage under this versification.
	ParseOSIS(ref string) (*Passage, error)

	// FormatOSIS renders a passage as an OSIS reference string under this
	// versification.
	FormatOSIS(p *Passage) string
}
