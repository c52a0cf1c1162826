package versemap

import (
	"github.com/crosswire-go/versimap/core/versification"
)

// OffsetResolver interprets "+N"/"-N" pivot-side entries against a basis
// key previously parsed from the left side (spec.md §4.2).
type OffsetResolver struct {
	pivot versification.Versification
}

// NewOffsetResolver returns a resolver that constructs ranges in pivot.
func NewOffsetResolver(pivot versification.Versification) *OffsetResolver {
	return &OffsetResolver{pivot: pivot}
}

// Resolve extracts basis's first range (start, cardinality), shifts start
// by n under the pivot versification's own arithmetic, and extends the
// result to cardinality verses. Offsets crossing book/chapter boundaries
// are permitted - that arithmetic is entirely delegated to the
// Versification.
//
// basis must resolve to a single contiguous VerseRange, never a
// multi-range Passage (SPEC_FULL.md Open Question 3, from spec.md §9):
// only that single-range path is implemented here, matching the one real
// (non-commented-out) path in the source this was distilled from.
func (r *OffsetResolver) Resolve(basis *versification.Passage, n int) (*versification.Passage, error) {
	if basis == nil || basis.IsEmpty() {
		return nil, &OffsetError{Offset: n, Reason: "basis has no verses"}
	}
	verses := basis.Verses()
	if !isContiguous(verses) {
		return nil, &UnsupportedReferenceError{
			Text:   "offset basis",
			Reason: "offset basis must be a single contiguous range, not a multi-range passage",
		}
	}
	cardinality := len(verses)
	start := verses[0]

	var newStart versification.Verse
	var err error
	if n >= 0 {
		newStart, err = r.pivot.Add(start, n)
	} else {
		newStart, err = r.pivot.Subtract(start, -n)
	}
	if err != nil {
		return nil, &OffsetError{Offset: n, Reason: err.Error()}
	}

	result, err := r.pivot.Iterate(versification.VerseRange{Start: newStart, Cardinality: cardinality})
	if err != nil {
		return nil, &OffsetError{Offset: n, Reason: err.Error()}
	}
	return versification.NewPassageOf(result...), nil
}

// isContiguous reports whether verses, in order, form a single chapter-
// relative run - the cheap structural check available without asking the
// versification for ordinals (a true multi-range Passage, e.g. one built
// from two disjoint ";"-joined references, will have a number jump). Within
// a chapter each verse must follow the previous one by exactly 1; a step
// into the next chapter is accepted at any verse number, since chapter
// lengths are not consulted, so a gap spanning a chapter boundary is not
// detected.
// A book change is never contiguous: this function deliberately never asks
// the Versification which book canonically follows which, so it cannot
// distinguish a genuine book-boundary crossing from two unrelated books
// dropped next to each other (e.g. a ";"-joined left side) - it rejects
// both, matching SPEC_FULL.md Open Question 3's resolution.
func isContiguous(verses []versification.Verse) bool {
	for i := 1; i < len(verses); i++ {
		prev, cur := verses[i-1], verses[i]
		if cur.Book != prev.Book {
			return false
		}
		if cur.Chapter == prev.Chapter && cur.Number == prev.Number+1 {
			continue
		}
		if cur.Chapter == prev.Chapter+1 {
			continue
		}
		return false
	}
	return true
}
