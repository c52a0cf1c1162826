package versemap

import (
	"strings"

	"github.com/crosswire-go/versimap/core/versification"
)

// Kind discriminates the three mutually exclusive cases a QualifiedKey can
// hold (spec.md §3).
type Kind int

const (
	// Present is a real reference, possibly annotated with a sub-verse
	// part tag.
	Present Kind = iota
	// AbsentInLeft signals that the associated pivot passage has no
	// counterpart in the left system.
	AbsentInLeft
	// AbsentInPivot signals that the left reference has no pivot
	// counterpart; Section preserves the literal name for rendering.
	AbsentInPivot
)

func (k Kind) String() string {
	switch k {
	case Present:
		return "present"
	case AbsentInLeft:
		return "absent-in-left"
	case AbsentInPivot:
		return "absent-in-pivot"
	default:
		return "unknown"
	}
}

// QualifiedKey is the tagged union spec.md §3 describes: a real reference
// (Present, optionally with a Part tag), a pivot passage with no left
// counterpart (AbsentInLeft), or a left reference with no pivot counterpart
// (AbsentInPivot, identified by Section instead of a passage).
//
// Part follows the rendering convention (the marker character included,
// e.g. "!a") consistently, per §3's invariant that an implementation must
// pick one convention. It is only meaningful when Kind == Present and the
// underlying passage is a single verse.
type QualifiedKey struct {
	Kind    Kind
	Passage *versification.Passage // Present, AbsentInLeft
	Part    string                 // Present only; includes the "!" marker
	Section string                 // AbsentInPivot only
}

// NewPresent returns a Present key wrapping a passage, with an optional
// part tag (pass "" for none). part is stored as given, so it should already
// be in the "!a" form; PartTag adds the marker to a bare name.
func NewPresent(p *versification.Passage, part string) QualifiedKey {
	return QualifiedKey{Kind: Present, Passage: p, Part: part}
}

// NewAbsentInLeft returns an AbsentInLeft key wrapping the pivot passage
// that has no left counterpart.
func NewAbsentInLeft(p *versification.Passage) QualifiedKey {
	return QualifiedKey{Kind: AbsentInLeft, Passage: p}
}

// NewAbsentInPivot returns an AbsentInPivot key carrying the literal
// section name.
func NewAbsentInPivot(section string) QualifiedKey {
	return QualifiedKey{Kind: AbsentInPivot, Section: section}
}

// PartTag normalizes a raw part string (with or without its leading "!")
// into the rendering convention ("!a"), or "" if raw is empty.
func PartTag(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "!") {
		return raw
	}
	return "!" + raw
}

// PartName strips the leading "!" marker, returning "" if there is none.
func PartName(tag string) string {
	return strings.TrimPrefix(tag, "!")
}

// Cardinality returns the number of verses the key's underlying passage
// covers. AbsentInPivot has no passage and reports 0.
func (qk QualifiedKey) Cardinality() int {
	if qk.Passage == nil {
		return 0
	}
	return qk.Passage.Cardinality()
}

// withoutPart returns a copy of qk with its Part tag cleared - the generic
// reverse-index bucket written alongside any part-qualified one (spec.md
// §3, §4.1.3, Invariant 2).
func (qk QualifiedKey) withoutPart() QualifiedKey {
	qk.Part = ""
	return qk
}

// singleVerse returns a Present key for exactly one verse, carrying part.
func singleVerse(v versification.Verse, part string) QualifiedKey {
	return NewPresent(versification.NewPassageOf(v), part)
}

// String renders the qualified-key form from spec.md §6.3: an
// AbsentInPivot key renders as its literal section name; a Present key
// renders as its OSIS reference, with "!part" appended when Part is set.
func (qk QualifiedKey) String(vsn versification.Versification) string {
	switch qk.Kind {
	case AbsentInPivot:
		return qk.Section
	case AbsentInLeft:
		if qk.Passage == nil {
			return ""
		}
		return qk.Passage.OSISRef(vsn)
	default: // Present
		if qk.Passage == nil {
			return ""
		}
		return qk.Passage.OSISRef(vsn) + qk.Part
	}
}

// identity is the canonical string used as a reverse-index map key: it
// must distinguish every atomic (single-verse-or-section) pivot target
// from every other, independent of rendering concerns. Unlike String, it
// does not need a Versification - it is built directly from the verse
// triple so it stays stable even if OSIS rendering changes.
func (qk QualifiedKey) identity() string {
	switch qk.Kind {
	case AbsentInPivot:
		return "section:" + qk.Section
	default:
		if qk.Passage == nil || qk.Passage.IsEmpty() {
			return "empty"
		}
		return "verse:" + qk.Passage.Verses()[0].String() + qk.Part
	}
}
