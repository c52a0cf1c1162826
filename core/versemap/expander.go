package versemap

import (
	"github.com/crosswire-go/versimap/core/versification"
)

// entrySink receives the relations one expanded entry produces. MappingTable
// implements it; EntryExpander never touches the table's indices directly,
// keeping the expansion algorithm free of storage concerns.
type entrySink interface {
	addRelation(left versification.Verse, pivot QualifiedKey)
	addAbsentInLeft(pivotPassage *versification.Passage)
	setZerosUnmapped()
}

// EntryExpander expands one shorthand entry (left, pivot) into atomic
// (leftVerse -> pivotQualifiedKey) relations, per spec.md §4.1. It is the
// only place cardinality reconciliation and the verse-0 elision heuristic
// happen.
type EntryExpander struct {
	leftParser  *ReferenceParser
	pivotParser *ReferenceParser
	offset      *OffsetResolver
	sink        entrySink
}

// NewEntryExpander builds an expander over the given left/pivot
// versifications, writing relations into sink.
func NewEntryExpander(left, pivot versification.Versification, sink entrySink) *EntryExpander {
	return &EntryExpander{
		leftParser:  NewReferenceParser(left),
		pivotParser: NewReferenceParser(pivot),
		offset:      NewOffsetResolver(pivot),
		sink:        sink,
	}
}

// flagZerosUnmapped is the one recognized global flag (spec.md §6.1).
const flagZerosUnmapped = "!zerosUnmapped"

// Expand processes one (leftText, pivotText) shorthand entry. It returns an
// error describing why the entry was discarded; a nil return means the
// entry contributed zero or more relations successfully.
func (e *EntryExpander) Expand(leftText, pivotText string) error {
	// Step 1: a leading '!' on the left text is a global flag, not a
	// mapping - it yields no relations.
	if len(leftText) > 0 && leftText[0] == '!' {
		if leftText == flagZerosUnmapped {
			e.sink.setZerosUnmapped()
			return nil
		}
		return &UnsupportedReferenceError{Text: leftText, Reason: "unrecognized flag"}
	}

	leftForm, err := classifyLeft(leftText)
	if err != nil {
		return err
	}

	// absentLeft entry: '?' = refList of pivot verses with no left
	// counterpart. These flow straight into AbsentSet; no forward/reverse
	// relation is written (spec.md §4.1 step 4).
	if leftForm == formAbsentMarker {
		pivotPassage, err := e.pivotParser.vsn.ParseOSIS(pivotText)
		if err != nil {
			return &ReferenceError{Text: pivotText, Err: err}
		}
		e.sink.addAbsentInLeft(pivotPassage)
		return nil
	}

	// Step 2: parse left as a real reference (always coerced to a range,
	// even a single verse - spec.md §4.1 step 2).
	leftPassage, _, err := e.leftParser.ParseRange(leftText)
	if err != nil {
		return err
	}
	leftVerses := leftPassage.Verses()
	if len(leftVerses) == 0 {
		return &ReferenceError{Text: leftText, Err: ErrEmptyReference}
	}

	// Step 3: parse pivot, with the left's passage as offset basis.
	pivotForm, err := classifyPivot(pivotText)
	if err != nil {
		return err
	}

	var pivotKey QualifiedKey
	switch pivotForm {
	case formAbsentNamed:
		pivotKey = NewAbsentInPivot(pivotText[1:])
	case formOffset:
		n, _ := parseOffsetDigits(pivotText)
		resolved, err := e.offset.Resolve(leftPassage, n)
		if err != nil {
			return err
		}
		pivotKey = NewPresent(resolved, "")
	default:
		pivotPassage, part, err := e.pivotParser.ParseRange(pivotText)
		if err != nil {
			return err
		}
		pivotKey = NewPresent(pivotPassage, part)
	}

	// Step 4: route by left cardinality.
	if len(leftVerses) == 1 {
		return e.expandOneToMany(leftVerses[0], pivotKey)
	}
	return e.expandManyToMany(leftVerses, pivotKey)
}

// expandOneToMany implements spec.md §4.1.1: a single left verse maps to
// whatever the pivot side resolved to, written whole into the forward
// index. Reverse decomposition (including the generic part-stripped
// bucket) is the sink's job - see MappingTable.addRelation.
func (e *EntryExpander) expandOneToMany(left versification.Verse, pivot QualifiedKey) error {
	e.sink.addRelation(left, pivot)
	return nil
}

// expandManyToMany implements spec.md §4.1.2: left has cardinality > 1.
func (e *EntryExpander) expandManyToMany(leftVerses []versification.Verse, pivot QualifiedKey) error {
	pivotCardinality := pivot.Cardinality()
	if pivotCardinality == 0 {
		// AbsentInPivot (or an empty Present passage, which ParseRange
		// never produces) behaves as cardinality 1 for alignment purposes.
		pivotCardinality = 1
	}

	leftCardinality := len(leftVerses)
	if pivotCardinality == 1 {
		for _, lv := range leftVerses {
			e.sink.addRelation(lv, pivot)
		}
		return nil
	}

	diff := leftCardinality - pivotCardinality
	if diff < 0 {
		diff = -diff
	}
	if diff > 1 {
		return &CardinalityError{Left: leftCardinality, Pivot: pivotCardinality}
	}

	pivotVerses := pivot.Passage.Verses()
	skipZero := diff == 1
	li, pi := 0, 0
	for li < len(leftVerses) {
		lv := leftVerses[li]
		li++
		if skipZero && lv.Number == 0 {
			continue
		}
		if pi >= len(pivotVerses) {
			return &CardinalityError{Left: leftCardinality, Pivot: pivotCardinality}
		}
		pv := pivotVerses[pi]
		pi++
		if skipZero && pv.Number == 0 {
			if pi >= len(pivotVerses) {
				return &CardinalityError{Left: leftCardinality, Pivot: pivotCardinality}
			}
			pv = pivotVerses[pi]
			pi++
		}
		e.sink.addRelation(lv, singleVerse(pv, ""))
	}
	if pi != len(pivotVerses) {
		return &CardinalityError{Left: leftCardinality, Pivot: pivotCardinality}
	}
	return nil
}
