package versemap

import (
	"strconv"
	"strings"

	"github.com/crosswire-go/versimap/core/versification"
)

// ReferenceParser is the thin adapter over the external OSIS parser named
// in spec.md §4.4: it strips a trailing "!part" token, hands the remainder
// to the owning Versification's OSIS parser, and coerces the result to a
// range (a single verse is a range of cardinality 1).
type ReferenceParser struct {
	vsn versification.Versification
}

// NewReferenceParser returns a parser that resolves references against vsn.
func NewReferenceParser(vsn versification.Versification) *ReferenceParser {
	return &ReferenceParser{vsn: vsn}
}

// ParseRange parses a ref_or_range token (spec.md §6.1:
// "osisRef ('-' osisRef)? ('!' partTag)?") into a passage plus its part
// tag, if any.
//
// Known ambiguity (SPEC_FULL.md Open Question 1, from spec.md §9): the
// part marker is recognized only after the LAST '!' in the text, matching
// the documented source behavior exactly - for "1Kgs.18.33!b-1Kgs.18.34"
// this means the part becomes the literal string "b-1Kgs.18.34" and the
// range's end ("-1Kgs.18.34") is silently absorbed into it rather than
// parsed. This is preserved verbatim, not fixed.
func (p *ReferenceParser) ParseRange(text string) (*versification.Passage, string, error) {
	if text == "" {
		return nil, "", &ReferenceError{Text: text, Err: ErrEmptyReference}
	}
	body, part := splitLastPart(text)
	if body == "" {
		return nil, "", &ReferenceError{Text: text, Err: ErrEmptyReference}
	}
	passage, err := p.vsn.ParseOSIS(body)
	if err != nil {
		return nil, "", &ReferenceError{Text: text, Err: err}
	}
	return passage, PartTag(part), nil
}

// splitLastPart splits text at its last '!', returning (body, part) with
// part excluding the marker. With no '!' present, part is "".
func splitLastPart(text string) (string, string) {
	idx := strings.LastIndex(text, "!")
	if idx < 0 {
		return text, ""
	}
	return text[:idx], text[idx+1:]
}

// sideForm classifies the first character of a shorthand side, per
// spec.md §4.1 step 1.
type sideForm int

const (
	formReference sideForm = iota
	formAbsentMarker
	formAbsentNamed
	formOffset
)

// classifyLeft recognizes the left-hand forms spec.md §4.1 step 1-2
// define: a bare "?" (the absentLeft entry form) or a reference. A "?"
// followed by anything else is the left-hand shape spec.md §9 Open
// Question 2 leaves undefined; this implementation rejects it (see
// SPEC_FULL.md Open Question resolutions).
func classifyLeft(text string) (sideForm, error) {
	if text == "?" {
		return formAbsentMarker, nil
	}
	if strings.HasPrefix(text, "?") {
		return 0, &UnsupportedReferenceError{Text: text, Reason: "'?' prefix is only valid as the literal absent-left entry key"}
	}
	return formReference, nil
}

// classifyPivot recognizes the right-hand forms spec.md §6.1's rhs rule
// defines: "?sectionName" (absent in pivot), "+N"/"-N" (offset), or a
// plain reference.
func classifyPivot(text string) (sideForm, error) {
	if strings.HasPrefix(text, "?") {
		return formAbsentNamed, nil
	}
	if strings.HasPrefix(text, "+") || strings.HasPrefix(text, "-") {
		if _, err := parseOffsetDigits(text); err != nil {
			return 0, &ReferenceError{Text: text, Err: err}
		}
		return formOffset, nil
	}
	return formReference, nil
}

func parseOffsetDigits(text string) (int, error) {
	sign := 1
	digits := text[1:]
	if strings.HasPrefix(text, "-") {
		sign = -1
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, &ReferenceError{Text: text, Err: ErrUnknownReference}
	}
	return sign * n, nil
}
