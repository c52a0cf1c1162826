// Package osisref is the external OSIS reference parser/serializer
// collaborator referenced (but not implemented) by the versification
// mapper's spec: it turns the textual form "Book.Chapter.Verse", optionally
// ranged ("Book.C.V-Book.C.V") or listed (";"-separated), into structured
// references, and back again.
//
// This package knows nothing about versifications, part markers, or the
// mapper's shorthand grammar - it is a thin, generic OSIS-ID grammar, the
// kind of narrow contract spec.md §1 carves out as "out of scope".
package osisref

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Ref is a single OSIS reference: a book, and optionally a chapter and
// verse. Chapter == 0 means "whole book"; Verse == 0 is a legitimate verse
// number (not "whole chapter") since this domain's verse-0 conventions are
// meaningful (see versification package).
type Ref struct {
	Book       string
	Chapter    int
	Verse      int
	HasChapter bool
	HasVerse   bool
}

// String renders the reference in dotted OSIS form.
func (r Ref) String() string {
	var sb strings.Builder
	sb.WriteString(r.Book)
	if r.HasChapter {
		sb.WriteString(".")
		sb.WriteString(strconv.Itoa(r.Chapter))
		if r.HasVerse {
			sb.WriteString(".")
			sb.WriteString(strconv.Itoa(r.Verse))
		}
	}
	return sb.String()
}

// Range is a reference, optionally extended to a second reference
// ("Book.C.V-Book.C.V"). A Range with End == nil is a single reference.
type Range struct {
	Start Ref
	End   *Ref
}

// String renders the range in dotted OSIS form.
func (rg Range) String() string {
	if rg.End == nil {
		return rg.Start.String()
	}
	return rg.Start.String() + "-" + rg.End.String()
}

// refGrammar is the participle grammar for a single OSIS reference.
// Examples: "Gen", "Gen.1", "Gen.1.1", "Gen.1.0", "1John.3.16".
//
//nolint:govet // participle grammar tags are not standard struct tags
type refGrammar struct {
	BookPrefix string       `@Int?`
	BookName   string       `@Ident`
	ChapterRef *chapterPart `( "." @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type chapterPart struct {
	Chapter int        `@Int`
	Verse   *versePart `( "." @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type versePart struct {
	Number int `@Int`
}

//nolint:govet // participle grammar tags are not standard struct tags
type rangeGrammar struct {
	Start refGrammar  `@@`
	End   *refGrammar `( "-" @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type listGrammar struct {
	Ranges []rangeGrammar `@@ ( ";" @@ )*`
}

var osisLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Z][A-Za-z]*`},
	{Name: "Punct", Pattern: `[.\-;]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var refParser = participle.MustBuild[refGrammar](
	participle.Lexer(osisLexer),
	participle.Elide("Whitespace"),
)

var rangeParser = participle.MustBuild[rangeGrammar](
	participle.Lexer(osisLexer),
	participle.Elide("Whitespace"),
)

var listParser = participle.MustBuild[listGrammar](
	participle.Lexer(osisLexer),
	participle.Elide("Whitespace"),
)

func toRef(g *refGrammar) Ref {
	ref := Ref{Book: g.BookPrefix + g.BookName}
	if g.ChapterRef != nil {
		ref.HasChapter = true
		ref.Chapter = g.ChapterRef.Chapter
		if g.ChapterRef.Verse != nil {
			ref.HasVerse = true
			ref.Verse = g.ChapterRef.Verse.Number
		}
	}
	return ref
}

// ParseRef parses a single OSIS reference, e.g. "Gen.1.1".
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, fmt.Errorf("osisref: empty reference")
	}
	parsed, err := refParser.ParseString("", s)
	if err != nil {
		return Ref{}, fmt.Errorf("osisref: invalid reference %q: %w", s, err)
	}
	return toRef(parsed), nil
}

// ParseRange parses a reference, optionally extended by "-End", e.g.
// "Gen.1.1-Gen.1.3".
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, fmt.Errorf("osisref: empty reference")
	}
	parsed, err := rangeParser.ParseString("", s)
	if err != nil {
		return Range{}, fmt.Errorf("osisref: invalid range %q: %w", s, err)
	}
	rg := Range{Start: toRef(&parsed.Start)}
	if parsed.End != nil {
		end := toRef(parsed.End)
		rg.End = &end
	}
	return rg, nil
}

// ParseList parses a ";"-separated sequence of ranges, e.g.
// "Gen.1.1;Gen.1.5".
func ParseList(s string) ([]Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("osisref: empty reference list")
	}
	parsed, err := listParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("osisref: invalid reference list %q: %w", s, err)
	}
	out := make([]Range, 0, len(parsed.Ranges))
	for _, r := range parsed.Ranges {
		rg := Range{Start: toRef(&r.Start)}
		if r.End != nil {
			end := toRef(r.End)
			rg.End = &end
		}
		out = append(out, rg)
	}
	return out, nil
}
