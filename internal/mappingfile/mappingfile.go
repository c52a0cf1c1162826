// Package mappingfile tokenizes the shorthand "key = value" mapping-file
// grammar (spec §6.1) into []versemap.Entry. Loading the mapping file is
// named out of scope for the core mapper itself - this is the collaborator
// that closes the gap so a mapping file on disk can actually drive a build.
package mappingfile

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/crosswire-go/versimap/core/versemap"
)

// line is one non-blank, non-comment line of raw text. Splitting it into a
// key and a value is done in Go, not in the grammar, matching how the
// teacher's SWORD .conf tokenizer captures a whole "Key=Value" property
// token and only later splits it on the first '='.
type line struct {
	Content string `@Line`
}

type mappingFile struct {
	Lines []line `@@*`
}

// fileLexer recognizes comment lines, content lines, and the whitespace/
// newlines between them. Line's first character excludes '#', so a line
// starting with '#' always lexes as a Comment. A '#' later in a content line
// is part of that Line; trailing comments are not stripped.
var fileLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\r\n]*`},
	{Name: "Line", Pattern: `[^ \t\r\n#][^\r\n]*`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
	{Name: "Newline", Pattern: `[\r\n]+`},
})

var fileParser = participle.MustBuild[mappingFile](
	participle.Lexer(fileLexer),
	participle.Elide("Comment", "Whitespace", "Newline"),
)

// ParseString tokenizes a mapping file's contents into entries, in file
// order. A line with no '=' is treated as a bare flag key (e.g.
// "!zerosUnmapped") with an empty value - see versemap.EntryExpander.Expand.
func ParseString(input string) ([]versemap.Entry, error) {
	f, err := fileParser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("mappingfile: %w", err)
	}
	entries := make([]versemap.Entry, 0, len(f.Lines))
	for _, l := range f.Lines {
		key, value := splitKeyValue(l.Content)
		entries = append(entries, versemap.Entry{Key: key, Value: value})
	}
	return entries, nil
}

// ParseBytes is ParseString over a byte slice.
func ParseBytes(input []byte) ([]versemap.Entry, error) {
	return ParseString(string(input))
}

// LoadFile reads path and tokenizes its contents.
func LoadFile(path string) ([]versemap.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mappingfile: %w", err)
	}
	return ParseBytes(data)
}

// splitKeyValue splits raw line content on its first '=', trimming
// surrounding whitespace from both sides. Content with no '=' is a bare
// flag key with an empty value.
func splitKeyValue(content string) (string, string) {
	idx := strings.Index(content, "=")
	if idx < 0 {
		return strings.TrimSpace(content), ""
	}
	key := strings.TrimSpace(content[:idx])
	value := strings.TrimSpace(content[idx+1:])
	return key, value
}
