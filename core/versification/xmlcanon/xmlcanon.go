// Package xmlcanon builds a catalog.System from an XML book/chapter/verse
// table instead of a Go source table, mirroring how the teacher's SWORD/OSIS
// tooling treats XML as the universal interchange format for Bible
// metadata (core/xml). Unlike original_source, which hard-codes every
// versification as a Java class, this lets a caller define one at runtime.
//
// Document shape:
//
//	<versification name="KJV">
//	  <book osis="Gen" chapters="31,25,24"/>
//	  <book osis="Ps" chapters="2*,2,2"/>
//	</versification>
//
// A chapter's verse count is followed by an optional '*' marking that the
// chapter also has an addressable verse 0 (psalm titles, Septuagint
// prologues) - e.g. "2*" is a 2-verse chapter that additionally has verse 0.
package xmlcanon

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/crosswire-go/versimap/core/versification/catalog"
)

// LoadFile reads path and builds a catalog.System from its contents.
func LoadFile(path string) (*catalog.System, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("xmlcanon: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog.System from an XML document's bytes.
func Parse(data []byte) (*catalog.System, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("xmlcanon: parsing XML: %w", err)
	}

	const vsnQuery = "//versification"
	if err := compileCheck(vsnQuery); err != nil {
		return nil, fmt.Errorf("xmlcanon: invalid query: %w", err)
	}
	vsnNode, err := xmlquery.Query(root, vsnQuery)
	if err != nil {
		return nil, fmt.Errorf("xmlcanon: invalid query: %w", err)
	}
	if vsnNode == nil {
		return nil, fmt.Errorf("xmlcanon: no <versification> element found")
	}
	name := vsnNode.SelectAttr("name")
	if name == "" {
		return nil, fmt.Errorf("xmlcanon: <versification> is missing a name attribute")
	}

	const bookQuery = "book"
	if err := compileCheck(bookQuery); err != nil {
		return nil, fmt.Errorf("xmlcanon: invalid query: %w", err)
	}
	bookNodes, err := xmlquery.QueryAll(vsnNode, bookQuery)
	if err != nil {
		return nil, fmt.Errorf("xmlcanon: invalid query: %w", err)
	}
	if len(bookNodes) == 0 {
		return nil, fmt.Errorf("xmlcanon: %q has no <book> elements", name)
	}

	books := make([]catalog.BookData, 0, len(bookNodes))
	for _, bn := range bookNodes {
		osisID := bn.SelectAttr("osis")
		if osisID == "" {
			return nil, fmt.Errorf("xmlcanon: <book> is missing an osis attribute")
		}
		chapters, err := parseChapters(bn.SelectAttr("chapters"))
		if err != nil {
			return nil, fmt.Errorf("xmlcanon: book %q: %w", osisID, err)
		}
		books = append(books, catalog.BookData{
			Name:     displayName(bn),
			OSIS:     osisID,
			Chapters: chapters,
		})
	}

	return catalog.New(name, books), nil
}

// displayName prefers an explicit "name" attribute, falling back to the
// OSIS ID - XML authors rarely bother with a separate display name.
func displayName(n *xmlquery.Node) string {
	if name := n.SelectAttr("name"); name != "" {
		return name
	}
	return n.SelectAttr("osis")
}

func parseChapters(raw string) ([]catalog.ChapterData, error) {
	if raw == "" {
		return nil, fmt.Errorf("missing chapters attribute")
	}
	tokens := strings.Split(raw, ",")
	chapters := make([]catalog.ChapterData, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		hasZero := strings.HasSuffix(tok, "*")
		tok = strings.TrimSuffix(tok, "*")
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("malformed chapter verse count %q: %w", tok, err)
		}
		chapters = append(chapters, catalog.ChapterData{Verses: n, HasZero: hasZero})
	}
	return chapters, nil
}

// compileCheck validates an XPath expression before it is handed to
// xmlquery, giving a precise compile error distinct from "query failed
// against this document" - the same two-step Compile-then-Query the
// teacher's core/xml.Document.XPath does.
func compileCheck(expr string) error {
	_, err := xpath.Compile(expr)
	return err
}
