package versemap

import (
	"encoding/hex"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/golang/groupcache/lru"
	"github.com/zeebo/blake3"

	"github.com/crosswire-go/versimap/core/versification"
)

// osisFallbackCacheSize bounds the memoization of translateViaOsis
// results. The fallback path is the expensive one (render OSIS, reparse
// under the other system), and the same boundary verses tend to be
// queried repeatedly by a long-running consumer such as versimap-serve.
const osisFallbackCacheSize = 4096

// Entry is one already-tokenized shorthand key/value pair (spec.md §1:
// "the core accepts an already-tokenized sequence of key/value string
// pairs" - loading the mapping file itself is out of scope; see package
// mappingfile).
type Entry struct {
	Key   string
	Value string
}

type reverseBucket struct {
	key     QualifiedKey
	passage *versification.Passage
}

// MappingTable holds the compiled forward and reverse indices and answers
// map/unmap queries (spec.md §4.3). It is built once and is logically
// immutable thereafter (spec.md §5).
type MappingTable struct {
	left, pivot   versification.Versification
	zerosUnmapped bool

	forward map[versification.Verse][]QualifiedKey
	reverse map[string]*reverseBucket
	absent  *versification.Passage

	diagnostics  *Diagnostics
	osisFallback *lru.Cache
}

// Build compiles entries into a MappingTable against the given left and
// pivot versifications. Errors are never returned from Build itself - per
// spec.md §6.2, construction has no error return; every per-entry failure
// is captured in Diagnostics and the entry is discarded (spec.md §4.8).
// A nil logger falls back to slog.Default().
func Build(left, pivot versification.Versification, entries []Entry, logger *slog.Logger) *MappingTable {
	t := &MappingTable{
		left:         left,
		pivot:        pivot,
		forward:      make(map[versification.Verse][]QualifiedKey),
		reverse:      make(map[string]*reverseBucket),
		absent:       versification.NewPassage(),
		diagnostics:  NewDiagnostics(logger),
		osisFallback: lru.New(osisFallbackCacheSize),
	}
	expander := NewEntryExpander(left, pivot, t)
	for _, e := range entries {
		if err := expander.Expand(e.Key, e.Value); err != nil {
			t.diagnostics.Record(codeFor(err), e.Key, e.Value, err)
		}
	}
	return t
}

func codeFor(err error) DiagnosticCode {
	switch {
	case errors.Is(err, ErrCardinalityMismatch):
		return DiagCardinalityMismatch
	case errors.Is(err, ErrOffsetWithoutBasis):
		return DiagOffsetWithoutBasis
	case errors.Is(err, ErrUnsupportedReference), errors.Is(err, ErrUnsupportedMultiVerseLookup):
		return DiagUnsupportedRef
	case errors.Is(err, ErrEmptyReference):
		return DiagEmptyReference
	default:
		return DiagUnknownReference
	}
}

// --- entrySink ---

func (t *MappingTable) setZerosUnmapped() { t.zerosUnmapped = true }

func (t *MappingTable) addAbsentInLeft(pivotPassage *versification.Passage) {
	t.absent.AddAll(pivotPassage)
}

func (t *MappingTable) addRelation(left versification.Verse, pivot QualifiedKey) {
	t.forward[left] = append(t.forward[left], pivot)
	t.writeReverse(pivot, versification.NewPassageOf(left))
}

// writeReverse decomposes pivot into the atomic (single-verse-or-section)
// keys the reverse index is keyed by, per spec.md §4.1.1: a cardinality-1
// (or AbsentInPivot) key is written as-is; a wider pivot range is expanded
// verse-by-verse.
func (t *MappingTable) writeReverse(pivot QualifiedKey, leftContribution *versification.Passage) {
	if pivot.Kind == AbsentInPivot || pivot.Cardinality() <= 1 {
		t.writeReverseAtomic(pivot, leftContribution)
		return
	}
	for _, v := range pivot.Passage.Verses() {
		t.writeReverseAtomic(singleVerse(v, ""), leftContribution)
	}
}

// writeReverseAtomic writes leftContribution into key's bucket, and, when
// key carries a part, additionally into the generic part-stripped bucket
// (spec.md §3 "reverse index", §4.1.3, Invariant 2).
func (t *MappingTable) writeReverseAtomic(key QualifiedKey, leftContribution *versification.Passage) {
	t.unionReverseBucket(key, leftContribution)
	if key.Part != "" {
		t.unionReverseBucket(key.withoutPart(), leftContribution)
	}
}

func (t *MappingTable) unionReverseBucket(key QualifiedKey, leftContribution *versification.Passage) {
	id := key.identity()
	b, ok := t.reverse[id]
	if !ok {
		b = &reverseBucket{key: key, passage: versification.NewPassage()}
		t.reverse[id] = b
	}
	b.passage.AddAll(leftContribution)
}

// --- query API (spec.md §4.3, §6.2) ---

// Map implements the forward lookup: a single left verse to its equivalent
// pivot passage.
func (t *MappingTable) Map(leftKey versification.Verse) *versification.Passage {
	if keys, ok := t.forward[leftKey]; ok {
		out := versification.NewPassage()
		for _, qk := range keys {
			if qk.Kind == AbsentInPivot {
				continue
			}
			out.AddAll(qk.Passage)
		}
		return out
	}
	if t.zerosUnmapped && leftKey.Number == 0 {
		return versification.NewPassage()
	}
	return t.translateViaOsis(leftKey, t.left, t.pivot)
}

// MapToQualified mirrors Map but preserves part tags and absent-section
// names for rendering (spec.md §4.3). A miss returns nil - it
// deliberately does not fall back to translateViaOsis, since a qualified
// key's entire point is to reflect the table's own compiled shape.
func (t *MappingTable) MapToQualified(leftKey versification.Verse) []QualifiedKey {
	return t.forward[leftKey]
}

// Unmap implements the reverse lookup: a single pivot verse to its
// equivalent left passage.
func (t *MappingTable) Unmap(pivotKey versification.Verse) *versification.Passage {
	return t.UnmapQualified(singleVerse(pivotKey, ""))
}

// UnmapQualified is Unmap generalized to a full QualifiedKey, so a part
// tag or an absent-in-pivot section name can participate in the lookup
// exactly as spec.md §4.3 describes: retry with the part stripped on a
// miss, then consult AbsentSet, then fall back to OSIS translation.
func (t *MappingTable) UnmapQualified(pivotKey QualifiedKey) *versification.Passage {
	if b, ok := t.reverse[pivotKey.identity()]; ok {
		return b.passage
	}
	if pivotKey.Part != "" {
		if b, ok := t.reverse[pivotKey.withoutPart().identity()]; ok {
			return b.passage
		}
	}
	if pivotKey.Kind == Present && pivotKey.Passage != nil {
		for _, v := range pivotKey.Passage.Verses() {
			if t.absent.Contains(v) {
				return versification.NewPassage()
			}
		}
		if pivotKey.Passage.Cardinality() == 1 {
			return t.translateViaOsis(pivotKey.Passage.Verses()[0], t.pivot, t.left)
		}
	}
	return versification.NewPassage()
}

// HasErrors reports whether any entry failed to compile.
func (t *MappingTable) HasErrors() bool { return t.diagnostics.HasErrors() }

// Diagnostics returns the table's diagnostics sink.
func (t *MappingTable) Diagnostics() *Diagnostics { return t.diagnostics }

// translateViaOsis is the best-effort fallback named in spec.md §4.3 and
// discussed in §9 ("Best-effort OSIS fallback"): render v's OSIS reference
// under source and re-parse it under target. Failure is non-fatal - it is
// logged to diagnostics and yields an empty passage, never propagated to
// the caller.
func (t *MappingTable) translateViaOsis(v versification.Verse, source, target versification.Versification) *versification.Passage {
	cacheKey := fallbackCacheKey{verse: v, sourceName: source.Name(), targetName: target.Name()}
	if cached, ok := t.osisFallback.Get(cacheKey); ok {
		out := versification.NewPassage()
		out.AddAll(cached.(*versification.Passage))
		return out
	}

	ref := source.FormatOSIS(versification.NewPassageOf(v))
	passage, err := target.ParseOSIS(ref)
	if err != nil {
		t.diagnostics.RecordQueryFallback(ref, err)
		return versification.NewPassage()
	}
	t.osisFallback.Add(cacheKey, passage)
	out := versification.NewPassage()
	out.AddAll(passage)
	return out
}

// fallbackCacheKey identifies a translateViaOsis call. Direction matters -
// Map and Unmap translate through the two systems in opposite order - so
// both system names are part of the key, not just the verse.
type fallbackCacheKey struct {
	verse      versification.Verse
	sourceName string
	targetName string
}

// --- string-form API (spec.md §6.2) ---

// MapToString parses ref under the left versification, maps it, and
// renders the result under the pivot versification.
func (t *MappingTable) MapToString(ref string) (string, error) {
	v, err := t.coerceSingleVerse(t.left, ref)
	if err != nil {
		return "", err
	}
	return t.Map(v).OSISRef(t.pivot), nil
}

// MapToQualifiedString is MapToString's qualified-key counterpart: the
// rendered form joins multiple qualified keys with a single space
// (spec.md §6.3).
func (t *MappingTable) MapToQualifiedString(ref string) (string, error) {
	v, err := t.coerceSingleVerse(t.left, ref)
	if err != nil {
		return "", err
	}
	keys := t.MapToQualified(v)
	if len(keys) == 0 {
		return "", nil
	}
	rendered := make([]string, len(keys))
	for i, k := range keys {
		rendered[i] = k.String(t.pivot)
	}
	return strings.Join(rendered, " "), nil
}

// UnmapToString parses ref under the pivot versification, unmaps it, and
// renders the result under the left versification.
func (t *MappingTable) UnmapToString(ref string) (string, error) {
	v, err := t.coerceSingleVerse(t.pivot, ref)
	if err != nil {
		return "", err
	}
	return t.Unmap(v).OSISRef(t.left), nil
}

// coerceSingleVerse parses ref and requires it resolve to exactly one
// verse, per spec.md §7's UnsupportedMultiVerseLookup.
func (t *MappingTable) coerceSingleVerse(vsn versification.Versification, ref string) (versification.Verse, error) {
	if ref == "" {
		return versification.Verse{}, &ReferenceError{Text: ref, Err: ErrEmptyReference}
	}
	passage, err := vsn.ParseOSIS(ref)
	if err != nil {
		return versification.Verse{}, &ReferenceError{Text: ref, Err: err}
	}
	if passage.Cardinality() != 1 {
		return versification.Verse{}, &MultiVerseLookupError{Text: ref, Cardinality: passage.Cardinality()}
	}
	return passage.Verses()[0], nil
}

// Fingerprint returns a BLAKE3 content hash of the compiled forward and
// reverse indices, letting a caller cheaply assert that two builds from
// the same entry stream produced byte-identical indices (spec.md §8
// Invariant 5, idempotence) without enumerating every bucket themselves.
func (t *MappingTable) Fingerprint() string {
	var sb strings.Builder

	leftKeys := make([]versification.Verse, 0, len(t.forward))
	for k := range t.forward {
		leftKeys = append(leftKeys, k)
	}
	sortVerses(leftKeys)
	for _, lk := range leftKeys {
		sb.WriteString(lk.String())
		for _, qk := range t.forward[lk] {
			sb.WriteByte('|')
			sb.WriteString(qk.identity())
		}
		sb.WriteByte('\n')
	}

	ids := make([]string, 0, len(t.reverse))
	for id := range t.reverse {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		b := t.reverse[id]
		verses := append([]versification.Verse(nil), b.passage.Verses()...)
		sortVerses(verses)
		sb.WriteString(id)
		sb.WriteString("=>")
		for _, v := range verses {
			sb.WriteString(v.String())
			sb.WriteByte(',')
		}
		sb.WriteByte('\n')
	}

	sum := blake3.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

func sortVerses(vs []versification.Verse) {
	sort.Slice(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if a.Book != b.Book {
			return a.Book < b.Book
		}
		if a.Chapter != b.Chapter {
			return a.Chapter < b.Chapter
		}
		return a.Number < b.Number
	})
}
