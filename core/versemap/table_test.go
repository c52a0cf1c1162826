package versemap

import (
	"log/slog"
	"testing"

	"github.com/crosswire-go/versimap/core/versification"
)

func v(book string, chapter, number int) versification.Verse {
	return versification.Verse{Book: book, Chapter: chapter, Number: number}
}

func buildTable(t *testing.T, entries []Entry) *MappingTable {
	t.Helper()
	return Build(testLeft(), testPivot(), entries, slog.New(slog.NewTextHandler(discard{}, nil)))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// --- scenario 1: single shift ---

func TestTableSingleShift(t *testing.T) {
	tbl := buildTable(t, []Entry{{Key: "Gen.1.1", Value: "Gen.1.2"}})

	if got := tbl.Map(v("Gen", 1, 1)); !got.Contains(v("Gen", 1, 2)) || got.Cardinality() != 1 {
		t.Errorf("Map(Gen.1.1) = %v", got.Verses())
	}
	if got := tbl.Unmap(v("Gen", 1, 2)); !got.Contains(v("Gen", 1, 1)) || got.Cardinality() != 1 {
		t.Errorf("Unmap(Gen.1.2) = %v", got.Verses())
	}
	if tbl.HasErrors() {
		t.Error("HasErrors() = true for a clean build")
	}
}

// --- scenario 2: equal-cardinality ranges ---

func TestTableEqualRanges(t *testing.T) {
	tbl := buildTable(t, []Entry{{Key: "Gen.1.1-Gen.1.3", Value: "Gen.1.4-Gen.1.6"}})

	if got := tbl.Map(v("Gen", 1, 2)); !got.Contains(v("Gen", 1, 5)) {
		t.Errorf("Map(Gen.1.2) = %v, want Gen.1.5", got.Verses())
	}
	if got := tbl.Unmap(v("Gen", 1, 6)); !got.Contains(v("Gen", 1, 3)) {
		t.Errorf("Unmap(Gen.1.6) = %v, want Gen.1.3", got.Verses())
	}
}

// --- scenario 3: verse-0 elision ---

func TestTableVerseZeroElision(t *testing.T) {
	tbl := buildTable(t, []Entry{{Key: "Ps.3.0-Ps.3.2", Value: "Ps.3.1-Ps.3.2"}})

	if got := tbl.Map(v("Ps", 3, 1)); !got.Contains(v("Ps", 3, 1)) {
		t.Errorf("Map(Ps.3.1) = %v", got.Verses())
	}
	if got := tbl.Map(v("Ps", 3, 2)); !got.Contains(v("Ps", 3, 2)) {
		t.Errorf("Map(Ps.3.2) = %v", got.Verses())
	}
	// Verse 0 was elided during expansion; there is no forward relation for
	// it, and the pivot system has no verse 0 of its own to translate to
	// via the OSIS fallback, so the result is empty.
	if got := tbl.Map(v("Ps", 3, 0)); !got.IsEmpty() {
		t.Errorf("Map(Ps.3.0) = %v, want empty", got.Verses())
	}
}

func TestTableVerseZeroUnmappedFlag(t *testing.T) {
	tbl := buildTable(t, []Entry{
		{Key: flagZerosUnmapped, Value: ""},
		{Key: "Ps.3.0-Ps.3.2", Value: "Ps.3.1-Ps.3.2"},
	})

	if got := tbl.Map(v("Ps", 3, 0)); !got.IsEmpty() {
		t.Errorf("Map(Ps.3.0) = %v, want empty under !zerosUnmapped", got.Verses())
	}
	// Non-zero verses are unaffected by the flag.
	if got := tbl.Map(v("Ps", 3, 1)); !got.Contains(v("Ps", 3, 1)) {
		t.Errorf("Map(Ps.3.1) = %v", got.Verses())
	}
}

// !zerosUnmapped only governs the fallback path: an explicit forward
// entry for a verse 0 still wins, per spec.md §4.3's "if missing" scoping.
func TestTableExplicitZeroEntryOverridesUnmappedFlag(t *testing.T) {
	tbl := buildTable(t, []Entry{
		{Key: flagZerosUnmapped, Value: ""},
		{Key: "Ps.1.0", Value: "Ps.1.1"},
	})

	if got := tbl.Map(v("Ps", 1, 0)); !got.Contains(v("Ps", 1, 1)) || got.Cardinality() != 1 {
		t.Errorf("Map(Ps.1.0) = %v, want {Ps.1.1} despite !zerosUnmapped", got.Verses())
	}
}

// --- scenario 4: parts (one left verse splitting into several qualified
// pivot targets) ---

func TestTableParts(t *testing.T) {
	tbl := buildTable(t, []Entry{
		{Key: "Gen.1.1", Value: "Gen.1.1!a"},
		{Key: "Gen.1.1", Value: "Gen.1.2!b"},
	})

	keys := tbl.MapToQualified(v("Gen", 1, 1))
	if len(keys) != 2 {
		t.Fatalf("MapToQualified = %d keys, want 2", len(keys))
	}
	if keys[0].Part != "!a" || keys[1].Part != "!b" {
		t.Errorf("parts = %q, %q", keys[0].Part, keys[1].Part)
	}

	// Map unions both qualified targets, part tags aside.
	if got := tbl.Map(v("Gen", 1, 1)); got.Cardinality() != 2 {
		t.Errorf("Map(Gen.1.1) = %v, want cardinality 2", got.Verses())
	}

	// Exact part-qualified reverse lookup.
	exact := tbl.UnmapQualified(NewPresent(versification.NewPassageOf(v("Gen", 1, 1)), "!a"))
	if !exact.Contains(v("Gen", 1, 1)) {
		t.Errorf("UnmapQualified(!a) = %v", exact.Verses())
	}

	// The generic, part-stripped bucket is a superset written alongside
	// the qualified ones (Invariant 2).
	generic := tbl.Unmap(v("Gen", 1, 1))
	if !generic.Contains(v("Gen", 1, 1)) {
		t.Errorf("Unmap(Gen.1.1) generic bucket = %v", generic.Verses())
	}
}

// --- scenario 5: absent on the left ---

func TestTableAbsentInLeft(t *testing.T) {
	tbl := buildTable(t, []Entry{{Key: "?", Value: "Gen.1.5"}})

	if got := tbl.Unmap(v("Gen", 1, 5)); !got.IsEmpty() {
		t.Errorf("Unmap(Gen.1.5) = %v, want empty (known absent in left)", got.Verses())
	}
}

// --- scenario 6: offset ---

func TestTableOffset(t *testing.T) {
	tbl := buildTable(t, []Entry{{Key: "Gen.1.1-Gen.1.3", Value: "+1"}})

	if got := tbl.Map(v("Gen", 1, 1)); !got.Contains(v("Gen", 1, 2)) {
		t.Errorf("Map(Gen.1.1) = %v, want Gen.1.2", got.Verses())
	}
	if got := tbl.Map(v("Gen", 1, 3)); !got.Contains(v("Gen", 1, 4)) {
		t.Errorf("Map(Gen.1.3) = %v, want Gen.1.4", got.Verses())
	}
}

// --- absent-in-pivot section names ---

func TestTableAbsentInPivotSection(t *testing.T) {
	tbl := buildTable(t, []Entry{{Key: "Gen.1.1", Value: "?colophon"}})

	keys := tbl.MapToQualified(v("Gen", 1, 1))
	if len(keys) != 1 || keys[0].Kind != AbsentInPivot || keys[0].Section != "colophon" {
		t.Fatalf("keys = %+v", keys)
	}
	// AbsentInPivot contributes nothing to the plain Map union.
	if got := tbl.Map(v("Gen", 1, 1)); !got.IsEmpty() {
		t.Errorf("Map(Gen.1.1) = %v, want empty", got.Verses())
	}
}

// --- diagnostics / error accumulation ---

func TestTableRecordsCardinalityMismatch(t *testing.T) {
	tbl := buildTable(t, []Entry{{Key: "Gen.1.1-Gen.1.5", Value: "Gen.1.6-Gen.1.8"}})

	if !tbl.HasErrors() {
		t.Fatal("HasErrors() = false, want true")
	}
	records := tbl.Diagnostics().Records()
	if len(records) != 1 || records[0].Code != DiagCardinalityMismatch {
		t.Fatalf("records = %+v", records)
	}
}

func TestTableDiscardsBadEntryButKeepsGoodOnes(t *testing.T) {
	tbl := buildTable(t, []Entry{
		{Key: "Gen.1.1-Gen.1.5", Value: "Gen.1.6-Gen.1.8"}, // mismatch, discarded
		{Key: "Gen.1.1", Value: "Gen.1.2"},                 // valid
	})

	if !tbl.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
	if got := tbl.Map(v("Gen", 1, 1)); !got.Contains(v("Gen", 1, 2)) {
		t.Errorf("Map(Gen.1.1) = %v, still want Gen.1.2 despite the earlier bad entry", got.Verses())
	}
}

// --- string-form API ---

func TestTableStringAPI(t *testing.T) {
	tbl := buildTable(t, []Entry{{Key: "Gen.1.1", Value: "Gen.1.2"}})

	got, err := tbl.MapToString("Gen.1.1")
	if err != nil {
		t.Fatalf("MapToString: %v", err)
	}
	if got != "Gen.1.2" {
		t.Errorf("MapToString = %q, want %q", got, "Gen.1.2")
	}

	back, err := tbl.UnmapToString("Gen.1.2")
	if err != nil {
		t.Fatalf("UnmapToString: %v", err)
	}
	if back != "Gen.1.1" {
		t.Errorf("UnmapToString = %q, want %q", back, "Gen.1.1")
	}
}

func TestTableStringAPIRejectsMultiVerseLookup(t *testing.T) {
	tbl := buildTable(t, []Entry{{Key: "Gen.1.1", Value: "Gen.1.2"}})

	if _, err := tbl.MapToString("Gen.1.1-Gen.1.3"); err == nil {
		t.Fatal("MapToString succeeded on a multi-verse lookup")
	}
}

// --- OSIS fallback caching ---

func TestMapOsisFallbackIsNotCorruptedByCallerMutation(t *testing.T) {
	tbl := buildTable(t, nil)

	first := tbl.Map(v("Gen", 1, 5))
	if !first.Contains(v("Gen", 1, 5)) {
		t.Fatalf("Map(Gen.1.5) via OSIS fallback = %v, want Gen.1.5", first.Verses())
	}
	first.Add(v("Gen", 1, 9))

	second := tbl.Map(v("Gen", 1, 5))
	if second.Contains(v("Gen", 1, 9)) {
		t.Error("mutating one fallback result leaked into a later cached lookup")
	}
	if !second.Contains(v("Gen", 1, 5)) || second.Cardinality() != 1 {
		t.Errorf("Map(Gen.1.5) second call = %v, want only Gen.1.5", second.Verses())
	}
}

// --- Fingerprint determinism (Invariant 5) ---

func TestFingerprintIsDeterministic(t *testing.T) {
	entries := []Entry{
		{Key: "Gen.1.1-Gen.1.3", Value: "Gen.1.4-Gen.1.6"},
		{Key: "Ps.3.0-Ps.3.2", Value: "Ps.3.1-Ps.3.2"},
	}

	a := buildTable(t, entries)
	b := buildTable(t, entries)

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("Fingerprint differs across two builds of the same entries")
	}
}

func TestFingerprintChangesWithContent(t *testing.T) {
	a := buildTable(t, []Entry{{Key: "Gen.1.1", Value: "Gen.1.2"}})
	b := buildTable(t, []Entry{{Key: "Gen.1.1", Value: "Gen.1.3"}})

	if a.Fingerprint() == b.Fingerprint() {
		t.Error("Fingerprint matched for differing tables")
	}
}
