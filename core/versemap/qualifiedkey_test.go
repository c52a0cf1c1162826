package versemap

import (
	"testing"

	"github.com/crosswire-go/versimap/core/versification"
)

func TestPartTagNormalization(t *testing.T) {
	tests := []struct{ raw, want string }{
		{"", ""},
		{"a", "!a"},
		{"!a", "!a"},
		{"b", "!b"},
	}
	for _, tt := range tests {
		if got := PartTag(tt.raw); got != tt.want {
			t.Errorf("PartTag(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestPartNameStripsMarker(t *testing.T) {
	if got := PartName("!a"); got != "a" {
		t.Errorf("PartName(!a) = %q, want %q", got, "a")
	}
	if got := PartName(""); got != "" {
		t.Errorf("PartName(\"\") = %q, want empty", got)
	}
}

func TestQualifiedKeyStringRendering(t *testing.T) {
	pivot := testPivot()

	present := NewPresent(versification.NewPassageOf(v("Gen", 1, 1)), "!a")
	if got, want := present.String(pivot), "Gen.1.1!a"; got != want {
		t.Errorf("Present.String() = %q, want %q", got, want)
	}

	section := NewAbsentInPivot("colophon")
	if got, want := section.String(pivot), "colophon"; got != want {
		t.Errorf("AbsentInPivot.String() = %q, want %q", got, want)
	}
}

func TestQualifiedKeyIdentityDistinguishesParts(t *testing.T) {
	p := versification.NewPassageOf(v("Gen", 1, 1))
	a := NewPresent(p, "!a")
	b := NewPresent(p, "!b")
	plain := NewPresent(p, "")

	if a.identity() == b.identity() {
		t.Error("identity() did not distinguish two different parts of the same verse")
	}
	if a.identity() == plain.identity() {
		t.Error("identity() did not distinguish a part-qualified key from the plain key")
	}
}

func TestQualifiedKeyWithoutPart(t *testing.T) {
	p := versification.NewPassageOf(v("Gen", 1, 1))
	withPart := NewPresent(p, "!a")

	stripped := withPart.withoutPart()
	if stripped.Part != "" {
		t.Errorf("withoutPart().Part = %q, want empty", stripped.Part)
	}
	if withPart.Part != "!a" {
		t.Error("withoutPart() mutated the receiver")
	}
}

func TestQualifiedKeyCardinality(t *testing.T) {
	multi := NewPresent(versification.NewPassageOf(v("Gen", 1, 1), v("Gen", 1, 2)), "")
	if got := multi.Cardinality(); got != 2 {
		t.Errorf("Cardinality() = %d, want 2", got)
	}
	section := NewAbsentInPivot("colophon")
	if got := section.Cardinality(); got != 0 {
		t.Errorf("AbsentInPivot Cardinality() = %d, want 0", got)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{Present, "present"},
		{AbsentInLeft, "absent-in-left"},
		{AbsentInPivot, "absent-in-pivot"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}
