package mappingfile

import "testing"

func TestParseStringBasicEntries(t *testing.T) {
	input := `
# a comment line is ignored
!zerosUnmapped
Gen.1.1 = Gen.1.2
Gen.1.2=Gen.1.3
?=Gen.1.5;Gen.1.6
Ps.3.0-Ps.3.2 = Ps.3.1-Ps.3.2
`
	entries, err := ParseString(input)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	want := []struct{ key, value string }{
		{"!zerosUnmapped", ""},
		{"Gen.1.1", "Gen.1.2"},
		{"Gen.1.2", "Gen.1.3"},
		{"?", "Gen.1.5;Gen.1.6"},
		{"Ps.3.0-Ps.3.2", "Ps.3.1-Ps.3.2"},
	}
	if len(entries) != len(want) {
		t.Fatalf("len(entries) = %d, want %d: %+v", len(entries), len(want), entries)
	}
	for i, w := range want {
		if entries[i].Key != w.key || entries[i].Value != w.value {
			t.Errorf("entries[%d] = %+v, want {%q %q}", i, entries[i], w.key, w.value)
		}
	}
}

func TestParseStringPreservesOrder(t *testing.T) {
	input := "Gen.1.3=Gen.1.4\nGen.1.1=Gen.1.2\nGen.1.2=Gen.1.3\n"
	entries, err := ParseString(input)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	order := []string{"Gen.1.3", "Gen.1.1", "Gen.1.2"}
	for i, key := range order {
		if entries[i].Key != key {
			t.Errorf("entries[%d].Key = %q, want %q", i, entries[i].Key, key)
		}
	}
}

func TestParseStringEmptyInput(t *testing.T) {
	entries, err := ParseString("\n\n  \n")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("len(entries) = %d, want 0", len(entries))
	}
}

func TestParseStringOnlyComments(t *testing.T) {
	entries, err := ParseString("# nothing here\n# still nothing\n")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("len(entries) = %d, want 0", len(entries))
	}
}

func TestSplitKeyValue(t *testing.T) {
	tests := []struct {
		content, key, value string
	}{
		{"Gen.1.1 = Gen.1.2", "Gen.1.1", "Gen.1.2"},
		{"!zerosUnmapped", "!zerosUnmapped", ""},
		{"a=", "a", ""},
		{"  Gen.1.1=Gen.1.2  ", "Gen.1.1", "Gen.1.2"},
	}
	for _, tt := range tests {
		key, value := splitKeyValue(tt.content)
		if key != tt.key || value != tt.value {
			t.Errorf("splitKeyValue(%q) = (%q, %q), want (%q, %q)", tt.content, key, value, tt.key, tt.value)
		}
	}
}
