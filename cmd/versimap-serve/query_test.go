package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/crosswire-go/versimap/core/versemap"
	"github.com/crosswire-go/versimap/core/versification/catalog"
)

func newTestQueryTable(t *testing.T) *queryTable {
	t.Helper()
	left, err := catalog.Lookup("KJV")
	if err != nil {
		t.Fatalf("catalog.Lookup(KJV): %v", err)
	}
	pivot, err := catalog.Lookup("Vulgate")
	if err != nil {
		t.Fatalf("catalog.Lookup(Vulgate): %v", err)
	}
	entries := []versemap.Entry{{Key: "Gen.1.1", Value: "Gen.1.1"}}
	table := versemap.Build(left, pivot, entries, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return newQueryTable(table)
}

func TestQueryMapIsCaseInsensitiveOnOp(t *testing.T) {
	q := newTestQueryTable(t)

	for _, op := range []string{"map", "Map", "MAP"} {
		resp := q.query(request{ID: "1", Op: op, Ref: "Gen.1.1"})
		if resp.Error != "" {
			t.Errorf("op %q: unexpected error %q", op, resp.Error)
		}
		if resp.Result == "" {
			t.Errorf("op %q: empty result", op)
		}
	}
}

func TestQueryUnmapAndQualified(t *testing.T) {
	q := newTestQueryTable(t)

	if resp := q.query(request{Op: "unmap", Ref: "Gen.1.1"}); resp.Error != "" {
		t.Errorf("unmap: unexpected error %q", resp.Error)
	}
	if resp := q.query(request{Op: "qualified", Ref: "Gen.1.1"}); resp.Error != "" {
		t.Errorf("qualified: unexpected error %q", resp.Error)
	}
}

func TestQueryRejectsUnknownOp(t *testing.T) {
	q := newTestQueryTable(t)

	resp := q.query(request{ID: "x", Op: "delete", Ref: "Gen.1.1"})
	if resp.Error == "" {
		t.Error("query with an unrecognized op succeeded")
	}
	if resp.ID != "x" {
		t.Errorf("response ID = %q, want preserved %q", resp.ID, "x")
	}
}
