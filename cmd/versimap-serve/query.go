package main

import (
	"fmt"

	"golang.org/x/text/cases"

	"github.com/crosswire-go/versimap/core/versemap"
)

// fold normalizes an operation name for comparison - clients sending
// "Map", "MAP", or "map" should all reach the same handler.
var fold = cases.Fold()

// queryTable answers the three operations a client can ask of a running
// server: map, unmap, and qualified. It wraps a compiled MappingTable,
// which already does its own bounded caching for the OSIS fallback path
// (see MappingTable.translateViaOsis), so no cache lives at this layer.
type queryTable struct {
	table *versemap.MappingTable
}

func newQueryTable(table *versemap.MappingTable) *queryTable {
	return &queryTable{table: table}
}

func (q *queryTable) query(req request) response {
	resp := response{ID: req.ID, Op: req.Op, Ref: req.Ref}

	var result string
	var err error
	switch fold.String(req.Op) {
	case "map":
		result, err = q.table.MapToString(req.Ref)
	case "unmap":
		result, err = q.table.UnmapToString(req.Ref)
	case "qualified":
		result, err = q.table.MapToQualifiedString(req.Ref)
	default:
		err = fmt.Errorf("unrecognized op %q: want map, unmap, or qualified", req.Op)
	}

	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Result = result
	return resp
}
