// Package barcode detects and merges cell barcodes that were split by a
// synthesis error. On some bead lots a barcode can be read out both in its
// true form and in a variant whose final base was called as the ambiguous
// placeholder, so one physical cell shows up as two (or more) columns in the
// count matrix. Barcodes that share a long leading prefix, where at least one
// of them ends in the placeholder base, are treated as the same cell and
// their columns are summed.
package barcode

import (
	"sort"

	"github.com/carbocation/singlecell/countmatrix"
)

const (
	// DefaultAmbiguousBase is the placeholder emitted by base callers for an
	// undetermined base.
	DefaultAmbiguousBase = 'N'

	// DefaultPrefixLen is the number of leading bases two barcodes must share
	// to be considered the same cell.
	DefaultPrefixLen = 11
)

// CollapseGroup is a set of barcodes judged to represent one physical cell.
// Members is sorted lexicographically and Target is its first element, which
// becomes the merged column's label.
type CollapseGroup struct {
	Target  string
	Members []string
}

// FindCollapseGroups scans the barcodes for runs that share their first
// prefixLen bases where at least one member of each adjacent pair ends in
// ambiguousBase. The scan sorts the barcodes and walks adjacent pairs;
// qualifying pairs that share a member chain transitively into a single
// group, so a run of three colliding barcodes yields one group of three
// rather than two overlapping pairs.
//
// Because only sorted-adjacent pairs are compared, two same-prefix barcodes
// separated in sort order by a third barcode that does not itself qualify
// will not be grouped. With an 11-base prefix over 12-base barcodes the sort
// keeps same-prefix barcodes adjacent, so this only matters for much longer
// barcodes.
//
// Barcodes shorter than prefixLen never group. Groups are returned in sorted
// order of their Target.
func FindCollapseGroups(cellIDs []string, ambiguousBase byte, prefixLen int) []CollapseGroup {
	sorted := make([]string, len(cellIDs))
	copy(sorted, cellIDs)
	sort.Strings(sorted)

	var out []CollapseGroup
	var run []string

	flush := func() {
		if len(run) > 1 {
			members := make([]string, len(run))
			copy(members, run)
			out = append(out, CollapseGroup{Target: members[0], Members: members})
		}
		run = nil
	}

	for _, bc := range sorted {
		if len(run) > 0 && collapsible(run[len(run)-1], bc, ambiguousBase, prefixLen) {
			run = append(run, bc)
			continue
		}
		flush()
		run = []string{bc}
	}
	flush()

	return out
}

// collapsible reports whether two barcodes look like the same cell: equal
// prefixes, and at least one of the two ends in the ambiguous base.
func collapsible(a, b string, ambiguousBase byte, prefixLen int) bool {
	if prefixLen <= 0 || len(a) < prefixLen || len(b) < prefixLen {
		return false
	}
	if a[:prefixLen] != b[:prefixLen] {
		return false
	}

	return a[len(a)-1] == ambiguousBase || b[len(b)-1] == ambiguousBase
}

// Collapse merges each group's columns into a single column labeled with the
// group's Target. Group members absent from the matrix are skipped, which
// makes Collapse idempotent: applying the same groups to an already-collapsed
// matrix finds nothing left to merge and returns an equal matrix. With no
// applicable groups the input matrix is returned unchanged.
func Collapse(m *countmatrix.Matrix, groups []CollapseGroup) (*countmatrix.Matrix, error) {
	merges := make([]countmatrix.MergeGroup, 0, len(groups))
	for _, grp := range groups {
		present := make([]string, 0, len(grp.Members))
		for _, bc := range grp.Members {
			if m.HasCell(bc) {
				present = append(present, bc)
			}
		}

		// A group whose members have already been folded into the target
		// contributes nothing further.
		if len(present) < 2 {
			continue
		}

		merges = append(merges, countmatrix.MergeGroup{Target: grp.Target, Sources: present})
	}

	if len(merges) == 0 {
		return m, nil
	}

	return m.MergeColumns(merges)
}
