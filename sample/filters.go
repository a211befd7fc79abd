package sample

import (
	"sort"

	"github.com/carbocation/singlecell/countmatrix"
)

// Filters compose in whatever order the caller applies them, and the order
// matters: a later filter sees the already-shrunk sample, so dropping cells
// before dropping genes can retain a different gene set than the reverse.
// That interaction is the caller's to choose, not something these methods
// normalize away.

// KeepTopCellsByRank keeps the n cells with the highest transcript totals.
// Ties keep their original column order, and the surviving columns stay in
// the matrix's original order. n at or above the cell count is the identity;
// n at or below zero keeps nothing.
func (a *Aggregate) KeepTopCellsByRank(n int) (*Aggregate, error) {
	totals := a.TranscriptsPerCell()

	order := make([]int, len(totals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return totals[order[i]].Value > totals[order[j]].Value
	})

	if n < 0 {
		n = 0
	}
	if n > len(order) {
		n = len(order)
	}

	keep := make([]string, 0, n)
	for _, idx := range order[:n] {
		keep = append(keep, totals[idx].CellID)
	}

	return a.selectCells(keep)
}

// KeepCellsAboveTranscriptFloor keeps cells whose total transcript count is
// at least minTranscripts.
func (a *Aggregate) KeepCellsAboveTranscriptFloor(minTranscripts float64) (*Aggregate, error) {
	var keep []string
	for _, m := range a.TranscriptsPerCell() {
		if m.Value >= minTranscripts {
			keep = append(keep, m.CellID)
		}
	}
	if keep == nil {
		keep = []string{}
	}

	return a.selectCells(keep)
}

// DropCellsBelowGeneFloor drops cells in which fewer than minGenes genes
// were observed (count of at least 1).
func (a *Aggregate) DropCellsBelowGeneFloor(minGenes int) (*Aggregate, error) {
	var keep []string
	for _, m := range a.GenesPerCell(1) {
		if int(m.Value) >= minGenes {
			keep = append(keep, m.CellID)
		}
	}
	if keep == nil {
		keep = []string{}
	}

	return a.selectCells(keep)
}

// DropGenesBelowCellFloor drops genes observed (count of at least 1) in
// fewer than minCells cells. Each wrapped matrix is pruned against its own
// gene set. A floor of zero is the identity.
func (a *Aggregate) DropGenesBelowCellFloor(minCells int) (*Aggregate, error) {
	out := *a

	m1, err := dropSparseGenes(a.m1, minCells)
	if err != nil {
		return nil, err
	}
	out.m1 = m1

	if a.mixed {
		m2, err := dropSparseGenes(a.m2, minCells)
		if err != nil {
			return nil, err
		}
		out.m2 = m2
	}

	return &out, nil
}

func dropSparseGenes(m *countmatrix.Matrix, minCells int) (*countmatrix.Matrix, error) {
	genes := m.GeneIDs()
	counts := m.RowCountsAtLeast(1)

	keep := make([]string, 0, len(genes))
	for i, g := range genes {
		if counts[i] >= minCells {
			keep = append(keep, g)
		}
	}

	return m.SelectRows(keep)
}
