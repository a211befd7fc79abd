// Package countmatrix provides an immutable gene-by-cell numeric table for
// single-cell count data. Every operation that changes shape returns a new
// Matrix; the receiver is never modified, so a Matrix may be shared freely
// between analysis steps without copying or locking.
package countmatrix

import (
	"fmt"
)

// Matrix is a gene (row) by cell (column) grid of non-negative counts with
// unique string labels on both axes. The zero value is not usable; construct
// with New.
type Matrix struct {
	genes   []string
	cells   []string
	geneIdx map[string]int
	cellIdx map[string]int

	// counts is row-major: counts[g][c] is the count for gene g in cell c.
	// Each row has length len(cells).
	counts [][]float64
}

// New builds a Matrix from gene labels, cell labels, and a row-major count
// grid whose outer dimension is genes. All inputs are copied, so the caller
// may reuse its slices afterward. New returns ErrDimensionMismatch when the
// grid shape disagrees with the label counts, ErrDuplicateLabel when a gene
// or cell identifier repeats, and ErrNegativeCount when any count is below
// zero.
func New(geneIDs, cellIDs []string, counts [][]float64) (*Matrix, error) {
	if len(counts) != len(geneIDs) {
		return nil, fmt.Errorf("have %d gene labels but %d grid rows: %w", len(geneIDs), len(counts), ErrDimensionMismatch)
	}

	m := &Matrix{
		genes:   make([]string, len(geneIDs)),
		cells:   make([]string, len(cellIDs)),
		geneIdx: make(map[string]int, len(geneIDs)),
		cellIdx: make(map[string]int, len(cellIDs)),
		counts:  make([][]float64, len(geneIDs)),
	}

	copy(m.genes, geneIDs)
	copy(m.cells, cellIDs)

	for i, g := range m.genes {
		if _, seen := m.geneIdx[g]; seen {
			return nil, fmt.Errorf("gene %q: %w", g, ErrDuplicateLabel)
		}
		m.geneIdx[g] = i
	}

	for i, c := range m.cells {
		if _, seen := m.cellIdx[c]; seen {
			return nil, fmt.Errorf("cell %q: %w", c, ErrDuplicateLabel)
		}
		m.cellIdx[c] = i
	}

	for g, row := range counts {
		if len(row) != len(cellIDs) {
			return nil, fmt.Errorf("gene %q has %d counts but there are %d cells: %w", geneIDs[g], len(row), len(cellIDs), ErrDimensionMismatch)
		}

		m.counts[g] = make([]float64, len(row))
		for c, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("gene %q cell %q has count %g: %w", geneIDs[g], cellIDs[c], v, ErrNegativeCount)
			}
			m.counts[g][c] = v
		}
	}

	return m, nil
}

// GeneIDs returns a copy of the gene labels in row order.
func (m *Matrix) GeneIDs() []string {
	out := make([]string, len(m.genes))
	copy(out, m.genes)
	return out
}

// CellIDs returns a copy of the cell labels in column order.
func (m *Matrix) CellIDs() []string {
	out := make([]string, len(m.cells))
	copy(out, m.cells)
	return out
}

// NGenes reports the number of gene rows.
func (m *Matrix) NGenes() int { return len(m.genes) }

// NCells reports the number of cell columns.
func (m *Matrix) NCells() int { return len(m.cells) }

// HasCell reports whether the matrix has a column labeled cellID.
func (m *Matrix) HasCell(cellID string) bool {
	_, ok := m.cellIdx[cellID]
	return ok
}

// HasGene reports whether the matrix has a row labeled geneID.
func (m *Matrix) HasGene(geneID string) bool {
	_, ok := m.geneIdx[geneID]
	return ok
}

// At returns the count for one gene in one cell, or ErrUnknownLabel.
func (m *Matrix) At(geneID, cellID string) (float64, error) {
	g, ok := m.geneIdx[geneID]
	if !ok {
		return 0, fmt.Errorf("gene %q: %w", geneID, ErrUnknownLabel)
	}
	c, ok := m.cellIdx[cellID]
	if !ok {
		return 0, fmt.Errorf("cell %q: %w", cellID, ErrUnknownLabel)
	}

	return m.counts[g][c], nil
}

// Rows returns copies of the count rows for the requested genes, in the
// requested order. Each returned row is aligned with CellIDs.
func (m *Matrix) Rows(geneIDs []string) ([][]float64, error) {
	out := make([][]float64, len(geneIDs))
	for i, g := range geneIDs {
		gi, ok := m.geneIdx[g]
		if !ok {
			return nil, fmt.Errorf("gene %q: %w", g, ErrUnknownLabel)
		}

		out[i] = make([]float64, len(m.cells))
		copy(out[i], m.counts[gi])
	}

	return out, nil
}

// SelectColumns returns a new Matrix restricted to the requested cells. The
// surviving columns keep the receiver's relative order, not the order of the
// request. Requesting an absent cell yields ErrUnknownLabel; requesting the
// same cell twice yields ErrDuplicateLabel.
func (m *Matrix) SelectColumns(cellIDs []string) (*Matrix, error) {
	keep := make(map[string]struct{}, len(cellIDs))
	for _, c := range cellIDs {
		if _, ok := m.cellIdx[c]; !ok {
			return nil, fmt.Errorf("cell %q: %w", c, ErrUnknownLabel)
		}
		if _, seen := keep[c]; seen {
			return nil, fmt.Errorf("cell %q requested twice: %w", c, ErrDuplicateLabel)
		}
		keep[c] = struct{}{}
	}

	cols := make([]int, 0, len(keep))
	newCells := make([]string, 0, len(keep))
	for i, c := range m.cells {
		if _, ok := keep[c]; ok {
			cols = append(cols, i)
			newCells = append(newCells, c)
		}
	}

	out := &Matrix{
		genes:   m.genes,
		cells:   newCells,
		geneIdx: m.geneIdx,
		cellIdx: make(map[string]int, len(newCells)),
		counts:  make([][]float64, len(m.genes)),
	}
	for i, c := range newCells {
		out.cellIdx[c] = i
	}

	for g := range m.counts {
		row := make([]float64, len(cols))
		for i, c := range cols {
			row[i] = m.counts[g][c]
		}
		out.counts[g] = row
	}

	return out, nil
}

// SelectRows returns a new Matrix restricted to the requested genes. The
// surviving rows keep the receiver's relative order. Errors mirror
// SelectColumns.
func (m *Matrix) SelectRows(geneIDs []string) (*Matrix, error) {
	keep := make(map[string]struct{}, len(geneIDs))
	for _, g := range geneIDs {
		if _, ok := m.geneIdx[g]; !ok {
			return nil, fmt.Errorf("gene %q: %w", g, ErrUnknownLabel)
		}
		if _, seen := keep[g]; seen {
			return nil, fmt.Errorf("gene %q requested twice: %w", g, ErrDuplicateLabel)
		}
		keep[g] = struct{}{}
	}

	newGenes := make([]string, 0, len(keep))
	newCounts := make([][]float64, 0, len(keep))
	for i, g := range m.genes {
		if _, ok := keep[g]; ok {
			row := make([]float64, len(m.cells))
			copy(row, m.counts[i])
			newGenes = append(newGenes, g)
			newCounts = append(newCounts, row)
		}
	}

	out := &Matrix{
		genes:   newGenes,
		cells:   m.cells,
		geneIdx: make(map[string]int, len(newGenes)),
		cellIdx: m.cellIdx,
		counts:  newCounts,
	}
	for i, g := range newGenes {
		out.geneIdx[g] = i
	}

	return out, nil
}

// Equal reports whether two matrices have identical labels, order, and
// counts.
func (m *Matrix) Equal(o *Matrix) bool {
	if len(m.genes) != len(o.genes) || len(m.cells) != len(o.cells) {
		return false
	}
	for i, g := range m.genes {
		if o.genes[i] != g {
			return false
		}
	}
	for i, c := range m.cells {
		if o.cells[i] != c {
			return false
		}
	}
	for g := range m.counts {
		for c := range m.counts[g] {
			if m.counts[g][c] != o.counts[g][c] {
				return false
			}
		}
	}

	return true
}
