package countmatrix

import (
	"fmt"
)

// ColumnSums returns the per-cell total across all genes, aligned with
// CellIDs.
func (m *Matrix) ColumnSums() []float64 {
	out := make([]float64, len(m.cells))
	for g := range m.counts {
		for c, v := range m.counts[g] {
			out[c] += v
		}
	}
	return out
}

// ColumnSumsOver returns the per-cell total restricted to the given genes,
// aligned with CellIDs. An absent gene yields ErrUnknownLabel.
func (m *Matrix) ColumnSumsOver(geneIDs []string) ([]float64, error) {
	out := make([]float64, len(m.cells))
	for _, g := range geneIDs {
		gi, ok := m.geneIdx[g]
		if !ok {
			return nil, fmt.Errorf("gene %q: %w", g, ErrUnknownLabel)
		}
		for c, v := range m.counts[gi] {
			out[c] += v
		}
	}
	return out, nil
}

// RowSums returns per-gene totals across all cells. With no arguments the
// result is aligned with GeneIDs; with an explicit gene list it is aligned
// with that list. An absent gene yields ErrUnknownLabel.
func (m *Matrix) RowSums(geneIDs ...string) ([]float64, error) {
	if len(geneIDs) == 0 {
		geneIDs = m.genes
	}

	out := make([]float64, len(geneIDs))
	for i, g := range geneIDs {
		gi, ok := m.geneIdx[g]
		if !ok {
			return nil, fmt.Errorf("gene %q: %w", g, ErrUnknownLabel)
		}
		for _, v := range m.counts[gi] {
			out[i] += v
		}
	}
	return out, nil
}

// ColumnCountsAtLeast returns, per cell, the number of genes whose count is
// at least min. Aligned with CellIDs.
func (m *Matrix) ColumnCountsAtLeast(min float64) []int {
	out := make([]int, len(m.cells))
	for g := range m.counts {
		for c, v := range m.counts[g] {
			if v >= min {
				out[c]++
			}
		}
	}
	return out
}

// RowCountsAtLeast returns, per gene, the number of cells whose count is at
// least min. Aligned with GeneIDs.
func (m *Matrix) RowCountsAtLeast(min float64) []int {
	out := make([]int, len(m.genes))
	for g := range m.counts {
		for _, v := range m.counts[g] {
			if v >= min {
				out[g]++
			}
		}
	}
	return out
}
