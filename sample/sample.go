// Package sample wraps one or two count matrices as a single analysis unit
// and derives per-cell summary metrics and quality filters from them. A
// single-species sample wraps one matrix; a mixed-species (barnyard) sample
// wraps one matrix per species, covering the same cells, with gene labels
// prefixed by species. All filters are pure: they return a new Aggregate and
// never touch the receiver, so intermediate aggregates can be kept and
// compared.
package sample

import (
	"fmt"

	"github.com/carbocation/singlecell/countmatrix"
)

// Aggregate is a tagged single- or mixed-species sample. Construct with
// NewSingle or NewMixed.
type Aggregate struct {
	mixed bool

	// m2 is nil for single-species samples.
	m1, m2             *countmatrix.Matrix
	species1, species2 string

	// cellSpecies optionally maps cell IDs to a species label for
	// mixed-species samples whose cells have been classified. Unlabeled
	// cells report SpeciesMixed.
	cellSpecies map[string]string
}

// SpeciesMixed is the species reported for cells of a mixed sample that have
// not been assigned an individual label.
const SpeciesMixed = "mixed"

// CellMetric is one per-cell value alongside the species label the cell
// belongs to, for downstream grouping.
type CellMetric struct {
	CellID  string  `csv:"cell_id"`
	Value   float64 `csv:"value"`
	Species string  `csv:"species"`
}

// NewSingle wraps one matrix as a single-species sample.
func NewSingle(m *countmatrix.Matrix, species string) (*Aggregate, error) {
	if species == "" {
		return nil, fmt.Errorf("single-species sample needs a species label: %w", ErrBadSpecies)
	}

	return &Aggregate{m1: m, species1: species}, nil
}

// NewMixed wraps two matrices, one per species, as a mixed-species sample.
// Both matrices must carry the same cells in the same column order.
func NewMixed(m1 *countmatrix.Matrix, species1 string, m2 *countmatrix.Matrix, species2 string) (*Aggregate, error) {
	if species1 == "" || species2 == "" || species1 == species2 {
		return nil, fmt.Errorf("mixed sample needs two distinct species labels, got %q and %q: %w", species1, species2, ErrBadSpecies)
	}

	c1, c2 := m1.CellIDs(), m2.CellIDs()
	if len(c1) != len(c2) {
		return nil, fmt.Errorf("%d vs %d cells: %w", len(c1), len(c2), ErrCellMismatch)
	}
	for i := range c1 {
		if c1[i] != c2[i] {
			return nil, fmt.Errorf("column %d: %q vs %q: %w", i, c1[i], c2[i], ErrCellMismatch)
		}
	}

	return &Aggregate{mixed: true, m1: m1, m2: m2, species1: species1, species2: species2}, nil
}

// WithCellLabels returns a copy of the aggregate whose cells carry the given
// species labels (typically the output of a species classification). The
// label map is copied.
func (a *Aggregate) WithCellLabels(labels map[string]string) *Aggregate {
	out := *a
	out.cellSpecies = make(map[string]string, len(labels))
	for k, v := range labels {
		out.cellSpecies[k] = v
	}
	return &out
}

// IsMixed reports whether the sample wraps two species.
func (a *Aggregate) IsMixed() bool { return a.mixed }

// Species returns the species label(s) of the sample.
func (a *Aggregate) Species() []string {
	if a.mixed {
		return []string{a.species1, a.species2}
	}
	return []string{a.species1}
}

// Matrices returns the wrapped matrix or matrices.
func (a *Aggregate) Matrices() []*countmatrix.Matrix {
	if a.mixed {
		return []*countmatrix.Matrix{a.m1, a.m2}
	}
	return []*countmatrix.Matrix{a.m1}
}

// CellIDs returns the sample's cells, always recomputed from the underlying
// matrix columns.
func (a *Aggregate) CellIDs() []string {
	return a.m1.CellIDs()
}

func (a *Aggregate) speciesFor(cellID string) string {
	if !a.mixed {
		return a.species1
	}
	if s, ok := a.cellSpecies[cellID]; ok {
		return s
	}
	return SpeciesMixed
}

// GenesPerCell returns, per cell, the number of genes observed with at least
// minUMI counts, summed across the wrapped matrices.
func (a *Aggregate) GenesPerCell(minUMI float64) []CellMetric {
	counts := a.m1.ColumnCountsAtLeast(minUMI)
	if a.mixed {
		for i, n := range a.m2.ColumnCountsAtLeast(minUMI) {
			counts[i] += n
		}
	}

	cells := a.CellIDs()
	out := make([]CellMetric, len(cells))
	for i, c := range cells {
		out[i] = CellMetric{CellID: c, Value: float64(counts[i]), Species: a.speciesFor(c)}
	}
	return out
}

// TranscriptsPerCell returns the per-cell total count across all genes of
// all wrapped matrices.
func (a *Aggregate) TranscriptsPerCell() []CellMetric {
	sums := a.m1.ColumnSums()
	if a.mixed {
		for i, v := range a.m2.ColumnSums() {
			sums[i] += v
		}
	}

	cells := a.CellIDs()
	out := make([]CellMetric, len(cells))
	for i, c := range cells {
		out[i] = CellMetric{CellID: c, Value: sums[i], Species: a.speciesFor(c)}
	}
	return out
}

// selectCells rebuilds the aggregate around the given cells, applied to
// every wrapped matrix.
func (a *Aggregate) selectCells(cellIDs []string) (*Aggregate, error) {
	out := *a

	m1, err := a.m1.SelectColumns(cellIDs)
	if err != nil {
		return nil, err
	}
	out.m1 = m1

	if a.mixed {
		m2, err := a.m2.SelectColumns(cellIDs)
		if err != nil {
			return nil, err
		}
		out.m2 = m2
	}

	return &out, nil
}
