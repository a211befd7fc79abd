package sample

import (
	"fmt"
	"regexp"

	"gonum.org/v1/gonum/stat"
)

// MitochondrialPercentage returns, per cell, the percentage of total counts
// coming from genes whose label matches pattern (e.g. `(?i)^mt-` for mouse,
// or a prefixed form for barnyard labels). A pattern matching zero genes
// yields ErrNoMatchingGenes rather than a table of zeros, because it almost
// always means the pattern was written for the wrong species or label
// convention. Cells with zero total counts report zero percent.
func (a *Aggregate) MitochondrialPercentage(pattern *regexp.Regexp) ([]CellMetric, error) {
	cells := a.CellIDs()
	mito := make([]float64, len(cells))
	total := make([]float64, len(cells))

	matched := 0
	for _, m := range a.Matrices() {
		var mitoGenes []string
		for _, g := range m.GeneIDs() {
			if pattern.MatchString(g) {
				mitoGenes = append(mitoGenes, g)
			}
		}
		matched += len(mitoGenes)

		sums, err := m.ColumnSumsOver(mitoGenes)
		if err != nil {
			return nil, err
		}
		for i, v := range sums {
			mito[i] += v
		}
		for i, v := range m.ColumnSums() {
			total[i] += v
		}
	}

	if matched == 0 {
		return nil, fmt.Errorf("pattern %q: %w", pattern, ErrNoMatchingGenes)
	}

	out := make([]CellMetric, len(cells))
	for i, c := range cells {
		pct := 0.0
		if total[i] > 0 {
			pct = 100 * mito[i] / total[i]
		}
		out[i] = CellMetric{CellID: c, Value: pct, Species: a.speciesFor(c)}
	}

	return out, nil
}

// FlagOutliers returns the cell IDs whose metric value falls outside
// mean +/- nSD standard deviations, in input order. With fewer than two
// cells no bounds can be estimated and nothing is flagged.
func FlagOutliers(metrics []CellMetric, nSD float64) []string {
	value := make([]float64, 0, len(metrics))
	for _, m := range metrics {
		value = append(value, m.Value)
	}

	mean, sd := stat.MeanStdDev(value, nil)

	var out []string
	for _, m := range metrics {
		if m.Value < mean-nSD*sd || m.Value > mean+nSD*sd {
			out = append(out, m.CellID)
		}
	}
	return out
}
