package sample

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// BulkComparison summarizes how well a sample's pseudobulk expression agrees
// with an external bulk reference.
type BulkComparison struct {
	SharedGenes int
	// Pearson is computed on log10(1+x) values, since raw counts are
	// dominated by a handful of very highly expressed genes.
	Pearson float64
}

// CompareWithBulk sums each gene across all cells (a pseudobulk profile) and
// correlates it with a bulk reference keyed by gene label. Genes absent from
// either side are ignored; fewer than two shared genes yields
// ErrNoSharedGenes.
func (a *Aggregate) CompareWithBulk(ref map[string]float64) (BulkComparison, error) {
	var sampleVals, refVals []float64

	for _, m := range a.Matrices() {
		sums, err := m.RowSums()
		if err != nil {
			return BulkComparison{}, err
		}

		for i, g := range m.GeneIDs() {
			refV, ok := ref[g]
			if !ok {
				continue
			}
			sampleVals = append(sampleVals, math.Log10(1+sums[i]))
			refVals = append(refVals, math.Log10(1+refV))
		}
	}

	if len(sampleVals) < 2 {
		return BulkComparison{}, fmt.Errorf("%d genes shared with reference: %w", len(sampleVals), ErrNoSharedGenes)
	}

	r, err := stats.Pearson(sampleVals, refVals)
	if err != nil {
		return BulkComparison{}, err
	}

	return BulkComparison{SharedGenes: len(sampleVals), Pearson: r}, nil
}
