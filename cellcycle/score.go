// Package cellcycle scores cells against a marker-gene table, assigning each
// cell the cycle phase whose marker genes it expresses most highly. The
// marker table is plain data supplied by the caller (phase name to ordered
// gene list); this package does not parse files.
package cellcycle

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/carbocation/singlecell/countmatrix"
)

// ErrNoMarkers indicates an empty marker table, or a table none of whose
// genes appear in the matrix.
var ErrNoMarkers = errors.New("cellcycle: no usable marker genes")

// CellPhase is the scoring outcome for one cell. Scores holds the mean
// marker expression per phase; phases with no marker genes present in the
// matrix are absent from the map. Phase is the highest-scoring phase, with
// ties going to the lexicographically first phase name so repeated runs
// agree.
type CellPhase struct {
	CellID string
	Scores map[string]float64
	Phase  string
}

// Score computes per-cell phase scores. Marker genes absent from the matrix
// are skipped; a phase whose markers are entirely absent is skipped for
// every cell. If no phase has any marker present, Score returns
// ErrNoMarkers.
func Score(m *countmatrix.Matrix, markers map[string][]string) ([]CellPhase, error) {
	if len(markers) == 0 {
		return nil, fmt.Errorf("empty marker table: %w", ErrNoMarkers)
	}

	// Fixed phase order so score maps are filled deterministically and ties
	// resolve the same way every run.
	phases := make([]string, 0, len(markers))
	for phase := range markers {
		phases = append(phases, phase)
	}
	sort.Strings(phases)

	cells := m.CellIDs()

	type phaseRows struct {
		phase string
		rows  [][]float64
	}
	var usable []phaseRows

	for _, phase := range phases {
		var present []string
		for _, g := range markers[phase] {
			if m.HasGene(g) {
				present = append(present, g)
			}
		}
		if len(present) == 0 {
			continue
		}

		rows, err := m.Rows(present)
		if err != nil {
			return nil, err
		}
		usable = append(usable, phaseRows{phase: phase, rows: rows})
	}

	if len(usable) == 0 {
		return nil, fmt.Errorf("none of the marker genes are in the matrix: %w", ErrNoMarkers)
	}

	out := make([]CellPhase, len(cells))
	vals := make([]float64, 0, 8)

	for c, cell := range cells {
		cp := CellPhase{CellID: cell, Scores: make(map[string]float64, len(usable))}

		best := ""
		bestScore := 0.0
		for _, pr := range usable {
			vals = vals[:0]
			for _, row := range pr.rows {
				vals = append(vals, row[c])
			}

			score := stat.Mean(vals, nil)
			cp.Scores[pr.phase] = score

			// Strict > keeps the lexicographically first phase on ties,
			// since phases are visited in sorted order.
			if best == "" || score > bestScore {
				best = pr.phase
				bestScore = score
			}
		}

		cp.Phase = best
		out[c] = cp
	}

	return out, nil
}
