package countmatrix

import (
	"fmt"
)

// MergeGroup names a set of source columns to be replaced by their
// element-wise sum, labeled Target. Target may itself be one of the Sources.
type MergeGroup struct {
	Target  string
	Sources []string
}

// MergeColumns returns a new Matrix in which, for each group, the source
// columns are replaced by a single column holding their element-wise sum. The
// merged column takes the position of the group's first source column in the
// receiver's column order; columns not named by any group pass through with
// their relative order intact.
//
// Errors: ErrUnknownLabel if a source column is absent; ErrConflictingGroup
// if a column is claimed by more than one group (or twice within one group);
// ErrDuplicateLabel if a target label would collide with a surviving column
// or another target.
func (m *Matrix) MergeColumns(groups []MergeGroup) (*Matrix, error) {
	claimed := make(map[string]int, len(groups)) // cell label -> group index
	for gi, grp := range groups {
		if len(grp.Sources) == 0 {
			return nil, fmt.Errorf("merge group %q has no source columns: %w", grp.Target, ErrDimensionMismatch)
		}
		for _, src := range grp.Sources {
			if _, ok := m.cellIdx[src]; !ok {
				return nil, fmt.Errorf("merge source cell %q: %w", src, ErrUnknownLabel)
			}
			if prev, taken := claimed[src]; taken {
				return nil, fmt.Errorf("cell %q claimed by groups %q and %q: %w", src, groups[prev].Target, grp.Target, ErrConflictingGroup)
			}
			claimed[src] = gi
		}
	}

	// Walk the receiver's columns once, emitting each merged column at the
	// position of its first-encountered source and passing everything else
	// through.
	emitted := make([]bool, len(groups))
	newCells := make([]string, 0, len(m.cells))
	newCols := make([][]int, 0, len(m.cells)) // source column indices per output column

	for i, c := range m.cells {
		gi, merging := claimed[c]
		if !merging {
			newCells = append(newCells, c)
			newCols = append(newCols, []int{i})
			continue
		}
		if emitted[gi] {
			continue
		}
		emitted[gi] = true

		srcs := make([]int, 0, len(groups[gi].Sources))
		for _, src := range groups[gi].Sources {
			srcs = append(srcs, m.cellIdx[src])
		}
		newCells = append(newCells, groups[gi].Target)
		newCols = append(newCols, srcs)
	}

	newIdx := make(map[string]int, len(newCells))
	for i, c := range newCells {
		if _, seen := newIdx[c]; seen {
			return nil, fmt.Errorf("merged column label %q collides with another column: %w", c, ErrDuplicateLabel)
		}
		newIdx[c] = i
	}

	out := &Matrix{
		genes:   m.genes,
		cells:   newCells,
		geneIdx: m.geneIdx,
		cellIdx: newIdx,
		counts:  make([][]float64, len(m.genes)),
	}

	for g := range m.counts {
		row := make([]float64, len(newCells))
		for i, srcs := range newCols {
			var sum float64
			for _, c := range srcs {
				sum += m.counts[g][c]
			}
			row[i] = sum
		}
		out.counts[g] = row
	}

	return out, nil
}
