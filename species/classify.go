// Package species partitions the cells of a mixed-species count matrix by
// the dominant species of their transcripts. In a barnyard experiment (for
// example human plus mouse) the gene labels carry a species prefix, so a
// cell's human and mouse transcript totals can be computed directly and a
// cell whose counts are not overwhelmingly from one species is flagged as a
// doublet.
package species

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/carbocation/singlecell/countmatrix"
)

var (
	// ErrBadThreshold indicates a purity threshold outside (0.5, 1.0] or a
	// negative transcript floor.
	ErrBadThreshold = errors.New("species: invalid threshold")
	// ErrBadPrefix indicates missing or indistinguishable species prefixes.
	ErrBadPrefix = errors.New("species: invalid gene prefix")
	// ErrBadLabel indicates a label that does not name one of the two
	// species.
	ErrBadLabel = errors.New("species: label does not name a species")
)

// Label is the per-cell classification outcome.
type Label string

const (
	LabelSpecies1 Label = "species1"
	LabelSpecies2 Label = "species2"
	LabelDoublet  Label = "doublet"
	LabelExcluded Label = "excluded"
)

// Options configures Classify.
type Options struct {
	// Species1Prefix and Species2Prefix select the gene rows attributed to
	// each species, by label prefix (e.g. "hg19_" and "mm10_"). They must be
	// non-empty, and neither may be a prefix of the other.
	Species1Prefix string
	Species2Prefix string

	// PurityThreshold is the fraction of a cell's total counts that must
	// come from one species for the cell to be called that species. Must be
	// in (0.5, 1.0]; a cell exactly at the threshold is called pure, not
	// doublet.
	PurityThreshold float64

	// MinTranscripts is the combined count floor below which a cell is
	// labeled excluded rather than classified. Cells with zero combined
	// counts are always excluded, since purity is undefined for them.
	MinTranscripts float64

	// Workers bounds the number of goroutines classifying cells. Zero or
	// negative means one worker per CPU.
	Workers int
}

// Call is the classification of one cell.
type Call struct {
	CellID         string  `csv:"cell_id"`
	Species1Counts float64 `csv:"species1_counts"`
	Species2Counts float64 `csv:"species2_counts"`
	Label          Label   `csv:"label"`
}

// Result holds one Call per input cell, in the matrix's column order. Cells
// below the transcript floor are present with LabelExcluded rather than
// omitted, so the result always accounts for every input column.
type Result struct {
	Species1Prefix string
	Species2Prefix string
	Calls          []Call
}

// CellsLabeled returns the cell IDs carrying the given label, in call order.
func (r *Result) CellsLabeled(label Label) []string {
	var out []string
	for _, c := range r.Calls {
		if c.Label == label {
			out = append(out, c.CellID)
		}
	}
	return out
}

// Classify computes per-cell species calls. It is deterministic: the same
// matrix and options always produce the same Result, and the calls follow
// the matrix's column order regardless of how many workers run.
func Classify(m *countmatrix.Matrix, opts Options) (*Result, error) {
	if opts.Species1Prefix == "" || opts.Species2Prefix == "" {
		return nil, fmt.Errorf("both species prefixes are required: %w", ErrBadPrefix)
	}
	if strings.HasPrefix(opts.Species1Prefix, opts.Species2Prefix) || strings.HasPrefix(opts.Species2Prefix, opts.Species1Prefix) {
		return nil, fmt.Errorf("prefixes %q and %q cannot tell genes apart: %w", opts.Species1Prefix, opts.Species2Prefix, ErrBadPrefix)
	}
	if opts.PurityThreshold <= 0.5 || opts.PurityThreshold > 1.0 {
		return nil, fmt.Errorf("purity threshold %g outside (0.5, 1.0]: %w", opts.PurityThreshold, ErrBadThreshold)
	}
	if opts.MinTranscripts < 0 {
		return nil, fmt.Errorf("transcript floor %g below zero: %w", opts.MinTranscripts, ErrBadThreshold)
	}

	genes1, genes2 := splitGenesByPrefix(m.GeneIDs(), opts.Species1Prefix, opts.Species2Prefix)

	rows1, err := m.Rows(genes1)
	if err != nil {
		return nil, err
	}
	rows2, err := m.Rows(genes2)
	if err != nil {
		return nil, err
	}

	cells := m.CellIDs()
	calls := make([]Call, len(cells))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Each worker owns a contiguous slice of cells and writes into its own
	// slots of calls, so no synchronization beyond the WaitGroup is needed
	// and the output order is the input column order.
	chunk := (len(cells) + workers - 1) / workers
	if chunk < 1 {
		chunk = 1
	}

	var pool sync.WaitGroup
	concurrencyLimit := make(chan struct{}, workers)

	for start := 0; start < len(cells); start += chunk {
		end := start + chunk
		if end > len(cells) {
			end = len(cells)
		}

		pool.Add(1)
		concurrencyLimit <- struct{}{}
		go func(start, end int) {
			defer pool.Done()

			for c := start; c < end; c++ {
				var s1, s2 float64
				for _, row := range rows1 {
					s1 += row[c]
				}
				for _, row := range rows2 {
					s2 += row[c]
				}

				calls[c] = Call{
					CellID:         cells[c],
					Species1Counts: s1,
					Species2Counts: s2,
					Label:          call(s1, s2, opts.PurityThreshold, opts.MinTranscripts),
				}
			}

			<-concurrencyLimit
		}(start, end)
	}

	pool.Wait()

	return &Result{
		Species1Prefix: opts.Species1Prefix,
		Species2Prefix: opts.Species2Prefix,
		Calls:          calls,
	}, nil
}

func call(s1, s2, purityThreshold, minTranscripts float64) Label {
	total := s1 + s2
	if total == 0 || total < minTranscripts {
		return LabelExcluded
	}

	switch {
	case s1/total >= purityThreshold:
		return LabelSpecies1
	case s2/total >= purityThreshold:
		return LabelSpecies2
	default:
		return LabelDoublet
	}
}

func splitGenesByPrefix(geneIDs []string, prefix1, prefix2 string) (genes1, genes2 []string) {
	for _, g := range geneIDs {
		switch {
		case strings.HasPrefix(g, prefix1):
			genes1 = append(genes1, g)
		case strings.HasPrefix(g, prefix2):
			genes2 = append(genes2, g)
		}
	}
	return genes1, genes2
}

// SplitBySpecies returns the columns of m whose cells were called the given
// species. Doublet and excluded cells are discarded. Only LabelSpecies1 and
// LabelSpecies2 are valid here; anything else yields ErrBadLabel.
func SplitBySpecies(m *countmatrix.Matrix, r *Result, label Label) (*countmatrix.Matrix, error) {
	if label != LabelSpecies1 && label != LabelSpecies2 {
		return nil, fmt.Errorf("cannot split on %q: %w", label, ErrBadLabel)
	}

	cells := r.CellsLabeled(label)
	if cells == nil {
		cells = []string{}
	}

	return m.SelectColumns(cells)
}
