package sample

import "errors"

var (
	// ErrBadSpecies indicates an empty or repeated species label.
	ErrBadSpecies = errors.New("sample: invalid species label")
	// ErrCellMismatch indicates the two matrices of a mixed-species sample
	// do not carry the same cells in the same order.
	ErrCellMismatch = errors.New("sample: matrices carry different cell sets")
	// ErrNoMatchingGenes indicates a gene pattern matched nothing, which
	// usually means the pattern was written for the wrong species or label
	// convention.
	ErrNoMatchingGenes = errors.New("sample: pattern matches no genes")
	// ErrNoSharedGenes indicates the sample and a bulk reference have fewer
	// than two genes in common, too few to correlate.
	ErrNoSharedGenes = errors.New("sample: too few genes shared with reference")
)
