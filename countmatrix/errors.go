package countmatrix

import "errors"

var (
	// ErrDimensionMismatch indicates the count grid's shape does not agree
	// with the number of gene and cell labels.
	ErrDimensionMismatch = errors.New("countmatrix: grid dimensions do not match label counts")
	// ErrDuplicateLabel indicates a gene or cell identifier appears more than
	// once where uniqueness is required.
	ErrDuplicateLabel = errors.New("countmatrix: duplicate label")
	// ErrUnknownLabel indicates a requested gene or cell identifier is not
	// present in the matrix.
	ErrUnknownLabel = errors.New("countmatrix: unknown label")
	// ErrConflictingGroup indicates a column is claimed by more than one merge
	// group.
	ErrConflictingGroup = errors.New("countmatrix: column claimed by more than one merge group")
	// ErrNegativeCount indicates a negative value in the count grid, which is
	// never meaningful for read or UMI counts.
	ErrNegativeCount = errors.New("countmatrix: negative count")
)
