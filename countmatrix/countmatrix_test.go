package countmatrix

import (
	"errors"
	"testing"
)

func mustNew(t *testing.T, genes, cells []string, counts [][]float64) *Matrix {
	t.Helper()

	m, err := New(genes, cells, counts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func testMatrix(t *testing.T) *Matrix {
	return mustNew(t,
		[]string{"hg_A", "hg_B", "mm_A"},
		[]string{"c1", "c2", "c3"},
		[][]float64{
			{10, 0, 6},
			{5, 0, 0},
			{0, 20, 5},
		})
}

func TestNewRejectsBadShapes(t *testing.T) {
	for _, v := range []struct {
		name   string
		genes  []string
		cells  []string
		counts [][]float64
		want   error
	}{
		{"row count mismatch", []string{"g1", "g2"}, []string{"c1"}, [][]float64{{1}}, ErrDimensionMismatch},
		{"row length mismatch", []string{"g1"}, []string{"c1", "c2"}, [][]float64{{1}}, ErrDimensionMismatch},
		{"duplicate gene", []string{"g1", "g1"}, []string{"c1"}, [][]float64{{1}, {2}}, ErrDuplicateLabel},
		{"duplicate cell", []string{"g1"}, []string{"c1", "c1"}, [][]float64{{1, 2}}, ErrDuplicateLabel},
		{"negative count", []string{"g1"}, []string{"c1"}, [][]float64{{-1}}, ErrNegativeCount},
	} {
		if _, err := New(v.genes, v.cells, v.counts); !errors.Is(err, v.want) {
			t.Fatalf("%s: got error %v, want %v", v.name, err, v.want)
		}
	}
}

func TestNewCopiesInput(t *testing.T) {
	genes := []string{"g1"}
	cells := []string{"c1", "c2"}
	counts := [][]float64{{1, 2}}

	m := mustNew(t, genes, cells, counts)

	counts[0][0] = 99
	genes[0] = "mutated"

	if v, _ := m.At("g1", "c1"); v != 1 {
		t.Fatalf("matrix aliases caller's grid: got %g, want 1", v)
	}
}

func TestSelectColumnsIdentity(t *testing.T) {
	m := testMatrix(t)

	got, err := m.SelectColumns(m.CellIDs())
	if err != nil {
		t.Fatalf("SelectColumns: %v", err)
	}
	if !got.Equal(m) {
		t.Fatalf("selecting all columns should be the identity")
	}
}

func TestSelectColumnsPreservesReceiverOrder(t *testing.T) {
	m := testMatrix(t)

	// Request out of order; result must follow matrix order.
	got, err := m.SelectColumns([]string{"c3", "c1"})
	if err != nil {
		t.Fatalf("SelectColumns: %v", err)
	}

	cells := got.CellIDs()
	if len(cells) != 2 || cells[0] != "c1" || cells[1] != "c3" {
		t.Fatalf("got columns %v, want [c1 c3]", cells)
	}
	if v, _ := got.At("mm_A", "c3"); v != 5 {
		t.Fatalf("got mm_A/c3 = %g, want 5", v)
	}
}

func TestSelectErrors(t *testing.T) {
	m := testMatrix(t)

	if _, err := m.SelectColumns([]string{"nope"}); !errors.Is(err, ErrUnknownLabel) {
		t.Fatalf("unknown cell: got %v, want ErrUnknownLabel", err)
	}
	if _, err := m.SelectColumns([]string{"c1", "c1"}); !errors.Is(err, ErrDuplicateLabel) {
		t.Fatalf("repeated cell: got %v, want ErrDuplicateLabel", err)
	}
	if _, err := m.SelectRows([]string{"nope"}); !errors.Is(err, ErrUnknownLabel) {
		t.Fatalf("unknown gene: got %v, want ErrUnknownLabel", err)
	}
}

func TestSelectRows(t *testing.T) {
	m := testMatrix(t)

	got, err := m.SelectRows([]string{"mm_A", "hg_A"})
	if err != nil {
		t.Fatalf("SelectRows: %v", err)
	}

	genes := got.GeneIDs()
	if len(genes) != 2 || genes[0] != "hg_A" || genes[1] != "mm_A" {
		t.Fatalf("got genes %v, want [hg_A mm_A]", genes)
	}
}

func TestMergeColumns(t *testing.T) {
	m := mustNew(t,
		[]string{"g1", "g2"},
		[]string{"c1", "c2", "c3", "c4"},
		[][]float64{
			{1, 2, 3, 4},
			{10, 20, 30, 40},
		})

	got, err := m.MergeColumns([]MergeGroup{{Target: "c2", Sources: []string{"c2", "c4"}}})
	if err != nil {
		t.Fatalf("MergeColumns: %v", err)
	}

	cells := got.CellIDs()
	if len(cells) != 3 || cells[0] != "c1" || cells[1] != "c2" || cells[2] != "c3" {
		t.Fatalf("merged column order %v, want [c1 c2 c3]", cells)
	}

	if v, _ := got.At("g1", "c2"); v != 6 {
		t.Fatalf("g1/c2 = %g, want 6", v)
	}
	if v, _ := got.At("g2", "c2"); v != 60 {
		t.Fatalf("g2/c2 = %g, want 60", v)
	}
	if v, _ := got.At("g1", "c3"); v != 3 {
		t.Fatalf("passthrough g1/c3 = %g, want 3", v)
	}
}

func TestMergeColumnsErrors(t *testing.T) {
	m := testMatrix(t)

	if _, err := m.MergeColumns([]MergeGroup{{Target: "x", Sources: []string{"nope"}}}); !errors.Is(err, ErrUnknownLabel) {
		t.Fatalf("missing source: got %v, want ErrUnknownLabel", err)
	}

	conflicting := []MergeGroup{
		{Target: "a", Sources: []string{"c1", "c2"}},
		{Target: "b", Sources: []string{"c2", "c3"}},
	}
	if _, err := m.MergeColumns(conflicting); !errors.Is(err, ErrConflictingGroup) {
		t.Fatalf("shared source: got %v, want ErrConflictingGroup", err)
	}

	colliding := []MergeGroup{{Target: "c3", Sources: []string{"c1", "c2"}}}
	if _, err := m.MergeColumns(colliding); !errors.Is(err, ErrDuplicateLabel) {
		t.Fatalf("target collides with survivor: got %v, want ErrDuplicateLabel", err)
	}
}

func TestMergeColumnsEmptyIsIdentity(t *testing.T) {
	m := testMatrix(t)

	got, err := m.MergeColumns(nil)
	if err != nil {
		t.Fatalf("MergeColumns(nil): %v", err)
	}
	if !got.Equal(m) {
		t.Fatalf("merging no groups should be the identity")
	}
}

func TestReductions(t *testing.T) {
	m := testMatrix(t)

	colSums := m.ColumnSums()
	for i, want := range []float64{15, 20, 11} {
		if colSums[i] != want {
			t.Fatalf("ColumnSums[%d] = %g, want %g", i, colSums[i], want)
		}
	}

	restricted, err := m.ColumnSumsOver([]string{"hg_A", "hg_B"})
	if err != nil {
		t.Fatalf("ColumnSumsOver: %v", err)
	}
	for i, want := range []float64{15, 0, 6} {
		if restricted[i] != want {
			t.Fatalf("ColumnSumsOver[%d] = %g, want %g", i, restricted[i], want)
		}
	}

	rowSums, err := m.RowSums()
	if err != nil {
		t.Fatalf("RowSums: %v", err)
	}
	for i, want := range []float64{16, 5, 25} {
		if rowSums[i] != want {
			t.Fatalf("RowSums[%d] = %g, want %g", i, rowSums[i], want)
		}
	}

	subset, err := m.RowSums("mm_A")
	if err != nil {
		t.Fatalf("RowSums(mm_A): %v", err)
	}
	if len(subset) != 1 || subset[0] != 25 {
		t.Fatalf("RowSums(mm_A) = %v, want [25]", subset)
	}

	genesPerCell := m.ColumnCountsAtLeast(1)
	for i, want := range []int{2, 1, 2} {
		if genesPerCell[i] != want {
			t.Fatalf("ColumnCountsAtLeast(1)[%d] = %d, want %d", i, genesPerCell[i], want)
		}
	}

	cellsPerGene := m.RowCountsAtLeast(1)
	for i, want := range []int{2, 1, 2} {
		if cellsPerGene[i] != want {
			t.Fatalf("RowCountsAtLeast(1)[%d] = %d, want %d", i, cellsPerGene[i], want)
		}
	}
}
