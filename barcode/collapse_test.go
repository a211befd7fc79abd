package barcode

import (
	"reflect"
	"testing"

	"github.com/carbocation/singlecell/countmatrix"
)

func TestFindCollapseGroups(t *testing.T) {
	for _, v := range []struct {
		name     string
		barcodes []string
		want     []CollapseGroup
	}{
		{
			name:     "ambiguous pair groups",
			barcodes: []string{"ACGTACGTACGA", "ACGTACGTACGN"},
			want: []CollapseGroup{
				{Target: "ACGTACGTACGA", Members: []string{"ACGTACGTACGA", "ACGTACGTACGN"}},
			},
		},
		{
			name:     "different prefixes never group",
			barcodes: []string{"ACGTACGTACGA", "TTTTTTTTTTTA"},
			want:     nil,
		},
		{
			name:     "same prefix without ambiguous base never groups",
			barcodes: []string{"ACGTACGTACGA", "ACGTACGTACGC"},
			want:     nil,
		},
		{
			// N sorts between A and T, so both adjacent pairs include the
			// ambiguous barcode and the run chains into one group of three.
			name:     "run of three chains into one group",
			barcodes: []string{"ACGTACGTACGT", "ACGTACGTACGA", "ACGTACGTACGN"},
			want: []CollapseGroup{
				{Target: "ACGTACGTACGA", Members: []string{"ACGTACGTACGA", "ACGTACGTACGN", "ACGTACGTACGT"}},
			},
		},
		{
			name:     "two independent groups",
			barcodes: []string{"AAAAAAAAAAAT", "AAAAAAAAAAAN", "CCCCCCCCCCCG", "CCCCCCCCCCCN"},
			want: []CollapseGroup{
				{Target: "AAAAAAAAAAAN", Members: []string{"AAAAAAAAAAAN", "AAAAAAAAAAAT"}},
				{Target: "CCCCCCCCCCCG", Members: []string{"CCCCCCCCCCCG", "CCCCCCCCCCCN"}},
			},
		},
		{
			name:     "short barcodes never group",
			barcodes: []string{"ACGTN", "ACGTA"},
			want:     nil,
		},
	} {
		got := FindCollapseGroups(v.barcodes, DefaultAmbiguousBase, DefaultPrefixLen)
		if !reflect.DeepEqual(got, v.want) {
			t.Fatalf("%s: got %+v, want %+v", v.name, got, v.want)
		}
	}
}

func TestFindCollapseGroupsChainBreaks(t *testing.T) {
	// Sorted order is A, C, N. The A-C pair shares the prefix but neither
	// member ends in N, so A stays alone and only C-N group.
	got := FindCollapseGroups([]string{"ACGTACGTACGA", "ACGTACGTACGC", "ACGTACGTACGN"}, 'N', 11)

	want := []CollapseGroup{
		{Target: "ACGTACGTACGC", Members: []string{"ACGTACGTACGC", "ACGTACGTACGN"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func collapseTestMatrix(t *testing.T) *countmatrix.Matrix {
	t.Helper()

	m, err := countmatrix.New(
		[]string{"g1", "g2"},
		[]string{"ACGTACGTACGA", "ACGTACGTACGN", "TTTTTTTTTTTA"},
		[][]float64{
			{3, 4, 1},
			{0, 2, 5},
		})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestCollapseMergesGroupColumns(t *testing.T) {
	m := collapseTestMatrix(t)
	groups := FindCollapseGroups(m.CellIDs(), DefaultAmbiguousBase, DefaultPrefixLen)

	got, err := Collapse(m, groups)
	if err != nil {
		t.Fatalf("Collapse: %v", err)
	}

	cells := got.CellIDs()
	if len(cells) != 2 || cells[0] != "ACGTACGTACGA" || cells[1] != "TTTTTTTTTTTA" {
		t.Fatalf("collapsed cells = %v, want [ACGTACGTACGA TTTTTTTTTTTA]", cells)
	}

	if v, _ := got.At("g1", "ACGTACGTACGA"); v != 7 {
		t.Fatalf("g1 merged count = %g, want 7", v)
	}
	if v, _ := got.At("g2", "ACGTACGTACGA"); v != 2 {
		t.Fatalf("g2 merged count = %g, want 2", v)
	}
	if v, _ := got.At("g1", "TTTTTTTTTTTA"); v != 1 {
		t.Fatalf("untouched column changed: g1 = %g, want 1", v)
	}
}

func TestCollapseEmptyGroupsIsIdentity(t *testing.T) {
	m := collapseTestMatrix(t)

	got, err := Collapse(m, nil)
	if err != nil {
		t.Fatalf("Collapse: %v", err)
	}
	if got != m {
		t.Fatalf("collapsing no groups should return the input matrix")
	}
}

func TestCollapseIsIdempotent(t *testing.T) {
	m := collapseTestMatrix(t)
	groups := FindCollapseGroups(m.CellIDs(), DefaultAmbiguousBase, DefaultPrefixLen)

	once, err := Collapse(m, groups)
	if err != nil {
		t.Fatalf("first Collapse: %v", err)
	}

	twice, err := Collapse(once, groups)
	if err != nil {
		t.Fatalf("second Collapse: %v", err)
	}

	if !twice.Equal(once) {
		t.Fatalf("collapsing twice with the same groups must equal collapsing once")
	}
}
