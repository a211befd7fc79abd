// Package loader reads the delimited text tables the analysis consumes: a
// gene-by-cell count grid, a marker-gene table, and a bulk reference
// profile. It sits outside the core: everything downstream operates on the
// in-memory values produced here and never touches files itself.
package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/carbocation/pfx"
	"github.com/csimplestring/go-csv/detector"

	"github.com/carbocation/singlecell/countmatrix"
)

// DetermineDelimiter returns the single most likely rune delimiting the
// values in the reader, assuming a CSV-like file. Defaults to tab, the usual
// format for count matrices.
func DetermineDelimiter(r io.Reader) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(r, '"')

	if len(delimiters) > 0 {
		return rune(delimiters[0][0])
	}

	return '\t'
}

// ReadMatrix parses a delimited gene-by-cell count grid. The first row is a
// header whose first field is ignored and whose remaining fields are cell
// barcodes; each following row is a gene label and its per-cell counts.
// Counts must be finite and non-negative. The delimiter is autodetected.
func ReadMatrix(r io.Reader) (*countmatrix.Matrix, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, pfx.Err(fmt.Errorf("count file has no header row"))
	}

	cellIDs := records[0][1:]

	geneIDs := make([]string, 0, len(records)-1)
	counts := make([][]float64, 0, len(records)-1)

	for i, row := range records[1:] {
		if len(row) != len(cellIDs)+1 {
			return nil, pfx.Err(fmt.Errorf("row %d has %d fields, want %d", i+2, len(row), len(cellIDs)+1))
		}

		gene := row[0]
		vals := make([]float64, len(cellIDs))
		for j, field := range row[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, pfx.Err(fmt.Errorf("gene %q cell %q: parsing %q: %w", gene, cellIDs[j], field, err))
			}
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return nil, pfx.Err(fmt.Errorf("gene %q cell %q: count %q is not a non-negative number", gene, cellIDs[j], field))
			}
			vals[j] = v
		}

		geneIDs = append(geneIDs, gene)
		counts = append(counts, vals)
	}

	m, err := countmatrix.New(geneIDs, cellIDs, counts)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return m, nil
}

// ReadMarkerTable parses a two-column (phase, gene) table into an ordered
// gene list per phase. A header row is recognized and skipped when its first
// field is "phase" (any case mix is not attempted; marker tables are
// machine-written).
func ReadMarkerTable(r io.Reader) (map[string][]string, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]string)
	for i, row := range records {
		if len(row) < 2 {
			return nil, pfx.Err(fmt.Errorf("marker row %d has %d fields, want 2", i+1, len(row)))
		}
		if i == 0 && row[0] == "phase" {
			continue
		}

		out[row[0]] = append(out[row[0]], row[1])
	}

	return out, nil
}

// ReadBulkReference parses a two-column (gene, expression value) table. A
// first row whose second field does not parse as a number is treated as a
// header and skipped.
func ReadBulkReference(r io.Reader) (map[string]float64, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(records))
	for i, row := range records {
		if len(row) < 2 {
			return nil, pfx.Err(fmt.Errorf("reference row %d has %d fields, want 2", i+1, len(row)))
		}

		v, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, pfx.Err(fmt.Errorf("reference row %d: parsing %q: %w", i+1, row[1], err))
		}

		out[row[0]] = v
	}

	return out, nil
}

// readAll slurps the reader, detects the delimiter, and returns all records.
// These tables are small relative to the matrices already held in memory, so
// buffering the whole file is fine and lets the delimiter detector see the
// same bytes the parser does.
func readAll(r io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, pfx.Err(err)
	}

	delim := DetermineDelimiter(bytes.NewReader(raw))

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = delim
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return nil, pfx.Err(err)
	}

	return records, nil
}
