// cellqc filters a single-species count matrix by simple quality thresholds
// and emits one row of QC metrics per surviving cell: genes observed,
// transcript total, optional mitochondrial percentage, optional cell-cycle
// phase, and outlier flags. Optionally it also reports the correlation of
// the sample's pseudobulk profile against a bulk reference.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"

	"github.com/gocarina/gocsv"

	_ "github.com/carbocation/singlecell/buildinfoprint"
	"github.com/carbocation/singlecell/cellcycle"
	"github.com/carbocation/singlecell/loader"
	"github.com/carbocation/singlecell/sample"
)

const outlierFlag = "TranscriptOutlier"

type qcRow struct {
	CellID      string   `csv:"cell_id"`
	Species     string   `csv:"species"`
	Genes       float64  `csv:"genes"`
	Transcripts float64  `csv:"transcripts"`
	MitoPct     *float64 `csv:"mito_pct"`
	Phase       *string  `csv:"phase"`
	Flags       string   `csv:"flags"`
}

func main() {
	var countsFile, speciesLabel, outFile string
	var mitoPattern, markersFile, bulkRefFile string
	var topCells, minGenes, minCellsPerGene int
	var minTranscripts, minUMI, outlierSD float64

	flag.StringVar(&countsFile, "counts", "", "Path to gene x cell count matrix (delimited text; header row of cell barcodes, one gene per row). Delimiter is autodetected.")
	flag.StringVar(&speciesLabel, "species", "", "Species label attached to every cell of this sample (e.g. human).")
	flag.StringVar(&outFile, "out", "", "Path for the tab-delimited per-cell QC table. If empty, writes to stdout.")
	flag.StringVar(&mitoPattern, "mito", "", "Regular expression matching mitochondrial gene labels (e.g. ^MT-). If empty, no mitochondrial percentage is computed.")
	flag.StringVar(&markersFile, "markers", "", "Path to a two-column (phase, gene) marker table for cell-cycle phase scoring. Optional.")
	flag.StringVar(&bulkRefFile, "bulkref", "", "Path to a two-column (gene, value) bulk reference profile; if set, the pseudobulk correlation is logged. Optional.")
	flag.IntVar(&topCells, "topcells", 0, "If positive, keep only this many cells, ranked by transcript total, before other filters.")
	flag.Float64Var(&minTranscripts, "mintranscripts", 0, "Drop cells with fewer total transcripts than this.")
	flag.IntVar(&minGenes, "mingenes", 0, "Drop cells in which fewer than this many genes were observed.")
	flag.IntVar(&minCellsPerGene, "mincellspergene", 0, "Drop genes observed in fewer than this many cells. Applied after the cell filters, so it sees the already-filtered cells.")
	flag.Float64Var(&minUMI, "minumi", 1, "A gene counts as observed in a cell when it has at least this many counts there.")
	flag.Float64Var(&outlierSD, "outliersd", 0, "If positive, flag cells whose transcript total is beyond this many standard deviations from the mean.")

	flag.Parse()

	if countsFile == "" {
		log.Fatalln("Please provide -counts")
	}
	if speciesLabel == "" {
		log.Fatalln("Please provide -species")
	}

	if err := run(countsFile, speciesLabel, outFile, mitoPattern, markersFile, bulkRefFile, topCells, minGenes, minCellsPerGene, minTranscripts, minUMI, outlierSD); err != nil {
		log.Fatalln(err)
	}
}

func run(countsFile, speciesLabel, outFile, mitoPattern, markersFile, bulkRefFile string, topCells, minGenes, minCellsPerGene int, minTranscripts, minUMI, outlierSD float64) error {
	f, err := os.Open(countsFile)
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := loader.ReadMatrix(f)
	if err != nil {
		return err
	}
	log.Println("Loaded", m.NGenes(), "genes x", m.NCells(), "cells from", countsFile)

	agg, err := sample.NewSingle(m, speciesLabel)
	if err != nil {
		return err
	}

	// Filters run cells-first, then genes: the gene floor is evaluated
	// against the cells that survive, which is the order that matters for
	// deciding whether a gene is still worth keeping.
	if topCells > 0 {
		if agg, err = agg.KeepTopCellsByRank(topCells); err != nil {
			return err
		}
		log.Println("Kept top", topCells, "cells by transcript rank;", len(agg.CellIDs()), "remain")
	}
	if minTranscripts > 0 {
		if agg, err = agg.KeepCellsAboveTranscriptFloor(minTranscripts); err != nil {
			return err
		}
		log.Println("Transcript floor of", minTranscripts, "leaves", len(agg.CellIDs()), "cells")
	}
	if minGenes > 0 {
		if agg, err = agg.DropCellsBelowGeneFloor(minGenes); err != nil {
			return err
		}
		log.Println("Gene floor of", minGenes, "leaves", len(agg.CellIDs()), "cells")
	}
	if minCellsPerGene > 0 {
		if agg, err = agg.DropGenesBelowCellFloor(minCellsPerGene); err != nil {
			return err
		}
		log.Println("Cell floor of", minCellsPerGene, "leaves", agg.Matrices()[0].NGenes(), "genes")
	}

	genes := agg.GenesPerCell(minUMI)
	transcripts := agg.TranscriptsPerCell()

	rows := make([]qcRow, len(genes))
	for i := range genes {
		rows[i] = qcRow{
			CellID:      genes[i].CellID,
			Species:     genes[i].Species,
			Genes:       genes[i].Value,
			Transcripts: transcripts[i].Value,
		}
	}

	if mitoPattern != "" {
		re, err := regexp.Compile(mitoPattern)
		if err != nil {
			return fmt.Errorf("bad -mito pattern: %w", err)
		}

		mito, err := agg.MitochondrialPercentage(re)
		if err != nil {
			return err
		}
		for i := range rows {
			v := mito[i].Value
			rows[i].MitoPct = &v
		}
	}

	if markersFile != "" {
		if err := addPhases(rows, agg, markersFile); err != nil {
			return err
		}
	}

	if outlierSD > 0 {
		flagged := make(map[string]struct{})
		for _, id := range sample.FlagOutliers(transcripts, outlierSD) {
			flagged[id] = struct{}{}
		}
		for i := range rows {
			if _, ok := flagged[rows[i].CellID]; ok {
				rows[i].Flags = outlierFlag
			}
		}
		log.Println("Flagged", len(flagged), "cells beyond", outlierSD, "standard deviations from the mean transcript total")
	}

	if bulkRefFile != "" {
		if err := logBulkComparison(agg, bulkRefFile); err != nil {
			return err
		}
	}

	out := io.Writer(os.Stdout)
	if outFile != "" {
		of, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer of.Close()
		out = of
	}

	return writeRows(rows, out)
}

func addPhases(rows []qcRow, agg *sample.Aggregate, markersFile string) error {
	mf, err := os.Open(markersFile)
	if err != nil {
		return err
	}
	defer mf.Close()

	markers, err := loader.ReadMarkerTable(mf)
	if err != nil {
		return err
	}

	phases, err := cellcycle.Score(agg.Matrices()[0], markers)
	if err != nil {
		return err
	}

	for i := range rows {
		p := phases[i].Phase
		rows[i].Phase = &p
	}

	return nil
}

func logBulkComparison(agg *sample.Aggregate, bulkRefFile string) error {
	bf, err := os.Open(bulkRefFile)
	if err != nil {
		return err
	}
	defer bf.Close()

	ref, err := loader.ReadBulkReference(bf)
	if err != nil {
		return err
	}

	cmp, err := agg.CompareWithBulk(ref)
	if err != nil {
		return err
	}
	log.Printf("Pseudobulk vs %s: Pearson r = %.3f over %d shared genes\n", bulkRefFile, cmp.Pearson, cmp.SharedGenes)

	return nil
}

func writeRows(rows []qcRow, out io.Writer) error {
	// Tab-delimited output.
	gocsv.SetCSVWriter(func(w io.Writer) *gocsv.SafeCSVWriter {
		cw := csv.NewWriter(w)
		cw.Comma = '\t'
		return gocsv.NewSafeCSVWriter(cw)
	})

	if err := gocsv.Marshal(&rows, out); err != nil {
		return fmt.Errorf("writing QC table: %w", err)
	}

	return nil
}
