// speciesmix classifies the cells of a mixed-species (barnyard) count matrix
// by dominant species of transcript origin, optionally collapsing barcodes
// that were split by an ambiguous final base, and emits one classification
// row per cell.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/carbocation/singlecell/barcode"
	_ "github.com/carbocation/singlecell/buildinfoprint"
	"github.com/carbocation/singlecell/loader"
	"github.com/carbocation/singlecell/species"
)

func main() {
	var countsFile, outFile string
	var species1Prefix, species2Prefix string
	var purity, minTranscripts float64
	var collapse bool
	var prefixLen int
	var ambiguousBase string

	flag.StringVar(&countsFile, "counts", "", "Path to gene x cell count matrix (delimited text; header row of cell barcodes, one gene per row). Delimiter is autodetected.")
	flag.StringVar(&outFile, "out", "", "Path for the tab-delimited classification output. If empty, writes to stdout.")
	flag.StringVar(&species1Prefix, "species1prefix", "", "Gene label prefix identifying species 1 (e.g. hg19_).")
	flag.StringVar(&species2Prefix, "species2prefix", "", "Gene label prefix identifying species 2 (e.g. mm10_).")
	flag.Float64Var(&purity, "purity", 0.9, "Fraction of a cell's transcripts that must come from one species to call the cell that species; below this the cell is a doublet.")
	flag.Float64Var(&minTranscripts, "mintranscripts", 500, "Cells with fewer combined transcripts than this are labeled excluded rather than classified.")
	flag.BoolVar(&collapse, "collapse", false, "If true, merge barcodes that share a leading prefix where one ends in the ambiguous base before classifying.")
	flag.IntVar(&prefixLen, "prefixlen", barcode.DefaultPrefixLen, "Number of leading bases two barcodes must share to be collapse candidates.")
	flag.StringVar(&ambiguousBase, "ambiguousbase", "N", "Single character the base caller emits for an undetermined base.")

	flag.Parse()

	if countsFile == "" {
		log.Fatalln("Please provide -counts")
	}
	if species1Prefix == "" {
		log.Fatalln("Please provide -species1prefix")
	}
	if species2Prefix == "" {
		log.Fatalln("Please provide -species2prefix")
	}
	if len(ambiguousBase) != 1 {
		log.Fatalln("-ambiguousbase must be a single character")
	}

	if err := run(countsFile, outFile, species1Prefix, species2Prefix, purity, minTranscripts, collapse, prefixLen, ambiguousBase[0]); err != nil {
		log.Fatalln(err)
	}
}

func run(countsFile, outFile, species1Prefix, species2Prefix string, purity, minTranscripts float64, collapse bool, prefixLen int, ambiguousBase byte) error {
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

	if collapse {
		groups := barcode.FindCollapseGroups(m.CellIDs(), ambiguousBase, prefixLen)
		m, err = barcode.Collapse(m, groups)
		if err != nil {
			return err
		}
		log.Println("Collapsed", len(groups), "barcode groups;", m.NCells(), "cells remain")
	}

	result, err := species.Classify(m, species.Options{
		Species1Prefix:  species1Prefix,
		Species2Prefix:  species2Prefix,
		PurityThreshold: purity,
		MinTranscripts:  minTranscripts,
	})
	if err != nil {
		return err
	}

	tally := make(map[species.Label]int)
	for _, c := range result.Calls {
		tally[c.Label]++
	}
	log.Printf("Classified %d cells: %d %s, %d %s, %d doublets, %d excluded\n",
		len(result.Calls),
		tally[species.LabelSpecies1], species1Prefix,
		tally[species.LabelSpecies2], species2Prefix,
		tally[species.LabelDoublet], tally[species.LabelExcluded])

	out := io.Writer(os.Stdout)
	if outFile != "" {
		of, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer of.Close()
		out = of
	}

	return writeCalls(result.Calls, out)
}

func writeCalls(calls []species.Call, out io.Writer) error {
	// Tab-delimited output.
	gocsv.SetCSVWriter(func(w io.Writer) *gocsv.SafeCSVWriter {
		cw := csv.NewWriter(w)
		cw.Comma = '\t'
		return gocsv.NewSafeCSVWriter(cw)
	})

	if err := gocsv.Marshal(&calls, out); err != nil {
		return fmt.Errorf("writing classification table: %w", err)
	}

	return nil
}
