// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// contigs reports per-cell contig counts and lengths for a directory of
// demultiplexed cell FASTA files, checking that every contig belongs to
// the cell named by its file.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/kortschak/cellsplit/demux"
)

var (
	in     = flag.String("in", "", "directory of demultiplexed cell FASTA files (required)")
	hist   = flag.String("hist", "", "write a contig length histogram to this file if not empty")
	bins   = flag.Int("bins", 50, "number of histogram bins")
	format = flag.String("format", "png", "histogram format: eps, jpg, jpeg, pdf, png, svg, and tiff")

	outFile = flag.String("out", "", "output file name (default to stdout)")
)

func main() {
	flag.Parse()
	if *in == "" {
		flag.Usage()
		os.Exit(1)
	}
	if *hist != "" && !validFormat(*format) {
		fmt.Fprintf(os.Stderr, "invalid argument: unknown format %q\n", *format)
		flag.Usage()
		os.Exit(1)
	}

	out := os.Stdout
	if *outFile != "" {
		var err error
		out, err = os.Create(*outFile)
		if err != nil {
			log.Fatalf("failed to create out file: %v", err)
		}
		defer out.Close()
	}

	cells, lengths, err := census(*in)
	if err != nil {
		log.Fatalf("failed contig census: %v", err)
	}
	err = checkCellList(filepath.Join(*in, demux.CellList), cells)
	if err != nil {
		log.Fatalf("cell list mismatch: %v", err)
	}
	err = writeCells(out, cells)
	if err != nil {
		log.Fatalf("failed to write census: %v", err)
	}

	s := summarize(lengths)
	log.Printf("%d cells, %d contigs: length mean=%.1f sd=%.1f median=%.0f",
		len(cells), s.n, s.mean, s.sd, s.median)

	if *hist != "" {
		err = plotLengths(lengths, *bins, *hist, *format)
		if err != nil {
			log.Fatalf("failed to plot histogram: %v", err)
		}
	}
}

func validFormat(f string) bool {
	for _, s := range []string{"eps", "jpg", "jpeg", "pdf", "png", "svg", "tiff"} {
		if f == s {
			return true
		}
	}
	return false
}

// cellContigs is the contig content of a single cell file.
type cellContigs struct {
	cell    string
	contigs int
	length  int
}

// census reads each cell FASTA file in dir and returns the per-cell
// contig counts, sorted by cell, and the length of every contig.
func census(dir string) ([]cellContigs, []float64, error) {
	names, err := filepath.Glob(filepath.Join(dir, "*"+demux.Ext))
	if err != nil {
		return nil, nil, err
	}
	sort.Strings(names)

	var (
		cells   []cellContigs
		lengths []float64
	)
	for _, n := range names {
		c := cellContigs{cell: strings.TrimSuffix(filepath.Base(n), demux.Ext)}
		err := readCell(n, func(s *linear.Seq) error {
			id, err := demux.ParseCellID(">" + s.Name())
			if err != nil {
				return err
			}
			if id != c.cell {
				return fmt.Errorf("contig %q does not belong to cell %q", s.Name(), c.cell)
			}
			c.contigs++
			c.length += s.Len()
			lengths = append(lengths, float64(s.Len()))
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", n, err)
		}
		cells = append(cells, c)
	}
	return cells, lengths, nil
}

// checkCellList checks that the cell identifier report in the named
// file agrees with the contigs found in the cell files. A missing
// report is not an error.
func checkCellList(name string, cells []cellContigs) error {
	f, err := os.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		ids = append(ids, sc.Text())
	}
	err = sc.Err()
	if err != nil {
		return err
	}

	c := demux.NewCensus(ids)
	if c.Len() != len(cells) {
		return fmt.Errorf("%d cells listed but %d cell files", c.Len(), len(cells))
	}
	for _, cc := range cells {
		n := c.Contigs(cc.cell)
		if n != cc.contigs {
			return fmt.Errorf("cell %q: %d contigs listed but %d in file", cc.cell, n, cc.contigs)
		}
	}
	return nil
}

// readCell calls fn for each sequence in the named FASTA file.
func readCell(name string, fn func(*linear.Seq) error) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := seqio.NewScanner(fasta.NewReader(f, linear.NewSeq("", nil, alphabet.DNA)))
	for sc.Next() {
		err = fn(sc.Seq().(*linear.Seq))
		if err != nil {
			return err
		}
	}
	return sc.Error()
}

func writeCells(w io.Writer, cells []cellContigs) error {
	_, err := fmt.Fprintln(w, "cell\tcontigs\tlength")
	if err != nil {
		return err
	}
	for _, c := range cells {
		_, err = fmt.Fprintf(w, "%s\t%d\t%d\n", c.cell, c.contigs, c.length)
		if err != nil {
			return err
		}
	}
	return nil
}

type summary struct {
	n        int
	mean, sd float64
	median   float64
}

// summarize returns summary statistics for lengths. lengths is sorted
// in place.
func summarize(lengths []float64) summary {
	if len(lengths) == 0 {
		return summary{}
	}
	sort.Float64s(lengths)
	mean, sd := stat.MeanStdDev(lengths, nil)
	return summary{
		n:      len(lengths),
		mean:   mean,
		sd:     sd,
		median: stat.Quantile(0.5, stat.Empirical, lengths, nil),
	}
}

func plotLengths(lengths []float64, bins int, name, format string) error {
	p, err := plot.New()
	if err != nil {
		return err
	}
	h, err := plotter.NewHist(plotter.Values(lengths), bins)
	if err != nil {
		return err
	}
	p.Add(h)
	p.Title.Text = "contig lengths"
	p.X.Label.Text = "length (bp)"
	p.Y.Label.Text = "contigs"

	if filepath.Ext(name) == "" {
		name += "." + format
	}
	return p.Save(15*vg.Centimeter, 10*vg.Centimeter, name)
}
