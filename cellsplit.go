// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// cellsplit demultiplexes 10x Genomics filtered contig FASTA files into
// one FASTA file per cell.
//
// Each sample directory in {HOME_DIR}/data/raw is split into
// {HOME_DIR}/data/demultiplexed/{sample}-preprocessed, along with a
// list_of_cells.txt file holding the cell identifier of each contig
// in input order.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/kortschak/cellsplit/config"
	"github.com/kortschak/cellsplit/demux"
)

var (
	envFile = flag.String("env", ".env", "dotenv file providing HOME_DIR")
	home    = flag.String("home", "", "workflow base directory (overrides HOME_DIR)")
	clean   = flag.Bool("clean", false, "remove existing *-preprocessed directories before splitting")
	procs   = flag.Int("procs", runtime.NumCPU(), "number of samples to split concurrently")

	errFile = flag.String("err", "", "output file name (default to stderr)")
)

func main() {
	flag.Parse()
	if *procs < 1 {
		fmt.Fprintln(os.Stderr, "invalid argument: procs must be positive")
		flag.Usage()
		os.Exit(1)
	}

	if *errFile != "" {
		w, err := os.Create(*errFile)
		if err != nil {
			// Oh, the irony.
			log.Fatalf("failed to create log file: %v", err)
		}
		defer w.Close()
		log.SetOutput(w)
	}

	paths := config.Paths{Home: *home}
	if *home == "" {
		var err error
		paths, err = config.Load(*envFile)
		if err != nil {
			log.Fatalf("failed to configure: %v", err)
		}
	}

	if *clean {
		err := removePreprocessed(paths.Demultiplexed())
		if err != nil {
			log.Fatalf("failed to clean output: %v", err)
		}
	}

	samples, err := subdirs(paths.RawDir())
	if err != nil {
		log.Fatalf("failed to list samples: %v", err)
	}

	var g errgroup.Group
	g.SetLimit(*procs)
	for _, s := range samples {
		s := s
		g.Go(func() error {
			log.Printf("splitting sample %q", s)
			ids, err := split(paths.Raw(s), paths.Preprocessed(s))
			if err != nil {
				return fmt.Errorf("sample %q: %w", s, err)
			}
			c := demux.NewCensus(ids)
			log.Printf("sample %q: %d contigs from %d cells", s, len(ids), c.Len())
			return nil
		})
	}
	err = g.Wait()
	if err != nil {
		log.Fatalf("failed to split: %v", err)
	}
}

// split partitions the contigs in the FASTA file in into per-cell files
// in the directory out and writes the cell list to out. Any existing
// content of out is removed first.
func split(in, out string) ([]string, error) {
	r, err := open(in)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	err = os.RemoveAll(out)
	if err != nil {
		return nil, err
	}

	d := &demux.Dir{Path: out}
	ids, err := demux.Partition(r, d)
	cerr := d.Close()
	if err != nil {
		return nil, err
	}
	if cerr != nil {
		return nil, cerr
	}

	err = os.MkdirAll(out, 0o755)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(filepath.Join(out, demux.CellList))
	if err != nil {
		return nil, err
	}
	err = demux.WriteCells(f, ids)
	if err != nil {
		f.Close()
		return nil, err
	}
	return ids, f.Close()
}

// open opens the named file, or the file with a .gz suffix if it does
// not exist, decompressing gzipped input.
func open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if os.IsNotExist(err) {
		f, err = os.Open(name + ".gz")
	}
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(f.Name(), ".gz") {
		return f, nil
	}
	gz, err := pgzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return gzFile{Reader: gz, f: f}, nil
}

type gzFile struct {
	*pgzip.Reader
	f *os.File
}

func (g gzFile) Close() error {
	err := g.Reader.Close()
	ferr := g.f.Close()
	if err != nil {
		return err
	}
	return ferr
}

// subdirs returns the names of directories in dir.
func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// removePreprocessed removes all per-cell output directories in dir.
func removePreprocessed(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if !e.IsDir() || !strings.HasSuffix(e.Name(), config.PreprocessedSuffix) {
			continue
		}
		log.Printf("removing %q", e.Name())
		err = os.RemoveAll(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
	}
	return nil
}
