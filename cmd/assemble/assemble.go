// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// assemble runs BraCeR assembly in docker for every cell of every
// patient in the demultiplexed data tree.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kortschak/cellsplit/bracer"
	"github.com/kortschak/cellsplit/config"
	"github.com/kortschak/cellsplit/demux"
)

var (
	envFile  = flag.String("env", ".env", "dotenv file providing HOME_DIR")
	home     = flag.String("home", "", "workflow base directory (overrides HOME_DIR)")
	docker   = flag.String("docker", "", "path to docker if not in $PATH")
	image    = flag.String("image", bracer.Image, "BraCeR docker image")
	procs    = flag.Int("procs", runtime.NumCPU(), "number of concurrent assemblies")
	failFast = flag.Bool("fail-fast", false, "stop starting assemblies after the first failure")
	dryRun   = flag.Bool("dry-run", false, "print docker commands without running them")

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	patients, err := os.ReadDir(paths.Demultiplexed())
	if err != nil {
		log.Fatalf("failed to list patients: %v", err)
	}
	var failed int
	for _, p := range patients {
		if !p.IsDir() {
			continue
		}
		jobs, err := patientJobs(paths, p.Name())
		if err != nil {
			log.Fatalf("failed to list cells for %q: %v", p.Name(), err)
		}
		log.Printf("assembling %d cells for patient %q", len(jobs), p.Name())
		n, err := run(ctx, jobs, *procs, *failFast)
		failed += n
		if err != nil {
			log.Fatalf("failed assembly for %q: %v", p.Name(), err)
		}
	}
	if failed != 0 {
		log.Fatalf("%d assemblies failed", failed)
	}
}

// job is a single cell assembly.
type job struct {
	cell     string
	docker   bracer.Docker
	assemble bracer.Assemble
}

// patientJobs returns the assembly jobs for each cell FASTA file in the
// patient's directory, sorted by cell name.
func patientJobs(paths config.Paths, patient string) ([]job, error) {
	dir := paths.Patient(patient)
	cells, err := cellNames(dir)
	if err != nil {
		return nil, err
	}
	d := bracer.Docker{
		Cmd:     *docker,
		Remove:  true,
		Volumes: []string{dir + ":/scratch"},
		Workdir: "/scratch",
		Image:   *image,
	}
	jobs := make([]job, 0, len(cells))
	for _, c := range cells {
		jobs = append(jobs, job{
			cell:   c,
			docker: d,
			assemble: bracer.Assemble{
				Cell:          c,
				Resume:        true,
				OutDir:        config.AssemblyOut(patient),
				AssembledFile: c + demux.Ext,
			},
		})
	}
	return jobs, nil
}

// cellNames returns the names of the cells with FASTA files in dir.
// The cell name is the file name up to its first dot.
func cellNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var cells []string
	for _, e := range entries {
		if !e.Type().IsRegular() || filepath.Ext(e.Name()) != demux.Ext {
			continue
		}
		cells = append(cells, strings.SplitN(e.Name(), ".", 2)[0])
	}
	sort.Strings(cells)
	return cells, nil
}

// run runs jobs with at most procs running concurrently. It returns
// the number of failed jobs. If failFast is true, no job is started
// after the first failure and the first failure is returned.
func run(ctx context.Context, jobs []job, procs int, failFast bool) (failed int, err error) {
	p := newProgress(len(jobs))
	defer func() { failed = p.close() }()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(procs)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			err := ctx.Err()
			if err != nil {
				return err
			}
			err = execute(ctx, j)
			p.jobDone(j.cell, err)
			if err != nil && failFast {
				return fmt.Errorf("cell %q: %w", j.cell, err)
			}
			return nil
		})
	}
	return 0, g.Wait()
}

// execute runs a single job. It is a variable so that tests do not
// need docker.
var execute = func(ctx context.Context, j job) error {
	if *dryRun {
		args, err := j.docker.Args(j.assemble)
		if err != nil {
			return err
		}
		fmt.Println(strings.Join(args, " "))
		return nil
	}
	cmd, err := j.docker.Command(ctx, j.assemble)
	if err != nil {
		return err
	}
	cmd.Stdout = log.Writer()
	cmd.Stderr = log.Writer()
	return cmd.Run()
}

// progress logs job completion and counts failures.
type progress struct {
	errs chan error
	done chan int
}

func newProgress(total int) *progress {
	p := &progress{errs: make(chan error), done: make(chan int)}
	go func() {
		var completed, errorCount int
		for err := range p.errs {
			if err == nil {
				completed++
			} else {
				errorCount++
				log.Print(err)
			}
			log.Printf("%d of %d assemblies complete (%0.2f%% done, %d errors)",
				completed+errorCount, total, 100*float64(completed+errorCount)/float64(total), errorCount)
		}
		p.done <- errorCount
	}()
	return p
}

func (p *progress) jobDone(cell string, err error) {
	if err != nil {
		err = fmt.Errorf("cell %q: %v", cell, err)
	}
	p.errs <- err
}

// close stops progress reporting and returns the number of failed jobs.
func (p *progress) close() int {
	close(p.errs)
	return <-p.done
}
