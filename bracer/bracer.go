// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bracer provides interaction with the BraCeR B cell receptor
// reconstruction tool, either installed locally or run from its docker
// image.
package bracer

import (
	"context"
	"errors"
	"os/exec"

	"github.com/biogo/external"
)

// Image is the published BraCeR docker image.
const Image = "teichlab/bracer"

var ErrMissingRequired = errors.New("bracer: missing required argument")

// Assemble defines parameters for the bracer assemble subcommand.
type Assemble struct {
	// Usage: bracer assemble [options] <cell_name> <output_dir> [<file1> [<file2>]]
	//
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}bracer{{end}}"` // bracer

	Cell string `buildarg:"assemble{{split}}{{.}}"` // <cell_name>

	Cores      int    `buildarg:"{{if .}}--ncores{{split}}{{.}}{{end}}"`      // -p: number of processor cores
	ConfigFile string `buildarg:"{{if .}}--config_file{{split}}{{.}}{{end}}"` // -c: config file
	Resume     bool   `buildarg:"{{if .}}-r{{end}}"`                          // -r: resume with existing files
	Species    string `buildarg:"{{if .}}--species{{split}}{{.}}{{end}}"`     // -s: species from which the cells were derived

	OutDir string `buildarg:"{{.}}"` // <output_dir>

	// Input options:
	AssembledFile  string   `buildarg:"{{if .}}--assembled_file{{split}}{{.}}{{end}}"`       // --assembled_file: fasta of already assembled contigs
	SingleEnd      bool     `buildarg:"{{if .}}--single_end{{end}}"`                         // --single_end
	FragmentLength int      `buildarg:"{{if .}}--fragment_length{{split}}{{.}}{{end}}"`      // --fragment_length: required for single end reads
	FragmentSD     int      `buildarg:"{{if .}}--fragment_sd{{split}}{{.}}{{end}}"`          // --fragment_sd: required for single end reads
	Loci           []string `buildarg:"{{if .}}--loci{{range .}}{{split}}{{.}}{{end}}{{end}}"` // --loci: loci to assemble
	MaxJunctionLen int      `buildarg:"{{if .}}--max_junc_len{{split}}{{.}}{{end}}"`         // --max_junc_len

	// Read handling options:
	NoTrimming  bool `buildarg:"{{if .}}--no_trimming{{end}}"`        // --no_trimming
	KeepTrimmed bool `buildarg:"{{if .}}--keep_trimmed_reads{{end}}"` // --keep_trimmed_reads

	Reads []string `buildarg:"{{range $i, $r := .}}{{if $i}}{{split}}{{end}}{{$r}}{{end}}"` // <file1> [<file2>]
}

// BuildCommand returns an exec.Cmd built from the parameters in a.
func (a Assemble) BuildCommand() (*exec.Cmd, error) {
	cl, err := a.build()
	if err != nil {
		return nil, err
	}
	return exec.Command(cl[0], cl[1:]...), nil
}

func (a Assemble) build() ([]string, error) {
	if a.Cell == "" || a.OutDir == "" {
		return nil, ErrMissingRequired
	}
	if a.AssembledFile == "" && len(a.Reads) == 0 {
		return nil, ErrMissingRequired
	}
	return external.Build(a)
}

// Docker defines parameters for running a containerised tool with
// docker run.
type Docker struct {
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}docker{{end}}{{split}}run"` // docker run

	Remove  bool     `buildarg:"{{if .}}--rm{{end}}"`                                                   // --rm: remove the container on exit
	Volumes []string `buildarg:"{{range $i, $v := .}}{{if $i}}{{split}}{{end}}-v{{split}}{{$v}}{{end}}"` // -v: host:container bind mounts
	Workdir string   `buildarg:"{{if .}}-w{{split}}{{.}}{{end}}"`                                       // -w: working directory in the container

	Image string `buildarg:"{{if .}}{{.}}{{else}}teichlab/bracer{{end}}"` // image
}

// BuildCommand returns an exec.Cmd that runs the image with its
// default arguments.
func (d Docker) BuildCommand() (*exec.Cmd, error) {
	cl, err := external.Build(d)
	if err != nil {
		return nil, err
	}
	return exec.Command(cl[0], cl[1:]...), nil
}

// Command returns an exec.Cmd that runs the assembly described by a
// in the container described by d. The Cmd field of a is ignored
// since the image entry point is bracer.
func (d Docker) Command(ctx context.Context, a Assemble) (*exec.Cmd, error) {
	cl, err := d.Args(a)
	if err != nil {
		return nil, err
	}
	return exec.CommandContext(ctx, cl[0], cl[1:]...), nil
}

// Args returns the complete docker command line for running a in d.
func (d Docker) Args(a Assemble) ([]string, error) {
	dl, err := external.Build(d)
	if err != nil {
		return nil, err
	}
	al, err := a.build()
	if err != nil {
		return nil, err
	}
	return append(dl, al[1:]...), nil
}
