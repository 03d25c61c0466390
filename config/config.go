// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config locates the workflow data tree.
//
// The workflow base directory is taken from the HOME_DIR key of a
// dotenv file, falling back to the HOME_DIR environment variable.
// All data lives below {HOME_DIR}/data:
//
//	data/raw/{sample}/outs/filtered_contig.fasta
//	data/demultiplexed/{sample}-preprocessed/{cell}.fasta
//	data/demultiplexed/{patient}/{patient}-out/filtered_BCR_summary/
//	data/summarise_data/{patient}/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// HomeKey is the dotenv and environment key holding the base directory.
const HomeKey = "HOME_DIR"

// ErrNoHome is returned when no base directory is configured.
var ErrNoHome = errors.New("config: " + HomeKey + " not set")

// Paths describes the workflow data tree rooted at Home.
type Paths struct {
	Home string
}

// Load returns the Paths configured by the dotenv file at path. If
// path is empty ".env" is used. A missing dotenv file is not an error
// when HOME_DIR is set in the environment.
func Load(path string) (Paths, error) {
	if path == "" {
		path = ".env"
	}
	env, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Paths{}, fmt.Errorf("config: failed to read %q: %w", path, err)
	}
	home := env[HomeKey]
	if home == "" {
		home = os.Getenv(HomeKey)
	}
	if home == "" {
		return Paths{}, ErrNoHome
	}
	return Paths{Home: home}, nil
}

// Raw returns the 10x Genomics contig FASTA for sample.
func (p Paths) Raw(sample string) string {
	return filepath.Join(p.RawDir(), sample, "outs", "filtered_contig.fasta")
}

// RawDir returns the directory holding 10x Genomics sample outputs.
func (p Paths) RawDir() string {
	return filepath.Join(p.Home, "data", "raw")
}

// Demultiplexed returns the directory holding demultiplexed samples.
func (p Paths) Demultiplexed() string {
	return filepath.Join(p.Home, "data", "demultiplexed")
}

// Preprocessed returns the per-cell output directory for sample.
func (p Paths) Preprocessed(sample string) string {
	return filepath.Join(p.Demultiplexed(), sample+PreprocessedSuffix)
}

// PreprocessedSuffix is appended to a sample name to form its
// per-cell output directory name.
const PreprocessedSuffix = "-preprocessed"

// Patient returns the directory holding a patient's per-cell FASTA
// files and assembly outputs.
func (p Paths) Patient(patient string) string {
	return filepath.Join(p.Demultiplexed(), patient)
}

// AssemblyOut returns the name of a patient's BraCeR output directory
// relative to the patient directory.
func AssemblyOut(patient string) string {
	return patient + "-out"
}

// Summary returns the BraCeR summary directory for patient.
func (p Paths) Summary(patient string) string {
	return filepath.Join(p.Patient(patient), AssemblyOut(patient), "filtered_BCR_summary")
}

// SummaryOut returns the directory curated summaries are collected in.
func (p Paths) SummaryOut() string {
	return filepath.Join(p.Home, "data", "summarise_data")
}

// SummaryOutFor returns the directory patient's curated summaries are
// collected in.
func (p Paths) SummaryOutFor(patient string) string {
	return filepath.Join(p.SummaryOut(), patient)
}
