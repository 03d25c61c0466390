// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package demux

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrBadCell is returned by Dir.Open when a cell identifier cannot be
// used as a file name.
var ErrBadCell = errors.New("demux: cell identifier is not a valid file name")

// Ext is the file name extension of per-cell FASTA files.
const Ext = ".fasta"

// Dir is a Sinks that appends each cell's lines to {Path}/{cell}.fasta.
// The directory is created when the first cell is opened. Files are
// opened for append, so existing per-cell files are extended.
type Dir struct {
	Path string

	// Perm is the permission used to create new files.
	// If zero, 0o644 is used.
	Perm os.FileMode

	files []*fileSink
}

// Open creates the directory if needed and opens the cell's file.
func (d *Dir) Open(cell string) (Sink, error) {
	if cell == "" || cell == "." || cell == ".." || strings.ContainsAny(cell, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrBadCell, cell)
	}
	err := os.MkdirAll(d.Path, 0o755)
	if err != nil {
		return nil, err
	}
	perm := d.Perm
	if perm == 0 {
		perm = 0o644
	}
	f, err := os.OpenFile(d.Name(cell), os.O_CREATE|os.O_WRONLY|os.O_APPEND, perm)
	if err != nil {
		return nil, err
	}
	s := &fileSink{f: f, w: bufio.NewWriter(f)}
	d.files = append(d.files, s)
	return s, nil
}

// Name returns the path of the file holding lines for cell.
func (d *Dir) Name(cell string) string {
	return filepath.Join(d.Path, cell+Ext)
}

// Close flushes and closes all files opened by d. It returns the
// first error encountered.
func (d *Dir) Close() error {
	var err error
	for _, s := range d.files {
		if ferr := s.Flush(); ferr != nil && err == nil {
			err = ferr
		}
		if cerr := s.f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	d.files = nil
	return err
}

type fileSink struct {
	f *os.File
	w *bufio.Writer
}

func (s *fileSink) Append(line string) error {
	_, err := s.w.WriteString(line)
	if err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

func (s *fileSink) Flush() error { return s.w.Flush() }

// Memory is a Sinks that holds partitions in memory.
type Memory struct {
	parts map[string]*memSink
}

// Open returns the in-memory partition for cell.
func (m *Memory) Open(cell string) (Sink, error) {
	if m.parts == nil {
		m.parts = make(map[string]*memSink)
	}
	s, ok := m.parts[cell]
	if !ok {
		s = &memSink{}
		m.parts[cell] = s
	}
	return s, nil
}

// Lines returns the lines appended for cell.
func (m *Memory) Lines(cell string) []string {
	s, ok := m.parts[cell]
	if !ok {
		return nil
	}
	return s.lines
}

// IDs returns the sorted identifiers of the cells held by m.
func (m *Memory) IDs() []string {
	ids := make([]string, 0, len(m.parts))
	for id := range m.parts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type memSink struct {
	lines []string
}

func (s *memSink) Append(line string) error {
	s.lines = append(s.lines, line)
	return nil
}
