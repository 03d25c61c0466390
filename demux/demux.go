// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package demux partitions 10x Genomics contig FASTA streams into
// per-cell line sets.
//
// A contig header has the form
//
//	>{cell}-1_contig{suffix}
//
// and every line up to the next header belongs to the cell named
// in that header.
package demux

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ContigMarker separates the cell identifier from the contig suffix
// in a contig header.
const ContigMarker = "-1_contig"

// ParseError is returned when a header line does not contain the
// contig marker or has an empty cell identifier.
type ParseError struct {
	Line int    // 1-based line number, zero if unknown.
	Text string // The offending header.
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("demux: no cell identifier before %q in header %q", ContigMarker, e.Text)
	}
	return fmt.Sprintf("demux: line %d: no cell identifier before %q in header %q", e.Line, ContigMarker, e.Text)
}

// SequenceError is returned when a sequence line is found before any
// header line.
type SequenceError struct {
	Line int
	Text string
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("demux: line %d: sequence line before first header: %q", e.Line, e.Text)
}

// SinkError is returned when a sink cannot be opened, appended to or
// flushed.
type SinkError struct {
	Cell string
	Op   string // One of "open", "append" or "flush".
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("demux: %s sink for %q: %v", e.Op, e.Cell, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

// Sink accepts lines routed to a single cell.
type Sink interface {
	Append(line string) error
}

// Flusher is implemented by sinks that buffer appended lines.
type Flusher interface {
	Flush() error
}

// Sinks provides a ready Sink for a cell. Open is called once for
// each distinct cell in a Partition run, before the first line for
// that cell is appended.
type Sinks interface {
	Open(cell string) (Sink, error)
}

// ParseCellID returns the cell identifier in the contig header h.
// The Line field of a returned *ParseError is zero.
func ParseCellID(h string) (string, error) {
	id, ok := cellID(h)
	if !ok {
		return "", &ParseError{Text: h}
	}
	return id, nil
}

func cellID(h string) (id string, ok bool) {
	i := strings.Index(h, ContigMarker)
	if !strings.HasPrefix(h, ">") || i < 2 {
		return "", false
	}
	return h[1:i], true
}

// Partition reads lines from r and appends each line to the sink of
// the cell named by the most recent header. It returns the cell
// identifier of every header in input order, including repeats.
//
// Line terminators are removed before a line is appended. Processing
// stops at the first error; lines already flushed by a sink are left
// in place.
func Partition(r io.Reader, s Sinks) ([]string, error) {
	var (
		ids   []string
		cur   Sink
		cell  string
		sinks = make(map[string]Sink)
	)
	br := bufio.NewReader(r)
	for n := 1; ; n++ {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return ids, err
		}
		if len(line) == 0 {
			break
		}
		line = strings.TrimSuffix(line, "\n")

		if strings.HasPrefix(line, ">") {
			var ok bool
			cell, ok = cellID(line)
			if !ok {
				return ids, &ParseError{Line: n, Text: line}
			}
			ids = append(ids, cell)
			cur, ok = sinks[cell]
			if !ok {
				cur, err = s.Open(cell)
				if err != nil {
					return ids, &SinkError{Cell: cell, Op: "open", Err: err}
				}
				sinks[cell] = cur
			}
		} else if cur == nil {
			return ids, &SequenceError{Line: n, Text: line}
		}

		err = cur.Append(line)
		if err != nil {
			return ids, &SinkError{Cell: cell, Op: "append", Err: err}
		}
	}

	for cell, sk := range sinks {
		f, ok := sk.(Flusher)
		if !ok {
			continue
		}
		err := f.Flush()
		if err != nil {
			return ids, &SinkError{Cell: cell, Op: "flush", Err: err}
		}
	}
	return ids, nil
}
