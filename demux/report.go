// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package demux

import (
	"bufio"
	"io"
	"strings"

	"github.com/biogo/store/llrb"
)

// CellList is the conventional file name for a cell identifier report.
const CellList = "list_of_cells.txt"

// WriteCells writes ids to w, one per line. Repeated identifiers are
// written as they appear.
func WriteCells(w io.Writer, ids []string) error {
	bw := bufio.NewWriter(w)
	for _, id := range ids {
		_, err := bw.WriteString(id)
		if err != nil {
			return err
		}
		err = bw.WriteByte('\n')
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// CellCount is the number of contig headers seen for a cell.
type CellCount struct {
	Cell    string
	Contigs int
}

// Compare satisfies the llrb.Comparable interface.
func (c *CellCount) Compare(b llrb.Comparable) int {
	return strings.Compare(c.Cell, b.(*CellCount).Cell)
}

// Census is a sorted tally of distinct cell identifiers.
type Census struct {
	t llrb.Tree
}

// NewCensus returns a Census of the identifiers in ids.
func NewCensus(ids []string) *Census {
	var c Census
	for _, id := range ids {
		c.Add(id)
	}
	return &c
}

// Add counts one more contig for cell.
func (c *Census) Add(cell string) {
	got := c.t.Get(&CellCount{Cell: cell})
	if got != nil {
		got.(*CellCount).Contigs++
		return
	}
	c.t.Insert(&CellCount{Cell: cell, Contigs: 1})
}

// Contigs returns the number of contigs counted for cell.
func (c *Census) Contigs(cell string) int {
	got := c.t.Get(&CellCount{Cell: cell})
	if got == nil {
		return 0
	}
	return got.(*CellCount).Contigs
}

// Len returns the number of distinct cells.
func (c *Census) Len() int { return c.t.Len() }

// Do calls fn for each cell in lexical order of identifier until fn
// returns true.
func (c *Census) Do(fn func(CellCount) (done bool)) {
	c.t.Do(func(e llrb.Comparable) bool {
		return fn(*e.(*CellCount))
	})
}
