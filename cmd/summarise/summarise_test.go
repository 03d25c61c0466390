// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/kortschak/cellsplit/archive"
	"github.com/kortschak/cellsplit/config"
)

func TestSummarise(t *testing.T) {
	paths := config.Paths{Home: t.TempDir()}
	for _, p := range []string{"P01", "P02"} {
		src := paths.Summary(p)
		require.NoError(t, os.MkdirAll(src, 0o755))
		for _, n := range files {
			require.NoError(t, os.WriteFile(filepath.Join(src, n), []byte(p+" "+n), 0o644))
		}
		require.NoError(t, os.WriteFile(filepath.Join(src, "IMGT_gapped.fasta"), nil, 0o644))
	}
	stale := filepath.Join(paths.SummaryOut(), "old")
	require.NoError(t, os.MkdirAll(stale, 0o755))

	name, err := summarise(paths, files, archive.Zip)
	require.NoError(t, err)
	require.Equal(t, paths.SummaryOut()+".zip", name)

	_, err = os.Stat(stale)
	require.True(t, os.IsNotExist(err))

	b, err := os.ReadFile(filepath.Join(paths.SummaryOutFor("P02"), "clonotype_sizes.txt"))
	require.NoError(t, err)
	require.Equal(t, "P02 clonotype_sizes.txt", string(b))

	zr, err := zip.OpenReader(name)
	require.NoError(t, err)
	defer zr.Close()
	var got []string
	for _, f := range zr.File {
		if !f.FileInfo().IsDir() {
			got = append(got, f.Name)
		}
	}
	require.ElementsMatch(t, []string{
		"P01/BCR_summary.txt", "P01/clonotype_sizes.txt",
		"P02/BCR_summary.txt", "P02/clonotype_sizes.txt",
	}, got)
}

func TestSummariseMissing(t *testing.T) {
	paths := config.Paths{Home: t.TempDir()}
	src := paths.Summary("P01")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "BCR_summary.txt"), nil, 0o644))

	_, err := summarise(paths, files, archive.Zip)
	require.Error(t, err)
	require.Contains(t, err.Error(), `patient "P01"`)
}

func TestFileList(t *testing.T) {
	var l fileList
	require.NoError(t, l.Set("a.txt, b.txt"))
	require.Equal(t, fileList{"a.txt", "b.txt"}, l)
	require.Error(t, l.Set("a.txt,,b.txt"))
}
