// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package archive

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/require"
)

var summaryFiles = []string{"BCR_summary.txt", "clonotype_sizes.txt"}

// fixture builds a patient results tree and returns the summary
// directory for patient P01.
func fixture(t *testing.T) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "P01", "P01-out", "filtered_BCR_summary")
	require.NoError(t, os.MkdirAll(src, 0o755))
	for _, n := range append(summaryFiles, "IMGT_gapped.fasta") {
		require.NoError(t, os.WriteFile(filepath.Join(src, n), []byte("contents of "+n), 0o644))
	}
	return src
}

func TestCollect(t *testing.T) {
	src := fixture(t)
	dst := filepath.Join(t.TempDir(), "summarise_data", "P01")

	require.NoError(t, Collect(dst, src, summaryFiles))

	entries, err := os.ReadDir(dst)
	require.NoError(t, err)
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	require.Equal(t, summaryFiles, got)

	b, err := os.ReadFile(filepath.Join(dst, "BCR_summary.txt"))
	require.NoError(t, err)
	require.Equal(t, "contents of BCR_summary.txt", string(b))
}

func TestCollectMissing(t *testing.T) {
	src := fixture(t)
	dst := t.TempDir()
	err := Collect(dst, src, []string{"BCR_summary.txt", "missing.txt"})
	require.Error(t, err)
	require.True(t, os.IsNotExist(err))
}

func summaryTree(t *testing.T) string {
	t.Helper()
	src := fixture(t)
	out := filepath.Join(t.TempDir(), "summarise_data")
	for _, p := range []string{"P01", "P02"} {
		require.NoError(t, Collect(filepath.Join(out, p), src, summaryFiles))
	}
	return out
}

var wantFiles = map[string]string{
	"P01/BCR_summary.txt":     "contents of BCR_summary.txt",
	"P01/clonotype_sizes.txt": "contents of clonotype_sizes.txt",
	"P02/BCR_summary.txt":     "contents of BCR_summary.txt",
	"P02/clonotype_sizes.txt": "contents of clonotype_sizes.txt",
}

func TestCreateZip(t *testing.T) {
	out := summaryTree(t)
	name, err := Create(out, Zip)
	require.NoError(t, err)
	require.Equal(t, out+".zip", name)

	zr, err := zip.OpenReader(name)
	require.NoError(t, err)
	defer zr.Close()

	got := make(map[string]string)
	var dirs []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			dirs = append(dirs, f.Name)
			continue
		}
		r, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(r)
		require.NoError(t, err)
		r.Close()
		got[f.Name] = string(b)
	}
	sort.Strings(dirs)
	require.Equal(t, []string{"P01/", "P02/"}, dirs)
	require.Equal(t, wantFiles, got)
}

func TestCreateTarGz(t *testing.T) {
	out := summaryTree(t)
	name, err := Create(out, TarGz)
	require.NoError(t, err)
	require.Equal(t, out+".tar.gz", name)

	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()
	gr, err := pgzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gr)

	got := make(map[string]string)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if h.Typeflag == tar.TypeDir {
			continue
		}
		b, err := io.ReadAll(tr)
		require.NoError(t, err)
		got[h.Name] = string(b)
	}
	require.Equal(t, wantFiles, got)
}

func TestFormatSet(t *testing.T) {
	var f Format
	require.NoError(t, f.Set("tar.gz"))
	require.Equal(t, TarGz, f)
	require.NoError(t, f.Set("zip"))
	require.Equal(t, Zip, f)
	require.Error(t, f.Set("rar"))
}
