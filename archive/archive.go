// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package archive collects curated result files and packs them into
// zip or gzipped tar archives.
package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/pgzip"
)

// Format is an archive format.
type Format string

const (
	Zip   Format = "zip"
	TarGz Format = "tgz"
)

// Ext returns the file name extension for f.
func (f Format) Ext() string {
	switch f {
	case Zip:
		return ".zip"
	case TarGz:
		return ".tar.gz"
	default:
		return ""
	}
}

// Set satisfies the flag.Value interface.
func (f *Format) Set(s string) error {
	switch Format(s) {
	case Zip, TarGz:
		*f = Format(s)
		return nil
	case "tar.gz":
		*f = TarGz
		return nil
	default:
		return fmt.Errorf("archive: unknown format: %q", s)
	}
}

func (f *Format) String() string { return string(*f) }

// Collect copies the named files from src into dst, creating dst if
// necessary. A missing source file is an error.
func Collect(dst, src string, names []string) error {
	err := os.MkdirAll(dst, 0o755)
	if err != nil {
		return err
	}
	for _, n := range names {
		err = copyFile(filepath.Join(dst, n), filepath.Join(src, n))
		if err != nil {
			return err
		}
	}
	return nil
}

func copyFile(dst, src string) error {
	r, err := os.Open(src)
	if err != nil {
		return err
	}
	defer r.Close()
	fi, err := r.Stat()
	if err != nil {
		return err
	}
	w, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	if err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Create writes an archive of the tree rooted at dir to the file
// dir+f.Ext() and returns the name of the archive. Paths in the
// archive are relative to dir.
func Create(dir string, f Format) (string, error) {
	dir = filepath.Clean(dir)
	name := dir + f.Ext()
	out, err := os.Create(name)
	if err != nil {
		return "", err
	}
	switch f {
	case Zip:
		err = WriteZip(out, dir)
	case TarGz:
		err = WriteTarGz(out, dir)
	default:
		err = fmt.Errorf("archive: unknown format: %q", f)
	}
	if err != nil {
		out.Close()
		return "", err
	}
	return name, out.Close()
}

// WriteZip writes a zip archive of the tree rooted at dir to w.
func WriteZip(w io.Writer, dir string) error {
	zw := zip.NewWriter(w)
	err := walk(dir, func(path, rel string, fi fs.FileInfo) error {
		h, err := zip.FileInfoHeader(fi)
		if err != nil {
			return err
		}
		h.Name = rel
		if fi.IsDir() {
			h.Name += "/"
			_, err = zw.CreateHeader(h)
			return err
		}
		h.Method = zip.Deflate
		fw, err := zw.CreateHeader(h)
		if err != nil {
			return err
		}
		return copyFrom(fw, path)
	})
	if err != nil {
		return err
	}
	return zw.Close()
}

// WriteTarGz writes a gzipped tar archive of the tree rooted at dir
// to w.
func WriteTarGz(w io.Writer, dir string) error {
	gw := pgzip.NewWriter(w)
	tw := tar.NewWriter(gw)
	err := walk(dir, func(path, rel string, fi fs.FileInfo) error {
		h, err := tar.FileInfoHeader(fi, "")
		if err != nil {
			return err
		}
		h.Name = rel
		if fi.IsDir() {
			h.Name += "/"
		}
		err = tw.WriteHeader(h)
		if err != nil || fi.IsDir() {
			return err
		}
		return copyFrom(tw, path)
	})
	if err != nil {
		return err
	}
	err = tw.Close()
	if err != nil {
		return err
	}
	return gw.Close()
}

// walk calls fn for each regular file and directory below dir with
// its slash-separated path relative to dir.
func walk(dir string, fn func(path, rel string, fi fs.FileInfo) error) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		if !d.IsDir() && !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return fn(path, filepath.ToSlash(rel), fi)
	})
}

func copyFrom(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
