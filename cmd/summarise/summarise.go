// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// summarise collects the BraCeR summary files of every patient into
// {HOME_DIR}/data/summarise_data and archives the collection.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/kortschak/cellsplit/archive"
	"github.com/kortschak/cellsplit/config"
)

type fileList []string

func (l *fileList) Set(s string) error {
	*l = nil
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			return fmt.Errorf("empty file name in %q", s)
		}
		*l = append(*l, f)
	}
	return nil
}

func (l *fileList) String() string { return strings.Join(*l, ",") }

var (
	files  = fileList{"BCR_summary.txt", "clonotype_sizes.txt"}
	format = archive.Zip
)

var (
	envFile = flag.String("env", ".env", "dotenv file providing HOME_DIR")
	home    = flag.String("home", "", "workflow base directory (overrides HOME_DIR)")
)

func main() {
	flag.Var(&files, "files", "comma separated list of summary files to collect")
	flag.Var(&format, "format", "archive format (zip or tgz)")
	flag.Parse()

	paths := config.Paths{Home: *home}
	if *home == "" {
		var err error
		paths, err = config.Load(*envFile)
		if err != nil {
			log.Fatalf("failed to configure: %v", err)
		}
	}

	name, err := summarise(paths, files, format)
	if err != nil {
		log.Fatalf("failed to summarise: %v", err)
	}
	log.Printf("wrote %q", name)
}

// summarise replaces the summary output directory with the named files
// from each patient's BraCeR summary and returns the name of the
// archive made from it.
func summarise(paths config.Paths, names []string, f archive.Format) (string, error) {
	out := paths.SummaryOut()
	err := os.RemoveAll(out)
	if err != nil {
		return "", err
	}
	err = os.MkdirAll(out, 0o755)
	if err != nil {
		return "", err
	}

	patients, err := os.ReadDir(paths.Demultiplexed())
	if err != nil {
		return "", err
	}
	for _, p := range patients {
		if !p.IsDir() {
			continue
		}
		log.Printf("collecting %q", p.Name())
		err = archive.Collect(paths.SummaryOutFor(p.Name()), paths.Summary(p.Name()), names)
		if err != nil {
			return "", fmt.Errorf("patient %q: %w", p.Name(), err)
		}
	}
	return archive.Create(out, f)
}
