// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDotenv(t *testing.T) {
	t.Setenv(HomeKey, "/from/environment")
	env := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(env, []byte("# workflow\nHOME_DIR=/srv/bcr\nOTHER=x\n"), 0o644))

	p, err := Load(env)
	require.NoError(t, err)
	require.Equal(t, "/srv/bcr", p.Home)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv(HomeKey, "/from/environment")
	p, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "/from/environment", p.Home)
}

func TestLoadNoHome(t *testing.T) {
	t.Setenv(HomeKey, "")
	env := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(env, []byte("OTHER=x\n"), 0o644))
	_, err := Load(env)
	require.ErrorIs(t, err, ErrNoHome)
}

func TestPaths(t *testing.T) {
	p := Paths{Home: "/srv/bcr"}
	require.Equal(t, "/srv/bcr/data/raw/S1/outs/filtered_contig.fasta", p.Raw("S1"))
	require.Equal(t, "/srv/bcr/data/demultiplexed/S1-preprocessed", p.Preprocessed("S1"))
	require.Equal(t, "/srv/bcr/data/demultiplexed/P01/P01-out/filtered_BCR_summary", p.Summary("P01"))
	require.Equal(t, "/srv/bcr/data/summarise_data", p.SummaryOut())
}
