package main

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dupgraph"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// seed writes two bridged cliques, a pair and a singleton.
func seed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lsh.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE hashtables (sha1 TEXT, hashtable INTEGER, value BLOB)`)
	require.NoError(t, err)

	buckets := map[int][][]string{
		0: {{"a1", "a2", "a3", "a4"}, {"b1", "b2", "b3", "b4"}, {"p1", "p2"}, {"s1"}},
		1: {{"a1", "a2", "a3", "a4"}, {"b1", "b2", "b3", "b4"}, {"p1", "p2"}, {"s1"}},
		2: {{"a1", "b1"}},
	}
	for ht, bs := range buckets {
		for b, keys := range bs {
			for _, k := range keys {
				_, err := db.Exec(`INSERT INTO hashtables VALUES (?, ?, ?)`, k, ht, []byte{byte(b)})
				require.NoError(t, err)
			}
		}
	}
	return path
}

func TestCLI_Pipeline(t *testing.T) {
	dsn := seed(t)
	store := t.TempDir()

	out, err := run(t, "cc", "--source-dsn", dsn, "--store-path", store, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Number of connected components: 3")
	assert.Contains(t, out, "Number of unique elements: 11")
	assert.FileExists(t, filepath.Join(store, "cc.bin"))

	out, err = run(t, "dumpcc", "--store-path", store)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "a1 a2 a3 a4 b1 b2 b3 b4", lines[0])

	out, err = run(t, "cmd", "--store-path", store, "--mode", "quadratic", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Overall communities: 4")

	out, err = run(t, "dumpcmd", "--store-path", store, "--format", "json")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.JSONEq(t, `{"id":0,"keys":["s1"]}`, lines[0])
	assert.JSONEq(t, `{"id":1,"keys":["p1","p2"]}`, lines[1])
}

func TestCLI_ParamsFile(t *testing.T) {
	dsn := seed(t)
	store := t.TempDir()
	params := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(params, []byte("max_iterations: 25\nseed: 4\n"), 0o600))

	_, err := run(t, "cc", "--source-dsn", dsn, "--store-path", store, "--log-level", "error")
	require.NoError(t, err)

	_, err = run(t, "cmd", "--store-path", store, "--algorithm", "label_propagation", "--params", params, "--log-level", "error")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(params, []byte("resolution: 2\n"), 0o600))
	_, err = run(t, "cmd", "--store-path", store, "--algorithm", "label_propagation", "--params", params, "--log-level", "error")
	require.ErrorIs(t, err, dupgraph.ErrInvalidConfiguration)
}

func TestCLI_Errors(t *testing.T) {
	store := t.TempDir()

	_, err := run(t, "cmd", "--store-path", store, "--mode", "cubic")
	require.ErrorIs(t, err, dupgraph.ErrInvalidConfiguration)

	_, err = run(t, "cmd", "--store-path", store, "--algorithm", "spinglass")
	require.ErrorIs(t, err, dupgraph.ErrUnsupportedAlgorithm)

	_, err = run(t, "dumpcc", "--store-path", store, "--format", "xml")
	require.ErrorIs(t, err, dupgraph.ErrInvalidConfiguration)

	_, err = run(t, "dumpcmd", "--store-path", store, "missing.bin")
	require.Error(t, err)
}

func TestCLI_Algorithms(t *testing.T) {
	out, err := run(t, "algorithms")
	require.NoError(t, err)
	assert.Contains(t, out, "label_propagation")
	assert.Contains(t, out, "leading_eigenvector")
	assert.Contains(t, out, "infomap")
	assert.Contains(t, out, "walktrap")
}
