package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelguard/internal/integrity"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHashCommand(t *testing.T) {
	t.Run("name only", func(t *testing.T) {
		out, err := execute(t, "hash", "UnityEngine")
		require.NoError(t, err)
		assert.Equal(t, "1758243997\n", out)
	})

	t.Run("name with token", func(t *testing.T) {
		out, err := execute(t, "hash", "mscorlib", "b77a5c561934e089")
		require.NoError(t, err)
		assert.Equal(t, "-2046915800\n", out)
	})

	t.Run("token must be hex", func(t *testing.T) {
		_, err := execute(t, "hash", "mscorlib", "not-hex")
		assert.Error(t, err)
	})
}

func TestEncodeDecode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "whitelist.bin")

	_, err := execute(t, "encode", "--out", path, "--entry", "alpha:1:2", "--entry", "beta:-3")
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	w, err := integrity.DecodeWhitelist(f)
	require.NoError(t, err)

	want := []integrity.AllowedModule{
		{Name: "alpha", Hashes: []int32{1, 2}},
		{Name: "beta", Hashes: []int32{-3}},
	}
	if diff := cmp.Diff(want, w.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	t.Run("merge appends hashes", func(t *testing.T) {
		merged := filepath.Join(dir, "merged.bin")
		_, err := execute(t, "encode", "--merge", path, "--out", merged, "--entry", "alpha:7", "--entry", "gamma:9")
		require.NoError(t, err)

		out, err := execute(t, "decode", merged)
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha:1:2:7", "beta:-3", "gamma:9"}, strings.Fields(out))
	})

	t.Run("decode as json", func(t *testing.T) {
		out, err := execute(t, "decode", "--json", path)
		require.NoError(t, err)
		assert.Contains(t, out, `"Name": "alpha"`)
	})
}

func TestEncodeRequiresInput(t *testing.T) {
	_, err := execute(t, "encode", "--out", filepath.Join(t.TempDir(), "w.bin"))
	assert.Error(t, err)

	_, err = execute(t, "encode", "--entry", "alpha:1")
	assert.Error(t, err, "--out is required")
}

func TestDecodeRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x01}, 0o600))

	_, err := execute(t, "decode", path)
	assert.ErrorIs(t, err, integrity.ErrMalformedWhitelist)
}
