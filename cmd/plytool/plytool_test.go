package main

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTrianglePLY writes a minimal little-endian PLY file with one
// triangle and returns its path.
func writeTrianglePLY(t *testing.T, dir string) string {
	t.Helper()

	header := "ply\n" +
		"format binary_little_endian 1.0\n" +
		"element vertex 3\n" +
		"property float x\nproperty float y\nproperty float z\n" +
		"element face 1\n" +
		"property list uchar uchar vertex_indices\n" +
		"end_header\n"

	body := make([]byte, 0, 40)
	for _, v := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		body = binary.LittleEndian.AppendUint32(body, math.Float32bits(v))
	}
	body = append(body, 3, 0, 1, 2)

	path := filepath.Join(dir, "triangle.ply")
	require.NoError(t, os.WriteFile(path, append([]byte(header), body...), 0644))
	return path
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func runCommand(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestValidateCommand(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeTrianglePLY(t, ".")

	assert.NoError(t, runCommand("validate", path))
}

func TestValidateCommand_BadFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	bad := filepath.Join(dir, "bad.ply")
	require.NoError(t, os.WriteFile(bad, []byte("not a ply file\n"), 0644))

	err := runCommand("validate", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 files failed")
}

func TestInfoCommand(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeTrianglePLY(t, ".")

	assert.NoError(t, runCommand("info", path))
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	in := writeTrianglePLY(t, dir)
	out := filepath.Join(dir, "out.ply")

	require.NoError(t, runCommand("convert", in, out, "--byte-order", "big"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "ply\nformat binary_big_endian 1.0\n"))

	// The converted file must decode cleanly too.
	assert.NoError(t, runCommand("validate", out))
}

func TestConvertCommand_BadByteOrder(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	in := writeTrianglePLY(t, dir)

	err := runCommand("convert", in, filepath.Join(dir, "out.ply"), "--byte-order", "middle")
	assert.Error(t, err)
}
