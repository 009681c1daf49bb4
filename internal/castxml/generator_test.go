package castxml

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Generator:
// - Args orders epic-v1 output, compiler emulation, std, includes, defines, flags, -o, header
// - Defaults fill the binary path and compiler family
// - Generate passes the args to the runner and wraps failures in ErrGenerate
// - Version parses "castxml version X.Y.Z" and rejects other output
// - Signature changes with every setting

type fakeRunner struct {
	name string
	args []string
	out  []byte
	err  error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.name = name
	f.args = args
	return f.out, f.err
}

func TestGenerator_Args(t *testing.T) {
	t.Parallel()

	g := NewGenerator(Settings{
		CompilerPath: "/usr/bin/g++",
		Std:          "c++17",
		IncludePaths: []string{"include", "/opt/lib"},
		Defines:      []string{"NDEBUG", "LEVEL=2"},
		CFlags:       []string{"-Wno-everything"},
	})

	assert.Equal(t, []string{
		"--castxml-output=1",
		"--castxml-cc-gnu", "/usr/bin/g++",
		"-std=c++17",
		"-Iinclude", "-I/opt/lib",
		"-DNDEBUG", "-DLEVEL=2",
		"-Wno-everything",
		"-o", "out.xml", "a.hpp",
	}, g.Args("a.hpp", "out.xml"))

	assert.Equal(t, "castxml", g.Settings().Path)
	assert.Equal(t, []string{"--castxml-output=1", "-o", "o.xml", "b.hpp"}, NewGenerator(Settings{}).Args("b.hpp", "o.xml"))
}

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	ok := &fakeRunner{}
	g := NewGenerator(Settings{Path: "/opt/castxml/bin/castxml"}, WithRunner(ok))
	require.NoError(t, g.Generate(context.Background(), "a.hpp", "a.xml"))
	assert.Equal(t, "/opt/castxml/bin/castxml", ok.name)
	assert.Equal(t, []string{"--castxml-output=1", "-o", "a.xml", "a.hpp"}, ok.args)

	failing := &fakeRunner{err: errors.New("exit status 1: a.hpp:3:1: error: unknown type name 'foo'")}
	err := NewGenerator(Settings{}, WithRunner(failing)).Generate(context.Background(), "a.hpp", "a.xml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerate)
	assert.Contains(t, err.Error(), "unknown type name")
}

func TestGenerator_Version(t *testing.T) {
	t.Parallel()

	r := &fakeRunner{out: []byte("castxml version 0.6.2\n\nCastXML project maintained and supported by Kitware\n")}
	v, err := NewGenerator(Settings{}, WithRunner(r)).Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.6.2", v)
	assert.Equal(t, []string{"--version"}, r.args)

	_, err = NewGenerator(Settings{}, WithRunner(&fakeRunner{out: []byte("gccxml 0.9")})).Version(context.Background())
	assert.ErrorIs(t, err, ErrGenerate)

	_, err = NewGenerator(Settings{}, WithRunner(&fakeRunner{err: errors.New("not found")})).Version(context.Background())
	assert.ErrorIs(t, err, ErrGenerate)
}

func TestSettings_Signature(t *testing.T) {
	t.Parallel()

	base := Settings{Path: "castxml", Std: "c++17", IncludePaths: []string{"a"}}
	variants := []Settings{
		{Path: "castxml", Std: "c++20", IncludePaths: []string{"a"}},
		{Path: "castxml", Std: "c++17", IncludePaths: []string{"b"}},
		{Path: "castxml", Std: "c++17", IncludePaths: []string{"a"}, Defines: []string{"X"}},
		{Path: "castxml", Std: "c++17", IncludePaths: []string{"a"}, CFlags: []string{"-w"}},
		{Path: "castxml", Std: "c++17", IncludePaths: []string{"a"}, CompilerPath: "clang++"},
	}

	assert.Equal(t, base.Signature(), Settings{Path: "castxml", Std: "c++17", IncludePaths: []string{"a"}}.Signature())
	for _, v := range variants {
		assert.NotEqual(t, base.Signature(), v.Signature())
	}
}
