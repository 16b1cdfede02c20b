package diag_test

import (
	"testing"
	"text/scanner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/tmppyc/diag"
)

func testSource() diag.Source {
	return diag.Source{
		Filename: "test.py",
		Lines: []string{
			"x = 1",
			"y = x + True",
		},
	}
}

func TestErrorFormat(t *testing.T) {
	src := testSource()
	err := diag.New(diag.TypeMismatch, src,
		scanner.Position{Filename: "test.py", Line: 2, Column: 5},
		"operand of + must be int")
	assert.Equal(t,
		"test.py:2:5: error: operand of + must be int\n"+
			"y = x + True\n"+
			"    ^",
		err.Error())
}

func TestErrorFormatWithNote(t *testing.T) {
	src := testSource()
	err := diag.New(diag.Redefinition, src,
		scanner.Position{Filename: "test.py", Line: 2, Column: 1},
		"y was already defined").
		WithNote(scanner.Position{Filename: "test.py", Line: 1, Column: 1}, "y was defined here")
	assert.Equal(t,
		"test.py:2:1: error: y was already defined\n"+
			"y = x + True\n"+
			"^\n"+
			"test.py:1:1: note: y was defined here\n"+
			"x = 1\n"+
			"^",
		err.Error())
}

func TestErrorFormatMissingSourceLine(t *testing.T) {
	err := diag.New(diag.UndefinedName, diag.Source{Filename: "test.py"},
		scanner.Position{Filename: "test.py", Line: 7, Column: 3},
		"reference to undefined name: z")
	assert.Equal(t, "test.py:7:3: error: reference to undefined name: z", err.Error())
}

func TestRecover(t *testing.T) {
	src := testSource()
	err := diag.Recover(func() {
		diag.Raise(diag.UndefinedName, src, scanner.Position{Filename: "test.py", Line: 1, Column: 1}, "boom")
	})
	require.Error(t, err)
	ce, ok := err.(*diag.CompilationError)
	require.True(t, ok)
	assert.Equal(t, diag.UndefinedName, ce.Kind)

	require.NoError(t, diag.Recover(func() {}))
}

func TestRecoverRepanicsInternalErrors(t *testing.T) {
	assert.Panics(t, func() {
		_ = diag.Recover(func() {
			diag.InternalError("invariant violated")
		})
	})
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "TypeMismatch", diag.TypeMismatch.String())
	assert.Equal(t, "Unknown", diag.Unknown.String())
}
