package symbol_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/tmppyc/symbol"
)

func TestIntern(t *testing.T) {
	a := symbol.Intern("foo")
	b := symbol.Intern("foo")
	c := symbol.Intern("bar")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "foo", a.Str())
	assert.Equal(t, "bar", c.Str())
}

func TestInvalid(t *testing.T) {
	assert.Equal(t, "(invalid)", symbol.Invalid.Str())
}
