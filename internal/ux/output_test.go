package ux

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinter_PlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Fail("Can't use both the %q and %q flags", "projects", "all")
	p.Success("Done %s", "foo")
	p.Plain("  - %s", "bar")

	assert.Equal(t, "Can't use both the \"projects\" and \"all\" flags\nDone foo\n  - bar\n", buf.String())
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
	assert.False(t, IsTerminal("not a writer"))
}

func TestPrintersAreIndependent(t *testing.T) {
	var a, b bytes.Buffer
	pa, pb := NewPrinter(&a), NewPrinter(&b)

	pa.Info("a")
	pb.Warning("b")

	assert.Equal(t, "a\n", a.String())
	assert.Equal(t, "b\n", b.String())
	assert.Same(t, &a, pa.Writer())
}
