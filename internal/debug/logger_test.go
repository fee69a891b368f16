package debug

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitWriter(t *testing.T) {
	t.Cleanup(func() { InitWriter(nil, false) })

	var buf bytes.Buffer
	InitWriter(&buf, true)
	assert.True(t, Enabled())

	Debug("Compiled unit", "file", "pets.fnsql", "definitions", 3)
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), `msg="Compiled unit" file=pets.fnsql definitions=3`)

	buf.Reset()
	InitWriter(&buf, false)
	assert.False(t, Enabled())
	Error("dropped")
	assert.Empty(t, buf.String())
}
