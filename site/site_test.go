package site

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
sensors:
  - id: 0
    name: S0
    description: border router
  - id: 21
    name: edge-east
flowtypes:
  - id: 0
    name: in
    class: all
  - id: 2
    name: out
    class: all
`

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	id, ok := c.SensorID("edge-east")
	assert.True(t, ok)
	assert.Equal(t, uint16(21), id)
	assert.Equal(t, "edge-east", c.SensorName(21))

	ftID, ok := c.FlowTypeID("out")
	assert.True(t, ok)
	assert.Equal(t, uint8(2), ftID)
	assert.Equal(t, "out", c.FlowTypeName(2))

	assert.Len(t, c.Sensors(), 2)
	assert.Len(t, c.FlowTypes(), 2)
}

func TestParseUnknownLookups(t *testing.T) {
	c, err := Parse(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	_, ok := c.SensorID("nope")
	assert.False(t, ok)
	assert.Equal(t, "S500", c.SensorName(500))

	_, ok = c.FlowTypeID("nope")
	assert.False(t, ok)
	assert.Equal(t, "T9", c.FlowTypeName(9))
}

func TestParseDuplicates(t *testing.T) {
	_, err := Parse(strings.NewReader(`
sensors:
  - id: 1
    name: a
  - id: 1
    name: b
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate sensor id")

	_, err = Parse(strings.NewReader(`
flowtypes:
  - id: 1
    name: in
  - id: 2
    name: in
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate flow type name")
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader(`
sensors:
  - id: 1
    name: a
    bogus: true
`))
	assert.Error(t, err)
}

func TestParseRejectsUnnamed(t *testing.T) {
	_, err := Parse(strings.NewReader(`
sensors:
  - id: 7
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no name")
}
