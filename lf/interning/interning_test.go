package interning_test

import (
	"testing"

	"github.com/daml-lf/bridge/lf/interning"
	"github.com/daml-lf/bridge/lf/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableV16() *interning.Table {
	return &interning.Table{Version: version.V1_6, InternedStrings: []string{"Main", "Asset"}}
}

func tableV17() *interning.Table {
	return &interning.Table{
		Version:             version.V1_7,
		InternedStrings:     []string{"Main", "Asset"},
		InternedDottedNames: [][]int32{{0, 1}},
	}
}

func TestLiteralStringResolvesOnOldVersion(t *testing.T) {
	s := interning.LiteralString("Main")
	got, err := s.Resolve(tableV16())
	require.NoError(t, err)
	assert.Equal(t, "Main", got)
}

func TestLiteralStringRejectedOnInterningVersion(t *testing.T) {
	s := interning.LiteralString("Main")
	_, err := s.Resolve(tableV17())
	assert.Error(t, err)
}

func TestInternedStringRejectedOnOldVersion(t *testing.T) {
	s := interning.InternedString(0)
	_, err := s.Resolve(tableV16())
	assert.Error(t, err)
}

func TestInternedStringResolvesOnNewVersion(t *testing.T) {
	s := interning.InternedString(1)
	got, err := s.Resolve(tableV17())
	require.NoError(t, err)
	assert.Equal(t, "Asset", got)
}

func TestInternedStringOutOfRange(t *testing.T) {
	s := interning.InternedString(99)
	_, err := s.Resolve(tableV17())
	assert.Error(t, err)
}

func TestDottedNameResolveAndJoin(t *testing.T) {
	d := interning.InternedDottedName(0)
	segments, err := d.Resolve(tableV17())
	require.NoError(t, err)
	assert.Equal(t, []string{"Main", "Asset"}, segments)
	assert.Equal(t, "Main.Asset", interning.Join(segments))
}

func TestDottedNameResolveLast(t *testing.T) {
	d := interning.InternedDottedName(0)
	last, err := d.ResolveLast(tableV17())
	require.NoError(t, err)
	assert.Equal(t, "Asset", last)
}
