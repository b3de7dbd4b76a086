package bridge

import (
	"testing"

	"github.com/daml-lf/bridge/lf/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTemplateQualifiedMatch(t *testing.T) {
	archive := pingArchive()
	r, err := resolveTemplate(archive, "pkg1:DA.PingPong:Ping")
	require.NoError(t, err)
	assert.Equal(t, "pkg1", r.PackageID)
	assert.Equal(t, []string{"DA", "PingPong"}, r.ModPath)
	assert.Equal(t, "pkg1:DA.PingPong:Ping", r.canonicalID())
}

func TestResolveTemplateUnqualifiedUniqueMatch(t *testing.T) {
	archive := pingArchive()
	r, err := resolveTemplate(archive, "DA.PingPong:Ping")
	require.NoError(t, err)
	assert.Equal(t, "pkg1", r.PackageID)
}

func TestResolveTemplateUnqualifiedMultipleMatches(t *testing.T) {
	archive := duplicateTemplateArchive()
	_, err := resolveTemplate(archive, "DA.PingPong:Ping")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple matching templates")
}

func TestResolveTemplateUnknownQualified(t *testing.T) {
	archive := pingArchive()
	_, err := resolveTemplate(archive, "pkg1:DA.PingPong:Nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown template id")
}

func TestResolveTemplateUnknownUnqualified(t *testing.T) {
	archive := pingArchive()
	_, err := resolveTemplate(archive, "DA.PingPong:Nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown template id")
}

func TestResolveTemplateUnknownPackage(t *testing.T) {
	archive := pingArchive()
	_, err := resolveTemplate(archive, "nope:DA.PingPong:Ping")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown template id")
}

func TestResolveTemplateRejectsNonTemplateData(t *testing.T) {
	archive := pingArchive()
	colorData := &types.Data{Name: "Color", Kind: types.DataEnum, Enum: &types.Enum{Constructors: []string{"Red", "Green"}}}
	mod := archive.Packages["pkg1"].Modules["DA.PingPong"]
	mod.Data["Color"] = colorData
	mod.DataOrder = append(mod.DataOrder, "Color")
	_, err := resolveTemplate(archive, "pkg1:DA.PingPong:Color")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a template")
}

func TestResolveTemplateMalformedID(t *testing.T) {
	archive := pingArchive()
	_, err := resolveTemplate(archive, "too:many:colons:here")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed template id")
}

func TestFindChoiceUnknown(t *testing.T) {
	_, err := findChoice(pingData(), "NoSuchChoice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown choice")
}

func TestFindChoiceMatch(t *testing.T) {
	c, err := findChoice(pingData(), "Pong")
	require.NoError(t, err)
	assert.True(t, c.Consuming)
}
