package schemagen_test

import (
	"testing"

	"github.com/daml-lf/bridge/codec/schemagen"
	"github.com/daml-lf/bridge/lf/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureArchive() *types.Archive {
	assetData := &types.Data{
		Name: "Asset",
		Kind: types.DataTemplate,
		Record: &types.Record{Fields: []types.Field{
			{Name: "owner", Type: types.Type{Kind: types.KindParty}},
			{Name: "note", Type: types.Type{Kind: types.KindOptional, Optional: []types.Type{{Kind: types.KindText}}}},
		}},
		Template: &types.Template{},
	}
	colorData := &types.Data{
		Name: "Color",
		Kind: types.DataEnum,
		Enum: &types.Enum{Constructors: []string{"Red", "Green", "Blue"}},
	}
	mod := &types.Module{
		Path:      []string{"Main"},
		Data:      map[string]*types.Data{"Asset": assetData, "Color": colorData},
		DataOrder: []string{"Asset", "Color"},
	}
	pkg := &types.Package{ID: "pkg1", Modules: map[string]*types.Module{"Main": mod}}
	return &types.Archive{
		Name:          "test",
		MainPackageID: "pkg1",
		Packages:      map[string]*types.Package{"pkg1": pkg},
		PackageOrder:  []string{"pkg1"},
	}
}

func TestGenerateRecordSchemaMarksOptionalFieldsNotRequired(t *testing.T) {
	archive := fixtureArchive()
	assetType := types.MakeTyCon("pkg1", []string{"Main"}, "Asset")

	doc, err := schemagen.Generate(assetType, archive)
	require.NoError(t, err)

	defs, ok := doc["$defs"].(map[string]any)
	require.True(t, ok)
	require.Len(t, defs, 1)

	var recordSchema map[string]any
	for _, v := range defs {
		recordSchema = v.(map[string]any)
	}
	required, _ := recordSchema["required"].([]any)
	assert.Equal(t, []any{"owner"}, required)
}

func TestGenerateEnumSchemaListsConstructors(t *testing.T) {
	archive := fixtureArchive()
	colorType := types.MakeTyCon("pkg1", []string{"Main"}, "Color")

	doc, err := schemagen.Generate(colorType, archive)
	require.NoError(t, err)
	defs := doc["$defs"].(map[string]any)
	var enumSchema map[string]any
	for _, v := range defs {
		enumSchema = v.(map[string]any)
	}
	assert.Equal(t, []any{"Red", "Green", "Blue"}, enumSchema["enum"])
}

func TestValidateAcceptsWellFormedPayload(t *testing.T) {
	archive := fixtureArchive()
	assetType := types.MakeTyCon("pkg1", []string{"Main"}, "Asset")
	err := schemagen.Validate([]byte(`{"owner":"Alice","note":"hi"}`), assetType, archive)
	assert.NoError(t, err)
}

func TestValidateAggregatesMultipleViolations(t *testing.T) {
	archive := fixtureArchive()
	assetType := types.MakeTyCon("pkg1", []string{"Main"}, "Asset")
	err := schemagen.Validate([]byte(`{"owner":42,"bogus":true}`), assetType, archive)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner")
	assert.Contains(t, err.Error(), "bogus")
}

func TestValidateRejectsMissingRequiredField(t *testing.T) {
	archive := fixtureArchive()
	assetType := types.MakeTyCon("pkg1", []string{"Main"}, "Asset")
	err := schemagen.Validate([]byte(`{}`), assetType, archive)
	assert.Error(t, err)
}
