package codec_test

import (
	"testing"

	"github.com/daml-lf/bridge/codec"
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
	shapeData := &types.Data{
		Name: "Shape",
		Kind: types.DataVariant,
		Variant: &types.Variant{Constructors: []types.Field{
			{Name: "Circle", Type: types.Type{Kind: types.KindNumeric}},
			{Name: "Square", Type: types.Type{Kind: types.KindNumeric}},
		}},
	}

	mod := &types.Module{
		Path: []string{"Main"},
		Data: map[string]*types.Data{
			"Asset": assetData,
			"Color": colorData,
			"Shape": shapeData,
		},
		DataOrder: []string{"Asset", "Color", "Shape"},
	}
	pkg := &types.Package{
		ID:      "pkg1",
		Modules: map[string]*types.Module{"Main": mod},
	}
	return &types.Archive{
		Name:          "test",
		MainPackageID: "pkg1",
		Packages:      map[string]*types.Package{"pkg1": pkg},
		PackageOrder:  []string{"pkg1"},
	}
}

func assetType() types.Type {
	return types.MakeTyCon("pkg1", []string{"Main"}, "Asset")
}

func TestDecodeRecordMissingOptionalFieldDefaultsToNone(t *testing.T) {
	archive := fixtureArchive()
	v, err := codec.Decode([]byte(`{"owner":"Alice"}`), assetType(), archive)
	require.NoError(t, err)
	require.Equal(t, codec.ValueRecord, v.Kind)
	require.Len(t, v.Record.Fields, 2)
	assert.Equal(t, "owner", v.Record.Fields[0].Name)
	assert.Equal(t, "Alice", v.Record.Fields[0].Value.Party)
	assert.Equal(t, "note", v.Record.Fields[1].Name)
	assert.Nil(t, v.Record.Fields[1].Value.Optional)
}

func TestDecodeRecordRejectsUnknownField(t *testing.T) {
	archive := fixtureArchive()
	_, err := codec.Decode([]byte(`{"owner":"Alice","bogus":1}`), assetType(), archive)
	assert.Error(t, err)
}

func TestDecodeRecordPositionalForm(t *testing.T) {
	archive := fixtureArchive()
	v, err := codec.Decode([]byte(`["Alice",null]`), assetType(), archive)
	require.NoError(t, err)
	assert.Equal(t, "Alice", v.Record.Fields[0].Value.Party)
}

func TestEncodeRecordPreservesDeclarationOrder(t *testing.T) {
	v := codec.Value{Kind: codec.ValueRecord, Record: &codec.RecordValue{Fields: []codec.FieldValue{
		{Name: "owner", Value: codec.Value{Kind: codec.ValueParty, Party: "Alice"}},
		{Name: "note", Value: codec.None()},
	}}}
	out, err := codec.Encode(v)
	require.NoError(t, err)
	assert.Equal(t, `{"owner":"Alice","note":null}`, string(out))
}

func TestNestedOptionalDisambiguation(t *testing.T) {
	innerType := types.Type{Kind: types.KindOptional, Optional: []types.Type{{Kind: types.KindText}}}
	nestedType := types.Type{Kind: types.KindOptional, Optional: []types.Type{innerType}}
	archive := fixtureArchive()

	none, err := codec.Decode([]byte(`null`), nestedType, archive)
	require.NoError(t, err)
	assert.Nil(t, none.Optional)

	someNone, err := codec.Decode([]byte(`[]`), nestedType, archive)
	require.NoError(t, err)
	require.NotNil(t, someNone.Optional)
	assert.Nil(t, someNone.Optional.Optional)

	someSome, err := codec.Decode([]byte(`["hi"]`), nestedType, archive)
	require.NoError(t, err)
	require.NotNil(t, someSome.Optional)
	require.NotNil(t, someSome.Optional.Optional)
	assert.Equal(t, "hi", someSome.Optional.Optional.Text)

	for _, v := range []codec.Value{none, someNone, someSome} {
		encoded, err := codec.Encode(v)
		require.NoError(t, err)
		roundTripped, err := codec.Decode(encoded, nestedType, archive)
		require.NoError(t, err)
		assert.Equal(t, v, roundTripped)
	}
}

func TestDecodeEnum(t *testing.T) {
	archive := fixtureArchive()
	v, err := codec.Decode([]byte(`"Green"`), types.MakeTyCon("pkg1", []string{"Main"}, "Color"), archive)
	require.NoError(t, err)
	assert.Equal(t, "Green", v.Enum)

	_, err = codec.Decode([]byte(`"Purple"`), types.MakeTyCon("pkg1", []string{"Main"}, "Color"), archive)
	assert.Error(t, err)
}

func TestDecodeVariant(t *testing.T) {
	archive := fixtureArchive()
	v, err := codec.Decode([]byte(`{"tag":"Circle","value":"3.5"}`), types.MakeTyCon("pkg1", []string{"Main"}, "Shape"), archive)
	require.NoError(t, err)
	require.Equal(t, codec.ValueVariant, v.Kind)
	assert.Equal(t, "Circle", v.Variant.Constructor)
	assert.Equal(t, "3.5", v.Variant.Value.Numeric)

	encoded, err := codec.Encode(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tag":"Circle","value":"3.5"}`, string(encoded))
}

func TestDecodeGenMap(t *testing.T) {
	archive := fixtureArchive()
	genMapType := types.Type{Kind: types.KindGenMap, GenMap: []types.Type{{Kind: types.KindText}, {Kind: types.KindInt64}}}
	v, err := codec.Decode([]byte(`[["a","1"],["b","2"]]`), genMapType, archive)
	require.NoError(t, err)
	require.Len(t, v.GenMap, 2)
	assert.Equal(t, "a", v.GenMap[0].Key.Text)
	assert.Equal(t, "1", v.GenMap[0].Value.Int64)

	encoded, err := codec.Encode(v)
	require.NoError(t, err)
	assert.JSONEq(t, `[["a","1"],["b","2"]]`, string(encoded))
}

func TestDecodeInt64AcceptsNumberWithinRange(t *testing.T) {
	archive := fixtureArchive()
	v, err := codec.Decode([]byte(`42`), types.Type{Kind: types.KindInt64}, archive)
	require.NoError(t, err)
	assert.Equal(t, "42", v.Int64)
}

func TestDecodeTimestampRejectsNonRFC3339(t *testing.T) {
	archive := fixtureArchive()
	_, err := codec.Decode([]byte(`"not-a-timestamp"`), types.Type{Kind: types.KindTimestamp}, archive)
	assert.Error(t, err)
}

func TestDecodeUnknownTemplateID(t *testing.T) {
	archive := fixtureArchive()
	missing := types.MakeTyCon("pkg1", []string{"Main"}, "DoesNotExist")
	_, err := codec.Decode([]byte(`{}`), missing, archive)
	assert.Error(t, err)
}
