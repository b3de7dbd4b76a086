package decode_test

import (
	"testing"

	daml "github.com/digital-asset/dazl-client/v8/go/api/com/daml/daml_lf_2_1"
	"google.golang.org/protobuf/proto"

	"github.com/daml-lf/bridge/lf/decode"
	"github.com/daml-lf/bridge/lf/types"
	"github.com/daml-lf/bridge/lf/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildArchiveBytes marshals a daml.Package into a daml_lf_2 ArchivePayload
// and wraps it in an Archive envelope, mirroring what a real dalf file
// contains on disk.
func buildArchiveBytes(t *testing.T, hash, minor string, pkg *daml.Package) []byte {
	t.Helper()
	pkgBytes, err := proto.Marshal(pkg)
	require.NoError(t, err)

	payloadBytes, err := proto.Marshal(&daml.ArchivePayload{
		Minor: minor,
		Sum:   &daml.ArchivePayload_DamlLf_2{DamlLf_2: pkgBytes},
	})
	require.NoError(t, err)

	archiveBytes, err := proto.Marshal(&daml.Archive{
		Hash:    hash,
		Payload: payloadBytes,
	})
	require.NoError(t, err)
	return archiveBytes
}

func selfModuleRef(moduleNameIdx int32) *daml.ModuleRef {
	return &daml.ModuleRef{
		PackageRef:              &daml.PackageRef{Sum: &daml.PackageRef_Self_{Self: &daml.Unit{}}},
		ModuleNameInternedDname: moduleNameIdx,
	}
}

func partyType() *daml.Type {
	return &daml.Type{Sum: &daml.Type_Builtin_{Builtin: &daml.Type_Builtin{Builtin: daml.BuiltinType_PARTY}}}
}

func TestDecodeDalfRecordWithField(t *testing.T) {
	// InternedStrings: 0="Main" 1="Asset" 2="owner"
	// InternedDottedNames: 0=[0]("Main") 1=[1]("Asset")
	pkg := &daml.Package{
		InternedStrings: []string{"Main", "Asset", "owner"},
		InternedDottedNames: []*daml.InternedDottedName{
			{SegmentsInternedStr: []int32{0}},
			{SegmentsInternedStr: []int32{1}},
		},
		Modules: []*daml.Module{
			{
				NameInternedDname: 0,
				DataTypes: []*daml.DefDataType{
					{
						NameInternedDname: 1,
						Serializable:      true,
						DataCons: &daml.DefDataType_Record{Record: &daml.DefDataType_Fields{
							Fields: []*daml.FieldWithType{
								{FieldInternedStr: 2, Type: partyType()},
							},
						}},
					},
				},
			},
		},
	}
	archiveBytes := buildArchiveBytes(t, "pkg1", "1", pkg)

	p, err := decode.DecodeDalf(archiveBytes)
	require.NoError(t, err)
	assert.Equal(t, "pkg1", p.ID)
	assert.Equal(t, version.V2(version.MinorV1), p.LanguageVersion)

	mod, ok := p.Modules["Main"]
	require.True(t, ok)
	d, ok := mod.Data["Asset"]
	require.True(t, ok)
	assert.Equal(t, types.DataRecord, d.Kind)
	require.Len(t, d.Record.Fields, 1)
	assert.Equal(t, "owner", d.Record.Fields[0].Name)
	assert.Equal(t, types.KindParty, d.Record.Fields[0].Type.Kind)
	assert.True(t, d.Serializable)
}

func TestDecodeDalfTemplateWithChoiceAndSelfReference(t *testing.T) {
	// InternedStrings: 0="Main" 1="Asset" 2="owner" 3="Archive"
	// InternedDottedNames: 0=[0]("Main") 1=[1]("Asset")
	assetTyCon := &daml.Type{Sum: &daml.Type_Con_{Con: &daml.Type_Con{
		Tycon: &daml.TypeConName{
			Module:            selfModuleRef(0),
			NameInternedDname: 1,
		},
	}}}
	contractIDOfAsset := &daml.Type{Sum: &daml.Type_Builtin_{Builtin: &daml.Type_Builtin{
		Builtin: daml.BuiltinType_CONTRACT_ID,
		Args:    []*daml.Type{assetTyCon},
	}}}
	unitType := &daml.Type{Sum: &daml.Type_Builtin_{Builtin: &daml.Type_Builtin{Builtin: daml.BuiltinType_UNIT}}}

	pkg := &daml.Package{
		InternedStrings: []string{"Main", "Asset", "owner", "Archive"},
		InternedDottedNames: []*daml.InternedDottedName{
			{SegmentsInternedStr: []int32{0}},
			{SegmentsInternedStr: []int32{1}},
		},
		Modules: []*daml.Module{
			{
				NameInternedDname: 0,
				DataTypes: []*daml.DefDataType{
					{
						NameInternedDname: 1,
						Serializable:      true,
						DataCons: &daml.DefDataType_Record{Record: &daml.DefDataType_Fields{
							Fields: []*daml.FieldWithType{
								{FieldInternedStr: 2, Type: partyType()},
							},
						}},
					},
				},
				Templates: []*daml.DefTemplate{
					{
						NameInternedDname: 1,
						Choices: []*daml.TemplateChoice{
							{
								NameInternedStr: 3,
								Consuming:       true,
								ArgBinder:       &daml.VarWithType{Type: unitType},
								RetType:         contractIDOfAsset,
							},
						},
					},
				},
			},
		},
	}
	archiveBytes := buildArchiveBytes(t, "pkg1", "1", pkg)

	p, err := decode.DecodeDalf(archiveBytes)
	require.NoError(t, err)

	mod := p.Modules["Main"]
	d := mod.Data["Asset"]
	require.Equal(t, types.DataTemplate, d.Kind)
	require.NotNil(t, d.Record)
	require.NotNil(t, d.Template)
	require.Len(t, d.Template.Choices, 1)

	archiveChoice := d.Template.Choices[0]
	assert.Equal(t, "Archive", archiveChoice.Name)
	assert.True(t, archiveChoice.Consuming)
	assert.Equal(t, types.KindUnit, archiveChoice.ArgumentType.Kind)
	require.Equal(t, types.KindContractID, archiveChoice.ReturnType.Kind)
	require.NotNil(t, archiveChoice.ReturnType.ContractID)
	assert.Equal(t, types.KindTyCon, archiveChoice.ReturnType.ContractID.Kind)
	assert.Equal(t, "Asset", archiveChoice.ReturnType.ContractID.TyCon.Name.DataName())
	assert.Equal(t, types.TyConLocal, archiveChoice.ReturnType.ContractID.TyCon.Name.Form)
}

func TestDecodeDalfRejectsMalformedPayload(t *testing.T) {
	_, err := decode.DecodeDalf([]byte{0xff, 0xff, 0xff})
	assert.Error(t, err)
}

func TestDecodeDalfRejectsUnknownMinorVersion(t *testing.T) {
	pkg := &daml.Package{
		InternedStrings:     []string{"Main"},
		InternedDottedNames: []*daml.InternedDottedName{{SegmentsInternedStr: []int32{0}}},
		Modules:             []*daml.Module{{NameInternedDname: 0}},
	}
	archiveBytes := buildArchiveBytes(t, "pkg1", "not-a-version", pkg)
	_, err := decode.DecodeDalf(archiveBytes)
	assert.Error(t, err)
}

func TestDecodeDalfRejectsMissingHash(t *testing.T) {
	pkg := &daml.Package{
		InternedStrings:     []string{"Main"},
		InternedDottedNames: []*daml.InternedDottedName{{SegmentsInternedStr: []int32{0}}},
		Modules:             []*daml.Module{{NameInternedDname: 0}},
	}
	archiveBytes := buildArchiveBytes(t, "", "1", pkg)
	_, err := decode.DecodeDalf(archiveBytes)
	assert.Error(t, err)
}
