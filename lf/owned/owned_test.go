package owned_test

import (
	"testing"

	"github.com/daml-lf/bridge/lf/owned"
	"github.com/daml-lf/bridge/lf/types"
	"github.com/stretchr/testify/assert"
)

func TestCloneTypeIsIndependentOfSource(t *testing.T) {
	original := types.Type{
		Kind: types.KindOptional,
		Optional: []types.Type{
			{Kind: types.KindTyCon, TyCon: &types.TyCon{
				Name: types.TyConName{
					Form:     types.TyConAbsolute,
					Absolute: &types.AbsoluteTyCon{DataName: "Asset", PackageID: "pkg1", ModulePath: []string{"Main"}},
				},
			}},
		},
	}

	clone := owned.CloneType(original)
	assert.Equal(t, original, clone)

	// Mutate the clone's nested slice; the original must be unaffected.
	clone.Optional[0].TyCon.Name.Absolute.ModulePath[0] = "Mutated"
	assert.Equal(t, "Main", original.Optional[0].TyCon.Name.Absolute.ModulePath[0])
}

func TestCloneArchiveDeepCopiesModules(t *testing.T) {
	archive := &types.Archive{
		MainPackageID: "pkg1",
		PackageOrder:  []string{"pkg1"},
		Packages: map[string]*types.Package{
			"pkg1": {
				ID:          "pkg1",
				ModuleOrder: []string{"Main"},
				Modules: map[string]*types.Module{
					"Main": {
						Path:      []string{"Main"},
						DataOrder: []string{"Asset"},
						Data: map[string]*types.Data{
							"Asset": {
								Name: "Asset",
								Kind: types.DataRecord,
								Record: &types.Record{
									Fields: []types.Field{{Name: "owner", Type: types.Type{Kind: types.KindParty}}},
								},
							},
						},
					},
				},
			},
		},
	}

	clone := owned.CloneArchive(archive)
	clone.Packages["pkg1"].Modules["Main"].Data["Asset"].Record.Fields[0].Name = "mutated"

	assert.Equal(t, "owner", archive.Packages["pkg1"].Modules["Main"].Data["Asset"].Record.Fields[0].Name)
	assert.NotSame(t, archive.Packages["pkg1"], clone.Packages["pkg1"])
}
