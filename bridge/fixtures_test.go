package bridge

import "github.com/daml-lf/bridge/lf/types"

// pingData is a minimal DataTemplate with a contract key and Pong and Archive choices,
// reused across templateid_test.go and translate_test.go.
func pingData() *types.Data {
	return &types.Data{
		Name: "Ping",
		Kind: types.DataTemplate,
		Record: &types.Record{Fields: []types.Field{
			{Name: "sender", Type: types.Type{Kind: types.KindParty}},
			{Name: "receiver", Type: types.Type{Kind: types.KindParty}},
			{Name: "count", Type: types.Type{Kind: types.KindInt64}},
		}},
		Template: &types.Template{
			Choices: []types.Choice{
				{Name: "Pong", ArgumentType: types.Type{Kind: types.KindUnit}, ReturnType: types.Type{Kind: types.KindUnit}, Consuming: true},
				{Name: "Archive", ArgumentType: types.Type{Kind: types.KindUnit}, ReturnType: types.Type{Kind: types.KindUnit}, Consuming: true},
			},
			KeyType: &types.Type{Kind: types.KindParty},
		},
	}
}

func pingArchive() *types.Archive {
	mod := &types.Module{
		Path:      []string{"DA", "PingPong"},
		Data:      map[string]*types.Data{"Ping": pingData()},
		DataOrder: []string{"Ping"},
	}
	pkg := &types.Package{ID: "pkg1", Modules: map[string]*types.Module{"DA.PingPong": mod}}
	return &types.Archive{
		Name:          "pingpong",
		MainPackageID: "pkg1",
		Packages:      map[string]*types.Package{"pkg1": pkg},
		PackageOrder:  []string{"pkg1"},
	}
}

// duplicateTemplateArchive declares DA.PingPong.Ping in two distinct
// packages, for MultipleMatchingTemplates / unqualified-lookup tests.
func duplicateTemplateArchive() *types.Archive {
	mod1 := &types.Module{Path: []string{"DA", "PingPong"}, Data: map[string]*types.Data{"Ping": pingData()}, DataOrder: []string{"Ping"}}
	mod2 := &types.Module{Path: []string{"DA", "PingPong"}, Data: map[string]*types.Data{"Ping": pingData()}, DataOrder: []string{"Ping"}}
	pkg1 := &types.Package{ID: "pkg1", Modules: map[string]*types.Module{"DA.PingPong": mod1}}
	pkg2 := &types.Package{ID: "pkg2", Modules: map[string]*types.Module{"DA.PingPong": mod2}}
	return &types.Archive{
		Name:          "dup",
		MainPackageID: "pkg1",
		Packages:      map[string]*types.Package{"pkg1": pkg1, "pkg2": pkg2},
		PackageOrder:  []string{"pkg1", "pkg2"},
	}
}
