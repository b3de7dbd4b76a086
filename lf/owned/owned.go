// Package owned produces fully independent deep copies of a decoded type
// graph (lf/types). The original Rust implementation needed this
// conversion to detach a DamlArchive from the borrowed interned-string data
// of the DarFile that produced it; Go's decoder already materializes owned
// strings, so here the same deep-clone shape instead gives the bridge
// server a safe way to hand out an Archive snapshot that later reloads
// cannot mutate out from under an in-flight request.
package owned

import "github.com/daml-lf/bridge/lf/types"

// CloneType returns a deep copy of t.
func CloneType(t types.Type) types.Type {
	out := types.Type{Kind: t.Kind, Nat: t.Nat}
	switch t.Kind {
	case types.KindContractID:
		out.ContractID = cloneTypePtr(t.ContractID)
	case types.KindNumeric:
		out.Numeric = cloneTypePtr(t.Numeric)
	case types.KindList:
		out.List = cloneTypeSlice(t.List)
	case types.KindTextMap:
		out.TextMap = cloneTypeSlice(t.TextMap)
	case types.KindGenMap:
		out.GenMap = cloneTypeSlice(t.GenMap)
	case types.KindOptional:
		out.Optional = cloneTypeSlice(t.Optional)
	case types.KindTyCon, types.KindBoxedTyCon:
		out.TyCon = cloneTyCon(t.TyCon)
	case types.KindVar:
		out.Var = cloneVar(t.Var)
	case types.KindForall:
		out.Forall = cloneForall(t.Forall)
	case types.KindStruct:
		out.Struct = cloneStruct(t.Struct)
	case types.KindSyn:
		out.Syn = cloneSyn(t.Syn)
	}
	return out
}

func cloneTypePtr(t *types.Type) *types.Type {
	if t == nil {
		return nil
	}
	c := CloneType(*t)
	return &c
}

func cloneTypeSlice(ts []types.Type) []types.Type {
	if ts == nil {
		return nil
	}
	out := make([]types.Type, len(ts))
	for i, t := range ts {
		out[i] = CloneType(t)
	}
	return out
}

func cloneTyCon(tc *types.TyCon) *types.TyCon {
	if tc == nil {
		return nil
	}
	return &types.TyCon{
		Name:          cloneTyConName(tc.Name),
		TypeArguments: cloneTypeSlice(tc.TypeArguments),
	}
}

func cloneTyConName(n types.TyConName) types.TyConName {
	out := types.TyConName{Form: n.Form}
	switch n.Form {
	case types.TyConLocal:
		if n.Local != nil {
			c := *n.Local
			c.ModulePath = append([]string(nil), n.Local.ModulePath...)
			out.Local = &c
		}
	case types.TyConNonLocal:
		if n.NonLocal != nil {
			c := *n.NonLocal
			c.SourceModulePath = append([]string(nil), n.NonLocal.SourceModulePath...)
			c.TargetModulePath = append([]string(nil), n.NonLocal.TargetModulePath...)
			out.NonLocal = &c
		}
	case types.TyConAbsolute:
		if n.Absolute != nil {
			c := *n.Absolute
			c.ModulePath = append([]string(nil), n.Absolute.ModulePath...)
			out.Absolute = &c
		}
	}
	return out
}

func cloneVar(v *types.Var) *types.Var {
	if v == nil {
		return nil
	}
	return &types.Var{Name: v.Name, TypeArguments: cloneTypeSlice(v.TypeArguments)}
}

func cloneForall(f *types.Forall) *types.Forall {
	if f == nil {
		return nil
	}
	return &types.Forall{
		Vars: append([]types.TypeVarWithKind(nil), f.Vars...),
		Body: cloneTypePtr(f.Body),
	}
}

func cloneStruct(s *types.Struct) *types.Struct {
	if s == nil {
		return nil
	}
	return &types.Struct{Fields: cloneFields(s.Fields)}
}

func cloneSyn(s *types.Syn) *types.Syn {
	if s == nil {
		return nil
	}
	return &types.Syn{Name: cloneTyConName(s.Name), Args: cloneTypeSlice(s.Args)}
}

func cloneFields(fields []types.Field) []types.Field {
	if fields == nil {
		return nil
	}
	out := make([]types.Field, len(fields))
	for i, f := range fields {
		out[i] = types.Field{Name: f.Name, Type: CloneType(f.Type)}
	}
	return out
}

// CloneData returns a deep copy of d.
func CloneData(d *types.Data) *types.Data {
	if d == nil {
		return nil
	}
	out := &types.Data{
		Name:         d.Name,
		TypeParams:   append([]types.TypeVarWithKind(nil), d.TypeParams...),
		Kind:         d.Kind,
		Serializable: d.Serializable,
	}
	switch d.Kind {
	case types.DataRecord:
		if d.Record != nil {
			out.Record = &types.Record{Fields: cloneFields(d.Record.Fields)}
		}
	case types.DataVariant:
		if d.Variant != nil {
			out.Variant = &types.Variant{Constructors: cloneFields(d.Variant.Constructors)}
		}
	case types.DataEnum:
		if d.Enum != nil {
			out.Enum = &types.Enum{Constructors: append([]string(nil), d.Enum.Constructors...)}
		}
	case types.DataTemplate:
		if d.Record != nil {
			out.Record = &types.Record{Fields: cloneFields(d.Record.Fields)}
		}
		if d.Template != nil {
			out.Template = cloneTemplate(d.Template)
		}
	}
	return out
}

func cloneTemplate(t *types.Template) *types.Template {
	choices := make([]types.Choice, len(t.Choices))
	for i, c := range t.Choices {
		choices[i] = types.Choice{
			Name:         c.Name,
			ArgumentType: CloneType(c.ArgumentType),
			ReturnType:   CloneType(c.ReturnType),
			Consuming:    c.Consuming,
		}
	}
	return &types.Template{Choices: choices, KeyType: cloneTypePtr(t.KeyType)}
}

// CloneModule returns a deep copy of m.
func CloneModule(m *types.Module) *types.Module {
	if m == nil {
		return nil
	}
	data := make(map[string]*types.Data, len(m.Data))
	for k, v := range m.Data {
		data[k] = CloneData(v)
	}
	return &types.Module{
		Path:      append([]string(nil), m.Path...),
		Data:      data,
		DataOrder: append([]string(nil), m.DataOrder...),
	}
}

// ClonePackage returns a deep copy of p.
func ClonePackage(p *types.Package) *types.Package {
	if p == nil {
		return nil
	}
	modules := make(map[string]*types.Module, len(p.Modules))
	for k, v := range p.Modules {
		modules[k] = CloneModule(v)
	}
	return &types.Package{
		ID:              p.ID,
		Name:            p.Name,
		Version:         p.Version,
		LanguageVersion: p.LanguageVersion,
		Modules:         modules,
		ModuleOrder:     append([]string(nil), p.ModuleOrder...),
	}
}

// CloneArchive returns a deep copy of a, detaching it from any buffers the
// decoder may still hold a reference to.
func CloneArchive(a *types.Archive) *types.Archive {
	if a == nil {
		return nil
	}
	packages := make(map[string]*types.Package, len(a.Packages))
	for k, v := range a.Packages {
		packages[k] = ClonePackage(v)
	}
	return &types.Archive{
		Name:          a.Name,
		MainPackageID: a.MainPackageID,
		Packages:      packages,
		PackageOrder:  append([]string(nil), a.PackageOrder...),
	}
}
