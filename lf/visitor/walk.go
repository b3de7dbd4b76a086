package visitor

import (
	"sort"

	"github.com/daml-lf/bridge/lf/types"
)

// Walk traverses archive in declaration order: packages, then modules,
// then data definitions, in the order the decoder recorded them. This is
// the default ordering and matches the order entities appeared in the dar.
func Walk(archive *types.Archive, v Visitor) {
	walkArchive(archive, v, archive.PackageOrder)
}

// WalkSorted traverses archive with packages, modules and data definitions
// each visited in lexicographic key order, for callers that need
// deterministic output independent of decode order (e.g. snapshot tests).
func WalkSorted(archive *types.Archive, v Visitor) {
	sv := sortedVisitor{Visitor: v}
	walkArchive(archive, sv, sortedKeys(archive.Packages))
}

func walkArchive(archive *types.Archive, v Visitor, packageOrder []string) {
	v.PreVisitArchive(archive)
	for _, id := range packageOrder {
		pkg, ok := archive.Packages[id]
		if !ok {
			continue
		}
		moduleOrder := pkg.ModuleOrder
		if isSortedWalk(v) {
			moduleOrder = sortedKeys(pkg.Modules)
		}
		walkPackage(pkg, v, moduleOrder)
	}
	v.PostVisitArchive(archive)
}

// sortedVisitor lets WalkSorted propagate its ordering preference down
// through walkPackage/walkModule without threading an extra parameter
// through every call; it is checked via a type assertion on a sentinel
// wrapper installed by WalkSorted.
type sortedVisitor struct {
	Visitor
}

func isSortedWalk(v Visitor) bool {
	_, ok := v.(sortedVisitor)
	return ok
}

func walkPackage(pkg *types.Package, v Visitor, moduleOrder []string) {
	v.PreVisitPackage(pkg)
	for _, name := range moduleOrder {
		mod, ok := pkg.Modules[name]
		if !ok {
			continue
		}
		dataOrder := mod.DataOrder
		if isSortedWalk(v) {
			dataOrder = sortedKeys(mod.Data)
		}
		walkModule(mod, v, dataOrder)
	}
	v.PostVisitPackage(pkg)
}

func walkModule(mod *types.Module, v Visitor, dataOrder []string) {
	v.PreVisitModule(mod)
	for _, name := range dataOrder {
		d, ok := mod.Data[name]
		if !ok {
			continue
		}
		walkData(d, v)
	}
	v.PostVisitModule(mod)
}

func walkData(d *types.Data, v Visitor) {
	v.PreVisitData(d)
	switch d.Kind {
	case types.DataRecord:
		walkRecord(d.Record, v)
	case types.DataVariant:
		walkVariant(d.Variant, v)
	case types.DataEnum:
		walkEnum(d.Enum, v)
	case types.DataTemplate:
		walkTemplate(d.Template, v)
	}
	v.PostVisitData(d)
}

func walkRecord(r *types.Record, v Visitor) {
	v.PreVisitRecord(r)
	for i := range r.Fields {
		walkField(&r.Fields[i], v)
	}
	v.PostVisitRecord(r)
}

func walkVariant(variant *types.Variant, v Visitor) {
	v.PreVisitVariant(variant)
	for i := range variant.Constructors {
		walkField(&variant.Constructors[i], v)
	}
	v.PostVisitVariant(variant)
}

func walkEnum(e *types.Enum, v Visitor) {
	v.PreVisitEnum(e)
	v.PostVisitEnum(e)
}

func walkTemplate(tpl *types.Template, v Visitor) {
	v.PreVisitTemplate(tpl)
	for i := range tpl.Choices {
		walkChoice(&tpl.Choices[i], v)
	}
	if tpl.KeyType != nil {
		walkType(tpl.KeyType, v)
	}
	v.PostVisitTemplate(tpl)
}

func walkChoice(c *types.Choice, v Visitor) {
	v.PreVisitChoice(c)
	walkType(&c.ArgumentType, v)
	walkType(&c.ReturnType, v)
	v.PostVisitChoice(c)
}

func walkField(f *types.Field, v Visitor) {
	v.PreVisitField(f)
	walkType(&f.Type, v)
	v.PostVisitField(f)
}

func walkType(t *types.Type, v Visitor) {
	v.PreVisitType(t)
	switch t.Kind {
	case types.KindContractID:
		if t.ContractID != nil {
			walkType(t.ContractID, v)
		}
	case types.KindNumeric:
		if t.Numeric != nil {
			walkType(t.Numeric, v)
		}
	case types.KindList:
		walkTypeSlice(t.List, v)
	case types.KindTextMap:
		walkTypeSlice(t.TextMap, v)
	case types.KindGenMap:
		walkTypeSlice(t.GenMap, v)
	case types.KindOptional:
		walkTypeSlice(t.Optional, v)
	case types.KindTyCon, types.KindBoxedTyCon:
		if t.TyCon != nil {
			walkTypeSlice(t.TyCon.TypeArguments, v)
		}
	case types.KindVar:
		if t.Var != nil {
			walkTypeSlice(t.Var.TypeArguments, v)
		}
	case types.KindForall:
		if t.Forall != nil && t.Forall.Body != nil {
			walkType(t.Forall.Body, v)
		}
	case types.KindStruct:
		if t.Struct != nil {
			for i := range t.Struct.Fields {
				walkField(&t.Struct.Fields[i], v)
			}
		}
	case types.KindSyn:
		if t.Syn != nil {
			walkTypeSlice(t.Syn.Args, v)
		}
	}
	v.PostVisitType(t)
}

func walkTypeSlice(typeList []types.Type, v Visitor) {
	for i := range typeList {
		walkType(&typeList[i], v)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
