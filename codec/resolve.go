package codec

import (
	"strings"

	"github.com/daml-lf/bridge/lf/types"
	"github.com/daml-lf/bridge/lferrors"
)

// ResolveTyCon looks up the Data definition a TyCon/BoxedTyCon type refers
// to within archive, for field/constructor shape lookup during decode,
// encode and schema generation.
func ResolveTyCon(archive *types.Archive, name types.TyConName) (*types.Data, error) {
	pkg, ok := archive.Packages[name.PackageID()]
	if !ok {
		return nil, lferrors.Errorf(lferrors.KindCodec, "unknown package reference %q", name.PackageID())
	}
	mod, ok := pkg.Modules[strings.Join(name.ModulePath(), ".")]
	if !ok {
		return nil, lferrors.Errorf(lferrors.KindCodec, "unknown module %q in package %q", strings.Join(name.ModulePath(), "."), name.PackageID())
	}
	d, ok := mod.Data[name.DataName()]
	if !ok {
		return nil, lferrors.Errorf(lferrors.KindCodec, "unknown data definition %q in module %q", name.DataName(), mod.Name())
	}
	return d, nil
}

// Substitution maps a data definition's declared type parameter names to
// the concrete type arguments applied at a particular TyCon reference.
func Substitution(params []types.TypeVarWithKind, args []types.Type) map[string]types.Type {
	subst := make(map[string]types.Type, len(params))
	for i, p := range params {
		if i < len(args) {
			subst[p.Var] = args[i]
		}
	}
	return subst
}

// SubstituteType replaces every type-variable reference in t that appears
// in subst with its bound concrete type, leaving unbound variables (e.g.
// those bound by an enclosing Forall rather than the data definition being
// instantiated) untouched.
func SubstituteType(t types.Type, subst map[string]types.Type) types.Type {
	if len(subst) == 0 {
		return t
	}
	switch t.Kind {
	case types.KindVar:
		if t.Var != nil {
			if bound, ok := subst[t.Var.Name]; ok && len(t.Var.TypeArguments) == 0 {
				return bound
			}
		}
		return t
	case types.KindContractID:
		if t.ContractID == nil {
			return t
		}
		sub := SubstituteType(*t.ContractID, subst)
		return types.Type{Kind: t.Kind, ContractID: &sub}
	case types.KindNumeric:
		if t.Numeric == nil {
			return t
		}
		sub := SubstituteType(*t.Numeric, subst)
		return types.Type{Kind: t.Kind, Numeric: &sub}
	case types.KindList:
		return types.Type{Kind: t.Kind, List: substituteSlice(t.List, subst)}
	case types.KindTextMap:
		return types.Type{Kind: t.Kind, TextMap: substituteSlice(t.TextMap, subst)}
	case types.KindGenMap:
		return types.Type{Kind: t.Kind, GenMap: substituteSlice(t.GenMap, subst)}
	case types.KindOptional:
		return types.Type{Kind: t.Kind, Optional: substituteSlice(t.Optional, subst)}
	case types.KindTyCon, types.KindBoxedTyCon:
		if t.TyCon == nil {
			return t
		}
		return types.Type{Kind: t.Kind, TyCon: &types.TyCon{
			Name:          t.TyCon.Name,
			TypeArguments: substituteSlice(t.TyCon.TypeArguments, subst),
		}}
	default:
		return t
	}
}

func substituteSlice(types_ []types.Type, subst map[string]types.Type) []types.Type {
	if types_ == nil {
		return nil
	}
	out := make([]types.Type, len(types_))
	for i, t := range types_ {
		out[i] = SubstituteType(t, subst)
	}
	return out
}
