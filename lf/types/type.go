// Package types defines the decoded Daml-LF type graph: the Type sum type,
// module/package/archive containers, and the record/variant/enum/template
// data definitions they hold. Values in this package are produced by
// lf/decode and consumed by lf/visitor, lf/owned, codec and bridge.
package types

import "fmt"

// TypeKind discriminates the variants of Type. Daml-LF's type language is a
// large sum type; Go has no native sum types, so Type is a single struct
// tagged by Kind with the fields relevant to that Kind populated.
type TypeKind int

const (
	KindContractID TypeKind = iota
	KindInt64
	KindNumeric
	KindText
	KindTimestamp
	KindParty
	KindBool
	KindUnit
	KindDate
	KindList
	KindTextMap
	KindGenMap
	KindOptional
	KindTyCon
	// KindBoxedTyCon is identical in shape to KindTyCon but marks a reference
	// the decoder found to participate in a cycle through the package's data
	// definitions. Consumers that lay a Type out as a fixed-size value (e.g.
	// a generated struct field) must indirect through a pointer for this
	// Kind to avoid an infinitely-sized type.
	KindBoxedTyCon
	KindVar
	KindNat
	KindArrow
	KindAny
	KindTypeRep
	KindUpdate
	KindScenario
	KindForall
	KindStruct
	KindSyn
)

// Type is a decoded Daml-LF type. Exactly the fields relevant to Kind are
// populated; all others are left zero.
type Type struct {
	Kind TypeKind

	// ContractID holds the optional template type argument of a
	// `ContractId` type; nil means an untyped contract id.
	ContractID *Type

	// Numeric holds the scale type argument of a `Numeric` type.
	Numeric *Type

	// List, TextMap, GenMap and Optional each hold their single type
	// argument list (GenMap holds [key, value] in that order).
	List     []Type
	TextMap  []Type
	GenMap   []Type
	Optional []Type

	// TyCon holds the resolved reference and type arguments of a TyCon or
	// BoxedTyCon (selected via Kind).
	TyCon *TyCon

	// Var holds a type variable reference with its own type arguments.
	Var *Var

	// Nat holds a type-level natural number literal, used as a Numeric
	// scale argument.
	Nat uint8

	// Forall holds a universally quantified type.
	Forall *Forall

	// Struct holds an anonymous record type (a Daml-LF Tuple/Struct, not a
	// named Record data definition).
	Struct *Struct

	// Syn holds an unexpanded type synonym application.
	Syn *Syn
}

// Name returns the Daml-LF display name for the type's Kind, mirroring the
// names used in codec error messages (e.g. "DamlInt64", "DamlOptional").
func (t Type) Name() string {
	switch t.Kind {
	case KindContractID:
		return "DamlContractId"
	case KindInt64:
		return "DamlInt64"
	case KindNumeric:
		return "DamlFixedNumeric"
	case KindText:
		return "DamlText"
	case KindTimestamp:
		return "DamlTimestamp"
	case KindParty:
		return "DamlParty"
	case KindBool:
		return "DamlBool"
	case KindUnit:
		return "DamlUnit"
	case KindDate:
		return "DamlDate"
	case KindList:
		return "DamlList"
	case KindTextMap:
		return "DamlTextMap"
	case KindGenMap:
		return "DamlGenMap"
	case KindOptional:
		return "DamlOptional"
	case KindUpdate:
		return "None (Update)"
	case KindScenario:
		return "None (Scenario)"
	case KindTyCon:
		return "None (TyCon)"
	case KindBoxedTyCon:
		return "None (BoxedTyCon)"
	case KindVar:
		return "None (Var)"
	case KindArrow:
		return "None (Arrow)"
	case KindAny:
		return "None (Any)"
	case KindTypeRep:
		return "None (TypeRep)"
	case KindNat:
		return "Nat"
	case KindForall:
		return "Forall"
	case KindStruct:
		return "Struct"
	case KindSyn:
		return "Syn"
	default:
		return fmt.Sprintf("Unknown(%d)", t.Kind)
	}
}

// ContainsTypeVar reports whether t references typeVar anywhere in its
// structure (an occurs-check over type variables). The decoder's cycle
// detection does not use it; that is keyed on data-definition names.
func (t Type) ContainsTypeVar(typeVar string) bool {
	switch t.Kind {
	case KindVar:
		return t.Var != nil && t.Var.Name == typeVar
	case KindNumeric:
		return t.Numeric != nil && t.Numeric.ContainsTypeVar(typeVar)
	case KindList, KindOptional, KindTextMap:
		return anyContainsTypeVar(t.argsForKind(), typeVar)
	case KindGenMap:
		return anyContainsTypeVar(t.GenMap, typeVar)
	case KindContractID:
		return t.ContractID != nil && t.ContractID.ContainsTypeVar(typeVar)
	case KindTyCon, KindBoxedTyCon:
		return t.TyCon != nil && anyContainsTypeVar(t.TyCon.TypeArguments, typeVar)
	case KindForall:
		return t.Forall != nil && t.Forall.Body.ContainsTypeVar(typeVar)
	case KindStruct:
		if t.Struct == nil {
			return false
		}
		for _, f := range t.Struct.Fields {
			if f.Type.ContainsTypeVar(typeVar) {
				return true
			}
		}
		return false
	case KindSyn:
		return t.Syn != nil && anyContainsTypeVar(t.Syn.Args, typeVar)
	default:
		return false
	}
}

func (t Type) argsForKind() []Type {
	switch t.Kind {
	case KindList:
		return t.List
	case KindOptional:
		return t.Optional
	case KindTextMap:
		return t.TextMap
	default:
		return nil
	}
}

func anyContainsTypeVar(types []Type, typeVar string) bool {
	for _, arg := range types {
		if arg.ContainsTypeVar(typeVar) {
			return true
		}
	}
	return false
}

// MakeTyCon builds a Type of Kind TyCon referencing the given absolute
// template/data-type coordinates with no type arguments.
func MakeTyCon(packageID string, module []string, entity string) Type {
	return MakeTyConWithArgs(packageID, module, entity, nil)
}

// MakeTyConWithArgs builds a Type of Kind TyCon referencing the given
// absolute template/data-type coordinates with the given type arguments.
func MakeTyConWithArgs(packageID string, module []string, entity string, typeArguments []Type) Type {
	return Type{
		Kind: KindTyCon,
		TyCon: &TyCon{
			Name: TyConName{
				Form: TyConAbsolute,
				Absolute: &AbsoluteTyCon{
					DataName:   entity,
					PackageID:  packageID,
					ModulePath: module,
				},
			},
			TypeArguments: typeArguments,
		},
	}
}

// TyCon is a reference to a named data definition (Record/Variant/Enum) or
// template, together with the type arguments applied to it.
type TyCon struct {
	Name          TyConName
	TypeArguments []Type
}

// TyConNameForm discriminates the three ways a TyConName can refer to its
// target: within the same module, in a different module of the same
// package, or in an entirely different package.
type TyConNameForm int

const (
	TyConLocal TyConNameForm = iota
	TyConNonLocal
	TyConAbsolute
)

// TyConName is a tagged reference to a data definition or template. Exactly
// one of Local/NonLocal/Absolute is populated, selected by Form.
type TyConName struct {
	Form     TyConNameForm
	Local    *LocalTyCon
	NonLocal *NonLocalTyCon
	Absolute *AbsoluteTyCon
}

// PackageID returns the id of the package the referenced entity lives in.
func (n TyConName) PackageID() string {
	switch n.Form {
	case TyConLocal:
		return n.Local.PackageID
	case TyConNonLocal:
		return n.NonLocal.TargetPackageID
	default:
		return n.Absolute.PackageID
	}
}

// ModulePath returns the dotted module path segments of the referenced entity.
func (n TyConName) ModulePath() []string {
	switch n.Form {
	case TyConLocal:
		return n.Local.ModulePath
	case TyConNonLocal:
		return n.NonLocal.TargetModulePath
	default:
		return n.Absolute.ModulePath
	}
}

// DataName returns the unqualified name of the referenced entity.
func (n TyConName) DataName() string {
	switch n.Form {
	case TyConLocal:
		return n.Local.DataName
	case TyConNonLocal:
		return n.NonLocal.DataName
	default:
		return n.Absolute.DataName
	}
}

// String renders the reference as "package:module.path:EntityName".
func (n TyConName) String() string {
	return fmt.Sprintf("%s:%s:%s", n.PackageID(), joinDots(n.ModulePath()), n.DataName())
}

func joinDots(segments []string) string {
	out := ""
	for i, s := range segments {
		if i > 0 {
			out += "."
		}
		out += s
	}
	return out
}

// LocalTyCon references a data definition within the same module being decoded.
type LocalTyCon struct {
	DataName   string
	PackageID  string
	ModulePath []string
}

// NonLocalTyCon references a data definition in a different module of the
// same archive, recording both the referencing and target module for
// diagnostics.
type NonLocalTyCon struct {
	DataName         string
	SourcePackageID  string
	SourceModulePath []string
	TargetPackageID  string
	TargetModulePath []string
}

// AbsoluteTyCon references a data definition by fully-qualified package id
// and module path, independent of the decoding context.
type AbsoluteTyCon struct {
	DataName   string
	PackageID  string
	ModulePath []string
}

// Var is a reference to a type variable bound by an enclosing Forall or by
// the type parameters of the data definition being decoded.
type Var struct {
	Name          string
	TypeArguments []Type
}

// Forall is a universally quantified type, e.g. the type of a generic
// function body within a module's value definitions.
type Forall struct {
	Vars []TypeVarWithKind
	Body *Type
}

// Struct is an anonymous record type (a Daml-LF tuple), distinct from a
// named Record data definition.
type Struct struct {
	Fields []Field
}

// Syn is an unexpanded application of a type synonym to arguments.
type Syn struct {
	Name TyConName
	Args []Type
}

// TypeKindTag discriminates the kind of a type parameter: a proper type, a
// type-level natural number, or a type-level function.
type TypeKindTag int

const (
	StarKind TypeKindTag = iota
	NatKind
	ArrowKind
)

// TypeVarWithKind names a type parameter bound by a data definition,
// template or Forall, together with its kind.
type TypeVarWithKind struct {
	Var  string
	Kind TypeKindTag
}
