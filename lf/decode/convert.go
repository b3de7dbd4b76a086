package decode

import (
	daml "github.com/digital-asset/dazl-client/v8/go/api/com/daml/daml_lf_2_1"

	"github.com/daml-lf/bridge/lf/interning"
	"github.com/daml-lf/bridge/lf/types"
	"github.com/daml-lf/bridge/lf/version"
	"github.com/daml-lf/bridge/lferrors"
)

// converter carries the per-package state needed to turn a decoded
// *daml.Package into lf/types values: the interning resolver, the package's
// own id (for resolving "self" module references), the module currently
// being walked (for distinguishing Local from NonLocal references), the
// package's interned-type table (daml_lf_2_1's Type.interned_type indirects
// through it), and the set of data definitions presently being converted
// (for the cycle-detection pass that decides KindTyCon vs KindBoxedTyCon).
//
// Every name in a daml_lf_2_1 message is carried as an interned-string or
// interned-dotted-name index; there is no literal-string wire form left to
// decode. interning.String/DottedName's literal branch is therefore never
// exercised by this converter, only its interned one.
type converter struct {
	resolver          interning.Resolver
	selfPackageID     string
	currentModulePath []string
	inProgress        map[string]bool
	internedTypes     []*daml.Type
}

func qualifiedName(packageID string, modulePath []string, dataName string) string {
	return packageID + ":" + interning.Join(modulePath) + ":" + dataName
}

func convertPackage(selfPackageID string, pkg *daml.Package, lang version.Version) (*types.Package, error) {
	dottedNames := make([][]int32, len(pkg.GetInternedDottedNames()))
	for i, n := range pkg.GetInternedDottedNames() {
		dottedNames[i] = n.GetSegmentsInternedStr()
	}
	table := &interning.Table{
		Version:             lang,
		InternedStrings:     pkg.GetInternedStrings(),
		InternedDottedNames: dottedNames,
	}
	c := &converter{
		resolver:      table,
		selfPackageID: selfPackageID,
		inProgress:    make(map[string]bool),
		internedTypes: pkg.GetInternedTypes(),
	}

	out := &types.Package{
		ID:              selfPackageID,
		LanguageVersion: lang,
		Modules:         make(map[string]*types.Module),
	}

	if meta := pkg.GetMetadata(); meta != nil {
		name, err := interning.InternedString(meta.GetNameInternedStr()).Resolve(table)
		if err != nil {
			return nil, err
		}
		ver, err := interning.InternedString(meta.GetVersionInternedStr()).Resolve(table)
		if err != nil {
			return nil, err
		}
		out.Name, out.Version = name, ver
	}

	for _, m := range pkg.GetModules() {
		mod, err := c.convertModule(m)
		if err != nil {
			return nil, err
		}
		key := mod.Name()
		out.Modules[key] = mod
		out.ModuleOrder = append(out.ModuleOrder, key)
	}
	return out, nil
}

func (c *converter) convertModule(m *daml.Module) (*types.Module, error) {
	path, err := interning.InternedDottedName(m.GetNameInternedDname()).Resolve(c.resolver)
	if err != nil {
		return nil, err
	}
	c.currentModulePath = path

	mod := &types.Module{Path: path, Data: make(map[string]*types.Data)}

	for _, dd := range m.GetDataTypes() {
		d, err := c.convertDataType(dd)
		if err != nil {
			return nil, err
		}
		mod.Data[d.Name] = d
		mod.DataOrder = append(mod.DataOrder, d.Name)
	}

	for _, tmpl := range m.GetTemplates() {
		if err := c.attachTemplate(mod, tmpl); err != nil {
			return nil, err
		}
	}

	return mod, nil
}

func (c *converter) convertDataType(dd *daml.DefDataType) (*types.Data, error) {
	nameSegments, err := interning.InternedDottedName(dd.GetNameInternedDname()).Resolve(c.resolver)
	if err != nil {
		return nil, err
	}
	name := interning.Join(nameSegments)

	params, err := c.convertTypeVarsWithKind(dd.GetParams())
	if err != nil {
		return nil, err
	}

	d := &types.Data{
		Name:         name,
		TypeParams:   params,
		Serializable: dd.GetSerializable(),
	}

	qualified := qualifiedName(c.selfPackageID, c.currentModulePath, name)
	c.inProgress[qualified] = true
	defer delete(c.inProgress, qualified)

	switch cons := dd.GetDataCons().(type) {
	case *daml.DefDataType_Record:
		fields, err := c.convertFieldsWithType(cons.Record.GetFields())
		if err != nil {
			return nil, err
		}
		d.Kind = types.DataRecord
		d.Record = &types.Record{Fields: fields}
	case *daml.DefDataType_Variant:
		fields, err := c.convertFieldsWithType(cons.Variant.GetFields())
		if err != nil {
			return nil, err
		}
		d.Kind = types.DataVariant
		d.Variant = &types.Variant{Constructors: fields}
	case *daml.DefDataType_Enum:
		constructors, err := c.resolver.ResolveStrings(cons.Enum.GetConstructorsInternedStr())
		if err != nil {
			return nil, err
		}
		d.Kind = types.DataEnum
		d.Enum = &types.Enum{Constructors: constructors}
	default:
		return nil, lferrors.Errorf(lferrors.KindDecode, "data definition %q has no record, variant or enum payload", name)
	}

	return d, nil
}

func (c *converter) convertFieldsWithType(raws []*daml.FieldWithType) ([]types.Field, error) {
	fields := make([]types.Field, len(raws))
	for i, f := range raws {
		name, err := interning.InternedString(f.GetFieldInternedStr()).Resolve(c.resolver)
		if err != nil {
			return nil, err
		}
		t, err := c.convertType(f.GetType())
		if err != nil {
			return nil, err
		}
		fields[i] = types.Field{Name: name, Type: t}
	}
	return fields, nil
}

func kindTagOf(k *daml.Kind) types.TypeKindTag {
	switch k.GetSum().(type) {
	case *daml.Kind_Nat_:
		return types.NatKind
	case *daml.Kind_Arrow_:
		return types.ArrowKind
	default:
		return types.StarKind
	}
}

func (c *converter) convertTypeVarsWithKind(raws []*daml.TypeVarWithKind) ([]types.TypeVarWithKind, error) {
	out := make([]types.TypeVarWithKind, len(raws))
	for i, rv := range raws {
		name, err := interning.InternedString(rv.GetVarInternedStr()).Resolve(c.resolver)
		if err != nil {
			return nil, err
		}
		out[i] = types.TypeVarWithKind{Var: name, Kind: kindTagOf(rv.GetKind())}
	}
	return out, nil
}

func (c *converter) attachTemplate(mod *types.Module, t *daml.DefTemplate) error {
	nameSegments, err := interning.InternedDottedName(t.GetNameInternedDname()).Resolve(c.resolver)
	if err != nil {
		return err
	}
	name := interning.Join(nameSegments)

	d, ok := mod.Data[name]
	if !ok {
		return lferrors.Errorf(lferrors.KindDecode, "template %q has no matching record data definition", name)
	}

	choices := make([]types.Choice, len(t.GetChoices()))
	for i, rawChoice := range t.GetChoices() {
		choice, err := c.convertChoice(rawChoice)
		if err != nil {
			return err
		}
		choices[i] = choice
	}

	tmpl := &types.Template{Choices: choices}
	if key := t.GetKey(); key != nil && key.GetType() != nil {
		keyType, err := c.convertType(key.GetType())
		if err != nil {
			return err
		}
		tmpl.KeyType = &keyType
	}

	d.Kind = types.DataTemplate
	d.Template = tmpl
	return nil
}

func (c *converter) convertChoice(ch *daml.TemplateChoice) (types.Choice, error) {
	name, err := interning.InternedString(ch.GetNameInternedStr()).Resolve(c.resolver)
	if err != nil {
		return types.Choice{}, err
	}
	binder := ch.GetArgBinder()
	if binder == nil || binder.GetType() == nil {
		return types.Choice{}, lferrors.New(lferrors.KindDecode, "choice missing argument type")
	}
	argType, err := c.convertType(binder.GetType())
	if err != nil {
		return types.Choice{}, err
	}
	if ch.GetRetType() == nil {
		return types.Choice{}, lferrors.New(lferrors.KindDecode, "choice missing return type")
	}
	retType, err := c.convertType(ch.GetRetType())
	if err != nil {
		return types.Choice{}, err
	}
	return types.Choice{
		Name:         name,
		ArgumentType: argType,
		ReturnType:   retType,
		Consuming:    ch.GetConsuming(),
	}, nil
}

// convertType dispatches on which Type.Sum variant is populated. daml_lf_2_1
// curries type application through Type_Tapp/Type_TApp rather than carrying
// a flat Args list on Type_Con/Type_Var/Type_Syn the way builtins still do,
// so those three forms are only ever reached through convertTapp, which
// unwinds the Tapp chain first.
func (c *converter) convertType(t *daml.Type) (types.Type, error) {
	if t == nil {
		return types.Type{}, lferrors.New(lferrors.KindDecode, "type message has no recognised variant set")
	}
	switch v := t.GetSum().(type) {
	case *daml.Type_Var_:
		return c.convertVar(v.Var, nil)
	case *daml.Type_Con_:
		return c.convertCon(v.Con, nil)
	case *daml.Type_Syn_:
		return c.convertSyn(v.Syn, nil)
	case *daml.Type_Builtin_:
		return c.convertBuiltin(v.Builtin)
	case *daml.Type_Forall_:
		return c.convertForall(v.Forall)
	case *daml.Type_Struct_:
		return c.convertStruct(v.Struct)
	case *daml.Type_Nat_:
		return types.Type{Kind: types.KindNat, Nat: uint8(v.Nat)}, nil
	case *daml.Type_Tapp:
		return c.convertTapp(v.Tapp)
	case *daml.Type_InternedType:
		return c.convertInternedType(v.InternedType)
	default:
		return types.Type{}, lferrors.New(lferrors.KindDecode, "type message has no recognised variant set")
	}
}

func (c *converter) convertTypeSlice(raws []*daml.Type) ([]types.Type, error) {
	out := make([]types.Type, len(raws))
	for i, raw := range raws {
		t, err := c.convertType(raw)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func (c *converter) convertInternedType(idx int32) (types.Type, error) {
	if idx < 0 || int(idx) >= len(c.internedTypes) {
		return types.Type{}, lferrors.Errorf(lferrors.KindDecode, "interned type index %d out of range [0,%d)", idx, len(c.internedTypes))
	}
	return c.convertType(c.internedTypes[idx])
}

// convertTapp unwinds a left-nested chain of Type_Tapp nodes into the base
// type being applied plus its arguments in application order, then converts
// the base with those arguments attached.
func (c *converter) convertTapp(t *daml.Type_TApp) (types.Type, error) {
	var rawArgs []*daml.Type
	cur := &daml.Type{Sum: &daml.Type_Tapp{Tapp: t}}
	for {
		tapp, ok := cur.GetSum().(*daml.Type_Tapp)
		if !ok {
			break
		}
		rawArgs = append(rawArgs, tapp.Tapp.GetRhs())
		cur = tapp.Tapp.GetLhs()
	}
	for i, j := 0, len(rawArgs)-1; i < j; i, j = i+1, j-1 {
		rawArgs[i], rawArgs[j] = rawArgs[j], rawArgs[i]
	}
	args, err := c.convertTypeSlice(rawArgs)
	if err != nil {
		return types.Type{}, err
	}

	switch base := cur.GetSum().(type) {
	case *daml.Type_Var_:
		return c.convertVar(base.Var, args)
	case *daml.Type_Con_:
		return c.convertCon(base.Con, args)
	case *daml.Type_Syn_:
		return c.convertSyn(base.Syn, args)
	default:
		return types.Type{}, lferrors.New(lferrors.KindDecode, "type application base is not a variable, constructor or synonym")
	}
}

func (c *converter) convertVar(v *daml.Type_Var, extraArgs []types.Type) (types.Type, error) {
	name, err := interning.InternedString(v.GetVarInternedStr()).Resolve(c.resolver)
	if err != nil {
		return types.Type{}, err
	}
	args, err := c.convertTypeSlice(v.GetArgs())
	if err != nil {
		return types.Type{}, err
	}
	args = append(args, extraArgs...)
	return types.Type{Kind: types.KindVar, Var: &types.Var{Name: name, TypeArguments: args}}, nil
}

func (c *converter) convertForall(f *daml.Type_Forall) (types.Type, error) {
	vars, err := c.convertTypeVarsWithKind(f.GetVars())
	if err != nil {
		return types.Type{}, err
	}
	if f.GetBody() == nil {
		return types.Type{}, lferrors.New(lferrors.KindDecode, "forall type missing body")
	}
	body, err := c.convertType(f.GetBody())
	if err != nil {
		return types.Type{}, err
	}
	return types.Type{Kind: types.KindForall, Forall: &types.Forall{Vars: vars, Body: &body}}, nil
}

func (c *converter) convertStruct(s *daml.Type_Struct) (types.Type, error) {
	fields, err := c.convertFieldsWithType(s.GetFields())
	if err != nil {
		return types.Type{}, err
	}
	return types.Type{Kind: types.KindStruct, Struct: &types.Struct{Fields: fields}}, nil
}

func (c *converter) convertSyn(s *daml.Type_Syn, extraArgs []types.Type) (types.Type, error) {
	if s.GetTysyn() == nil {
		return types.Type{}, lferrors.New(lferrors.KindDecode, "type synonym application missing name")
	}
	name, err := c.convertTyConName(s.GetTysyn())
	if err != nil {
		return types.Type{}, err
	}
	args, err := c.convertTypeSlice(s.GetArgs())
	if err != nil {
		return types.Type{}, err
	}
	args = append(args, extraArgs...)
	return types.Type{Kind: types.KindSyn, Syn: &types.Syn{Name: name, Args: args}}, nil
}

func (c *converter) convertCon(v *daml.Type_Con, extraArgs []types.Type) (types.Type, error) {
	if v.GetTycon() == nil {
		return types.Type{}, lferrors.New(lferrors.KindDecode, "type constructor application missing name")
	}
	name, err := c.convertTyConName(v.GetTycon())
	if err != nil {
		return types.Type{}, err
	}
	args, err := c.convertTypeSlice(v.GetArgs())
	if err != nil {
		return types.Type{}, err
	}
	args = append(args, extraArgs...)

	kind := types.KindTyCon
	qualified := qualifiedName(name.PackageID(), name.ModulePath(), name.DataName())
	if c.inProgress[qualified] {
		kind = types.KindBoxedTyCon
	}

	return types.Type{Kind: kind, TyCon: &types.TyCon{Name: name, TypeArguments: args}}, nil
}

func (c *converter) convertTyConName(tn *daml.TypeConName) (types.TyConName, error) {
	modRef := tn.GetModule()
	if modRef == nil {
		return types.TyConName{}, lferrors.New(lferrors.KindDecode, "type constructor name missing module reference")
	}
	pkgRef := modRef.GetPackageRef()
	if pkgRef == nil {
		return types.TyConName{}, lferrors.New(lferrors.KindDecode, "module reference missing package reference")
	}

	modulePath, err := interning.InternedDottedName(modRef.GetModuleNameInternedDname()).Resolve(c.resolver)
	if err != nil {
		return types.TyConName{}, err
	}
	entitySegments, err := interning.InternedDottedName(tn.GetNameInternedDname()).Resolve(c.resolver)
	if err != nil {
		return types.TyConName{}, err
	}
	dataName := interning.Join(entitySegments)

	switch ref := pkgRef.GetSum().(type) {
	case *daml.PackageRef_Self_:
		if sameModulePath(modulePath, c.currentModulePath) {
			return types.TyConName{
				Form: types.TyConLocal,
				Local: &types.LocalTyCon{
					DataName:   dataName,
					PackageID:  c.selfPackageID,
					ModulePath: modulePath,
				},
			}, nil
		}
		return types.TyConName{
			Form: types.TyConNonLocal,
			NonLocal: &types.NonLocalTyCon{
				DataName:         dataName,
				SourcePackageID:  c.selfPackageID,
				SourceModulePath: c.currentModulePath,
				TargetPackageID:  c.selfPackageID,
				TargetModulePath: modulePath,
			},
		}, nil
	case *daml.PackageRef_PackageIdInternedStr:
		packageID, err := interning.InternedString(ref.PackageIdInternedStr).Resolve(c.resolver)
		if err != nil {
			return types.TyConName{}, err
		}
		return types.TyConName{
			Form: types.TyConAbsolute,
			Absolute: &types.AbsoluteTyCon{
				DataName:   dataName,
				PackageID:  packageID,
				ModulePath: modulePath,
			},
		}, nil
	default:
		return types.TyConName{}, lferrors.New(lferrors.KindDecode, "package reference has no recognised variant set")
	}
}

func sameModulePath(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (c *converter) convertBuiltin(b *daml.Type_Builtin) (types.Type, error) {
	args, err := c.convertTypeSlice(b.GetArgs())
	if err != nil {
		return types.Type{}, err
	}

	switch b.GetBuiltin() {
	case daml.BuiltinType_UNIT:
		return types.Type{Kind: types.KindUnit}, nil
	case daml.BuiltinType_BOOL:
		return types.Type{Kind: types.KindBool}, nil
	case daml.BuiltinType_INT64:
		return types.Type{Kind: types.KindInt64}, nil
	case daml.BuiltinType_TEXT:
		return types.Type{Kind: types.KindText}, nil
	case daml.BuiltinType_TIMESTAMP:
		return types.Type{Kind: types.KindTimestamp}, nil
	case daml.BuiltinType_PARTY:
		return types.Type{Kind: types.KindParty}, nil
	case daml.BuiltinType_DATE:
		return types.Type{Kind: types.KindDate}, nil
	case daml.BuiltinType_UPDATE:
		return types.Type{Kind: types.KindUpdate}, nil
	case daml.BuiltinType_ANY:
		return types.Type{Kind: types.KindAny}, nil
	case daml.BuiltinType_TYPE_REP:
		return types.Type{Kind: types.KindTypeRep}, nil
	case daml.BuiltinType_ARROW:
		return types.Type{Kind: types.KindArrow}, nil
	case daml.BuiltinType_LIST:
		return types.Type{Kind: types.KindList, List: args}, nil
	case daml.BuiltinType_TEXTMAP:
		return types.Type{Kind: types.KindTextMap, TextMap: args}, nil
	case daml.BuiltinType_GENMAP:
		if len(args) != 2 {
			return types.Type{}, lferrors.Errorf(lferrors.KindDecode, "GenMap type expects 2 type arguments, got %d", len(args))
		}
		return types.Type{Kind: types.KindGenMap, GenMap: args}, nil
	case daml.BuiltinType_OPTIONAL:
		return types.Type{Kind: types.KindOptional, Optional: args}, nil
	case daml.BuiltinType_CONTRACT_ID:
		if len(args) == 0 {
			return types.Type{Kind: types.KindContractID}, nil
		}
		return types.Type{Kind: types.KindContractID, ContractID: &args[0]}, nil
	case daml.BuiltinType_NUMERIC:
		if len(args) != 1 {
			return types.Type{}, lferrors.Errorf(lferrors.KindDecode, "Numeric type expects 1 scale argument, got %d", len(args))
		}
		return types.Type{Kind: types.KindNumeric, Numeric: &args[0]}, nil
	default:
		return types.Type{}, lferrors.Errorf(lferrors.KindDecode, "unknown builtin type %v", b.GetBuiltin())
	}
}
