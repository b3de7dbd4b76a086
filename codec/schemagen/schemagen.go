// Package schemagen generates JSON Schema documents from decoded Daml-LF
// types and compiles/validates payloads against them, grounded on the
// jsonschema/v6 compile-then-validate pattern. It sits above codec rather
// than inside it: codec stays a pure, type-driven encoder/decoder, while
// schemagen produces an optional pre-validation layer a translator can run
// to report every violated field in a single pass instead of failing on the
// first decode mismatch.
package schemagen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/daml-lf/bridge/codec"
	"github.com/daml-lf/bridge/lf/types"
	"github.com/daml-lf/bridge/lferrors"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Generate builds a JSON Schema document describing the JSON shapes codec
// accepts for t, resolving any TyCon/BoxedTyCon reference against archive.
// Named data definitions are emitted once under $defs and referenced by
// $ref, so a self- or mutually-recursive type (the reason KindBoxedTyCon
// exists) produces a finite document.
func Generate(t types.Type, archive *types.Archive) (map[string]any, error) {
	g := &generator{archive: archive, defs: map[string]any{}, inProgress: map[string]bool{}}
	root, err := g.schemaFor(t)
	if err != nil {
		return nil, err
	}
	doc := map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
	}
	for k, v := range root {
		doc[k] = v
	}
	if len(g.defs) > 0 {
		doc["$defs"] = g.defs
	}
	return doc, nil
}

// Validate compiles the schema for t and checks raw against it, aggregating
// every violated field into a single *lferrors.Error rather than stopping at
// the first failure.
func Validate(raw []byte, t types.Type, archive *types.Archive) error {
	doc, err := Generate(t, archive)
	if err != nil {
		return err
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return lferrors.NewWithCause(lferrors.KindCodec, "invalid JSON", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return lferrors.NewWithCause(lferrors.KindCodec, "add schema resource", err)
	}
	schema, err := c.Compile("schema.json")
	if err != nil {
		return lferrors.NewWithCause(lferrors.KindCodec, "compile schema", err)
	}

	if err := schema.Validate(payload); err != nil {
		violations := collectViolations(err)
		return lferrors.Errorf(lferrors.KindCodec, "schema validation failed: %s", strings.Join(violations, "; "))
	}
	return nil
}

type generator struct {
	archive    *types.Archive
	defs       map[string]any
	inProgress map[string]bool
}

func (g *generator) schemaFor(t types.Type) (map[string]any, error) {
	switch t.Kind {
	case types.KindUnit:
		return map[string]any{"type": "object", "maxProperties": 0}, nil

	case types.KindBool:
		return map[string]any{"type": "boolean"}, nil

	case types.KindInt64:
		return map[string]any{"type": []any{"string", "integer"}}, nil

	case types.KindNumeric:
		return map[string]any{"type": []any{"string", "number"}}, nil

	case types.KindText, types.KindParty, types.KindContractID:
		return map[string]any{"type": "string"}, nil

	case types.KindTimestamp:
		return map[string]any{"type": "string", "format": "date-time"}, nil

	case types.KindDate:
		return map[string]any{"type": "string", "format": "date"}, nil

	case types.KindList:
		elem, err := g.schemaFor(t.List[0])
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "array", "items": elem}, nil

	case types.KindTextMap:
		elem, err := g.schemaFor(t.TextMap[0])
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "object", "additionalProperties": elem}, nil

	case types.KindGenMap:
		key, err := g.schemaFor(t.GenMap[0])
		if err != nil {
			return nil, err
		}
		val, err := g.schemaFor(t.GenMap[1])
		if err != nil {
			return nil, err
		}
		pair := map[string]any{
			"type":     "array",
			"prefixItems": []any{key, val},
			"minItems": 2,
			"maxItems": 2,
		}
		return map[string]any{"type": "array", "items": pair}, nil

	case types.KindOptional:
		return g.schemaForOptional(t)

	case types.KindTyCon, types.KindBoxedTyCon:
		return g.schemaForTyCon(t)

	default:
		return nil, lferrors.Errorf(lferrors.KindCodec, "type %s has no JSON Schema equivalent", t.Name())
	}
}

// schemaForOptional mirrors codec's shallow/nested Optional disambiguation:
// a nested Optional(Optional(x)) is encoded as null, [] or [x], while a
// shallow Optional(x) is encoded as null or the bare value of x.
func (g *generator) schemaForOptional(t types.Type) (map[string]any, error) {
	inner := t.Optional[0]
	if inner.Kind == types.KindOptional {
		innerSchema, err := g.schemaForOptional(inner)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"oneOf": []any{
				map[string]any{"type": "null"},
				map[string]any{"type": "array", "maxItems": 0},
				map[string]any{"type": "array", "minItems": 1, "maxItems": 1, "items": innerSchema},
			},
		}, nil
	}
	innerSchema, err := g.schemaFor(inner)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"oneOf": []any{
			map[string]any{"type": "null"},
			innerSchema,
		},
	}, nil
}

func (g *generator) schemaForTyCon(t types.Type) (map[string]any, error) {
	d, err := codec.ResolveTyCon(g.archive, t.TyCon.Name)
	if err != nil {
		return nil, err
	}
	defName := defKeyFor(t.TyCon.Name)

	if g.inProgress[defName] {
		return map[string]any{"$ref": "#/$defs/" + defName}, nil
	}
	if _, already := g.defs[defName]; already {
		return map[string]any{"$ref": "#/$defs/" + defName}, nil
	}

	g.inProgress[defName] = true
	defer delete(g.inProgress, defName)

	subst := codec.Substitution(d.TypeParams, t.TyCon.TypeArguments)

	var def map[string]any
	switch d.Kind {
	case types.DataRecord, types.DataTemplate:
		def, err = g.schemaForRecord(d.Record.Fields, subst)
	case types.DataVariant:
		def, err = g.schemaForVariant(d.Variant.Constructors, subst)
	case types.DataEnum:
		def = g.schemaForEnum(d.Enum.Constructors)
	default:
		err = lferrors.Errorf(lferrors.KindCodec, "data definition %q has no known shape", d.Name)
	}
	if err != nil {
		return nil, err
	}

	g.defs[defName] = def
	return map[string]any{"$ref": "#/$defs/" + defName}, nil
}

func (g *generator) schemaForRecord(fields []types.Field, subst map[string]types.Type) (map[string]any, error) {
	props := map[string]any{}
	var required []any
	for _, f := range fields {
		fieldType := codec.SubstituteType(f.Type, subst)
		fs, err := g.schemaFor(fieldType)
		if err != nil {
			return nil, err
		}
		props[f.Name] = fs
		if fieldType.Kind != types.KindOptional {
			required = append(required, f.Name)
		}
	}
	doc := map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc, nil
}

func (g *generator) schemaForVariant(constructors []types.Field, subst map[string]types.Type) (map[string]any, error) {
	var alternatives []any
	for _, c := range constructors {
		valueType := codec.SubstituteType(c.Type, subst)
		vs, err := g.schemaFor(valueType)
		if err != nil {
			return nil, err
		}
		alternatives = append(alternatives, map[string]any{
			"type": "object",
			"properties": map[string]any{
				"tag":   map[string]any{"const": c.Name},
				"value": vs,
			},
			"required":             []any{"tag", "value"},
			"additionalProperties": false,
		})
	}
	return map[string]any{"oneOf": alternatives}, nil
}

func (g *generator) schemaForEnum(constructors []string) map[string]any {
	values := make([]any, len(constructors))
	for i, c := range constructors {
		values[i] = c
	}
	return map[string]any{"type": "string", "enum": values}
}

func defKeyFor(name types.TyConName) string {
	key := name.PackageID() + ":" + strings.Join(name.ModulePath(), ".") + ":" + name.DataName()
	replacer := strings.NewReplacer(":", "_", ".", "_")
	return replacer.Replace(key)
}

func collectViolations(err error) []string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	return leafViolations(ve)
}

func leafViolations(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{fmt.Sprintf("%s: %s", loc, ve.Error())}
	}
	var out []string
	for _, cause := range ve.Causes {
		out = append(out, leafViolations(cause)...)
	}
	return out
}
