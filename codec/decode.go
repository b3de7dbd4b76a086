package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/daml-lf/bridge/lf/types"
	"github.com/daml-lf/bridge/lferrors"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z"
const dateLayout = "2006-01-02"

// Decode parses raw as JSON and converts it into a Value of the given Type,
// resolving any TyCon/BoxedTyCon reference against archive.
func Decode(raw []byte, t types.Type, archive *types.Archive) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Value{}, lferrors.NewWithCause(lferrors.KindCodec, "invalid JSON", err)
	}
	return decodeValue(v, t, archive)
}

func decodeValue(v any, t types.Type, archive *types.Archive) (Value, error) {
	switch t.Kind {
	case types.KindUnit:
		if _, ok := v.(map[string]any); !ok {
			return Value{}, typeErr(t, v)
		}
		return Unit(), nil

	case types.KindBool:
		b, ok := v.(bool)
		if !ok {
			return Value{}, typeErr(t, v)
		}
		return Value{Kind: ValueBool, Bool: b}, nil

	case types.KindInt64:
		s, err := decodeIntegerString(v)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueInt64, Int64: s}, nil

	case types.KindNumeric:
		s, err := decodeDecimalString(v)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueNumeric, Numeric: s}, nil

	case types.KindText:
		s, ok := v.(string)
		if !ok {
			return Value{}, typeErr(t, v)
		}
		return Value{Kind: ValueText, Text: s}, nil

	case types.KindTimestamp:
		s, ok := v.(string)
		if !ok {
			return Value{}, typeErr(t, v)
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return Value{}, lferrors.NewWithCause(lferrors.KindCodec, "invalid timestamp "+s, err)
		}
		return Value{Kind: ValueTimestamp, Timestamp: parsed.UTC().Format(timestampLayout)}, nil

	case types.KindDate:
		s, ok := v.(string)
		if !ok {
			return Value{}, typeErr(t, v)
		}
		if _, err := time.Parse(dateLayout, s); err != nil {
			return Value{}, lferrors.NewWithCause(lferrors.KindCodec, "invalid date "+s, err)
		}
		return Value{Kind: ValueDate, Date: s}, nil

	case types.KindParty:
		s, ok := v.(string)
		if !ok {
			return Value{}, typeErr(t, v)
		}
		return Value{Kind: ValueParty, Party: s}, nil

	case types.KindContractID:
		s, ok := v.(string)
		if !ok {
			return Value{}, typeErr(t, v)
		}
		return Value{Kind: ValueContractID, ContractID: s}, nil

	case types.KindList:
		arr, ok := v.([]any)
		if !ok {
			return Value{}, typeErr(t, v)
		}
		elemType := t.List[0]
		out := make([]Value, len(arr))
		for i, e := range arr {
			ev, err := decodeValue(e, elemType, archive)
			if err != nil {
				return Value{}, err
			}
			out[i] = ev
		}
		return Value{Kind: ValueList, List: out}, nil

	case types.KindTextMap:
		obj, ok := v.(map[string]any)
		if !ok {
			return Value{}, typeErr(t, v)
		}
		valType := t.TextMap[0]
		out := make(map[string]Value, len(obj))
		for k, raw := range obj {
			vv, err := decodeValue(raw, valType, archive)
			if err != nil {
				return Value{}, err
			}
			out[k] = vv
		}
		return Value{Kind: ValueTextMap, TextMap: out}, nil

	case types.KindGenMap:
		arr, ok := v.([]any)
		if !ok {
			return Value{}, typeErr(t, v)
		}
		keyType, valType := t.GenMap[0], t.GenMap[1]
		out := make([]MapEntry, len(arr))
		for i, pair := range arr {
			pairArr, ok := pair.([]any)
			if !ok || len(pairArr) != 2 {
				return Value{}, lferrors.New(lferrors.KindCodec, "GenMap entry must be a two-element array")
			}
			k, err := decodeValue(pairArr[0], keyType, archive)
			if err != nil {
				return Value{}, err
			}
			vv, err := decodeValue(pairArr[1], valType, archive)
			if err != nil {
				return Value{}, err
			}
			out[i] = MapEntry{Key: k, Value: vv}
		}
		return Value{Kind: ValueGenMap, GenMap: out}, nil

	case types.KindOptional:
		return decodeOptional(v, t, archive)

	case types.KindTyCon, types.KindBoxedTyCon:
		return decodeTyCon(v, t, archive)

	default:
		return Value{}, lferrors.Errorf(lferrors.KindCodec, "type %s is not decodable from JSON", t.Name())
	}
}

func decodeOptional(v any, t types.Type, archive *types.Archive) (Value, error) {
	inner := t.Optional[0]
	nested := inner.Kind == types.KindOptional

	if v == nil {
		return None(), nil
	}

	if !nested {
		val, err := decodeValue(v, inner, archive)
		if err != nil {
			return Value{}, err
		}
		return Some(val), nil
	}

	arr, ok := v.([]any)
	if !ok {
		return Value{}, lferrors.New(lferrors.KindCodec, "nested Optional must be encoded as null, [] or [x]")
	}
	switch len(arr) {
	case 0:
		return Some(None()), nil
	case 1:
		val, err := decodeValue(arr[0], inner, archive)
		if err != nil {
			return Value{}, err
		}
		return Some(val), nil
	default:
		return Value{}, lferrors.New(lferrors.KindCodec, "nested Optional array must have 0 or 1 elements")
	}
}

func decodeTyCon(v any, t types.Type, archive *types.Archive) (Value, error) {
	d, err := ResolveTyCon(archive, t.TyCon.Name)
	if err != nil {
		return Value{}, err
	}
	subst := Substitution(d.TypeParams, t.TyCon.TypeArguments)

	switch d.Kind {
	case types.DataRecord, types.DataTemplate:
		return decodeRecord(v, d.Record.Fields, subst, archive)
	case types.DataVariant:
		return decodeVariant(v, d.Variant.Constructors, subst, archive)
	case types.DataEnum:
		return decodeEnum(v, d.Enum.Constructors)
	default:
		return Value{}, lferrors.Errorf(lferrors.KindCodec, "data definition %q has no known shape", d.Name)
	}
}

func decodeRecord(v any, fields []types.Field, subst map[string]types.Type, archive *types.Archive) (Value, error) {
	out := make([]FieldValue, 0, len(fields))

	switch payload := v.(type) {
	case map[string]any:
		seen := make(map[string]bool, len(payload))
		for _, f := range fields {
			fieldType := SubstituteType(f.Type, subst)
			raw, present := payload[f.Name]
			seen[f.Name] = true
			if !present {
				if fieldType.Kind == types.KindOptional {
					out = append(out, FieldValue{Name: f.Name, Value: None()})
					continue
				}
				return Value{}, lferrors.Errorf(lferrors.KindCodec, "missing required field %q", f.Name)
			}
			fv, err := decodeValue(raw, fieldType, archive)
			if err != nil {
				return Value{}, err
			}
			out = append(out, FieldValue{Name: f.Name, Value: fv})
		}
		for k := range payload {
			if !seen[k] {
				return Value{}, lferrors.Errorf(lferrors.KindCodec, "unknown field %q", k)
			}
		}
	case []any:
		if len(payload) != len(fields) {
			return Value{}, lferrors.Errorf(lferrors.KindCodec, "positional record expects %d fields, got %d", len(fields), len(payload))
		}
		for i, f := range fields {
			fieldType := SubstituteType(f.Type, subst)
			fv, err := decodeValue(payload[i], fieldType, archive)
			if err != nil {
				return Value{}, err
			}
			out = append(out, FieldValue{Name: f.Name, Value: fv})
		}
	default:
		return Value{}, lferrors.New(lferrors.KindCodec, "record must be a JSON object or array")
	}

	return Value{Kind: ValueRecord, Record: &RecordValue{Fields: out}}, nil
}

func decodeVariant(v any, constructors []types.Field, subst map[string]types.Type, archive *types.Archive) (Value, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Value{}, lferrors.New(lferrors.KindCodec, "variant must be a JSON object with tag/value")
	}
	tagRaw, ok := obj["tag"]
	if !ok {
		return Value{}, lferrors.New(lferrors.KindCodec, `variant missing "tag" field`)
	}
	tag, ok := tagRaw.(string)
	if !ok {
		return Value{}, lferrors.New(lferrors.KindCodec, `variant "tag" must be a string`)
	}

	for _, c := range constructors {
		if c.Name == tag {
			valueType := SubstituteType(c.Type, subst)
			payload, err := decodeValue(obj["value"], valueType, archive)
			if err != nil {
				return Value{}, err
			}
			return Value{Kind: ValueVariant, Variant: &VariantValue{Constructor: tag, Value: payload}}, nil
		}
	}
	return Value{}, lferrors.Errorf(lferrors.KindCodec, "unknown variant constructor %q", tag)
}

func decodeEnum(v any, constructors []string) (Value, error) {
	s, ok := v.(string)
	if !ok {
		return Value{}, lferrors.New(lferrors.KindCodec, "enum must be a JSON string")
	}
	for _, c := range constructors {
		if c == s {
			return Value{Kind: ValueEnum, Enum: s}, nil
		}
	}
	return Value{}, lferrors.Errorf(lferrors.KindCodec, "unknown enum constructor %q", s)
}

func decodeIntegerString(v any) (string, error) {
	switch n := v.(type) {
	case string:
		bi, ok := new(big.Int).SetString(n, 10)
		if !ok {
			return "", lferrors.Errorf(lferrors.KindCodec, "invalid Int64 string %q", n)
		}
		return bi.String(), nil
	case json.Number:
		bi, ok := new(big.Int).SetString(n.String(), 10)
		if !ok {
			return "", lferrors.Errorf(lferrors.KindCodec, "invalid Int64 number %q", n.String())
		}
		return bi.String(), nil
	default:
		return "", fmt.Errorf("expected Int64 as JSON string or number, got %T", v)
	}
}

func decodeDecimalString(v any) (string, error) {
	var s string
	switch n := v.(type) {
	case string:
		s = n
	case json.Number:
		s = n.String()
	default:
		return "", fmt.Errorf("expected Numeric as JSON string or number, got %T", v)
	}
	if _, ok := new(big.Rat).SetString(s); !ok {
		return "", lferrors.Errorf(lferrors.KindCodec, "invalid Numeric decimal %q", s)
	}
	return s, nil
}

func typeErr(t types.Type, v any) error {
	return lferrors.Errorf(lferrors.KindCodec, "expected %s, got %T", t.Name(), v)
}
