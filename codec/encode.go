package codec

import (
	"bytes"
	"encoding/json"

	"github.com/daml-lf/bridge/lferrors"
)

// Encode renders a Value as its canonical JSON encoding.
func Encode(v Value) ([]byte, error) {
	node, err := encodeValue(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(node)
}

// encodeValue produces a plain Go value (string/bool/map/slice/json.RawMessage)
// suitable for encoding/json.Marshal, following the exact JSON shape table.
// Record values are rendered as json.RawMessage rather than map[string]any
// because Go map marshaling sorts keys alphabetically, which would lose the
// declaration-order field ordering the encoding rules require.
func encodeValue(v Value) (any, error) {
	switch v.Kind {
	case ValueUnit:
		return map[string]any{}, nil
	case ValueBool:
		return v.Bool, nil
	case ValueInt64:
		return v.Int64, nil
	case ValueNumeric:
		return v.Numeric, nil
	case ValueText:
		return v.Text, nil
	case ValueTimestamp:
		return v.Timestamp, nil
	case ValueDate:
		return v.Date, nil
	case ValueParty:
		return v.Party, nil
	case ValueContractID:
		return v.ContractID, nil
	case ValueList:
		return encodeList(v.List)
	case ValueTextMap:
		out := make(map[string]any, len(v.TextMap))
		for k, elem := range v.TextMap {
			ev, err := encodeValue(elem)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	case ValueGenMap:
		out := make([][2]any, len(v.GenMap))
		for i, entry := range v.GenMap {
			k, err := encodeValue(entry.Key)
			if err != nil {
				return nil, err
			}
			val, err := encodeValue(entry.Value)
			if err != nil {
				return nil, err
			}
			out[i] = [2]any{k, val}
		}
		return out, nil
	case ValueOptional:
		return encodeOptional(v)
	case ValueRecord:
		return encodeRecordRaw(v.Record)
	case ValueVariant:
		val, err := encodeValue(v.Variant.Value)
		if err != nil {
			return nil, err
		}
		return map[string]any{"tag": v.Variant.Constructor, "value": val}, nil
	case ValueEnum:
		return v.Enum, nil
	default:
		return nil, lferrors.Errorf(lferrors.KindCodec, "value kind %d has no known encoding", v.Kind)
	}
}

func encodeList(vs []Value) ([]any, error) {
	out := make([]any, len(vs))
	for i, elem := range vs {
		ev, err := encodeValue(elem)
		if err != nil {
			return nil, err
		}
		out[i] = ev
	}
	return out, nil
}

// encodeOptional implements the shallow/nested Optional distinction on the
// *value* side: whether the payload wrapped by Some is itself an Optional
// value decides whether the nested `[]`/`[x]` disambiguating form is used,
// mirroring the type-level test used by decodeOptional.
func encodeOptional(v Value) (any, error) {
	if v.Optional == nil {
		return nil, nil
	}
	inner := *v.Optional
	if inner.Kind != ValueOptional {
		return encodeValue(inner)
	}
	if inner.Optional == nil {
		return []any{}, nil
	}
	innerVal, err := encodeValue(*inner.Optional)
	if err != nil {
		return nil, err
	}
	return []any{innerVal}, nil
}

// EncodeRecord renders a RecordValue as a JSON object keyed by field label,
// in declaration order (the order Fields is already held in).
func EncodeRecord(r *RecordValue) ([]byte, error) {
	raw, err := encodeRecordRaw(r)
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

func encodeRecordRaw(r *RecordValue) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		ev, err := encodeValue(f.Value)
		if err != nil {
			return nil, err
		}
		valBytes, err := json.Marshal(ev)
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return json.RawMessage(buf.Bytes()), nil
}
