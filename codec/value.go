// Package codec implements the type-directed JSON<->Daml value conversion
// described for the bridge: decode validates and converts an incoming JSON
// document against an expected lf/types.Type, encode renders a Value back
// to JSON. Both directions dispatch on the semantic Type, never on JSON
// shape alone.
package codec

// ValueKind discriminates the variants of Value, mirroring lf/types.TypeKind
// for the subset of kinds that carry runtime values.
type ValueKind int

const (
	ValueUnit ValueKind = iota
	ValueBool
	ValueInt64
	ValueNumeric
	ValueText
	ValueTimestamp
	ValueDate
	ValueParty
	ValueContractID
	ValueList
	ValueTextMap
	ValueGenMap
	ValueOptional
	ValueRecord
	ValueVariant
	ValueEnum
)

// Value is a decoded Daml value, tagged by Kind with only the fields
// relevant to that Kind populated. Go has no native sum types; see
// lf/types.Type for the same pattern applied to the type graph.
type Value struct {
	Kind ValueKind

	Bool      bool
	Int64     string // decimal text, preserves precision beyond int64 range
	Numeric   string // canonical decimal text
	Text      string
	Timestamp string // RFC3339 UTC, microsecond precision
	Date      string // YYYY-MM-DD
	Party     string
	ContractID string

	List     []Value
	TextMap  map[string]Value
	GenMap   []MapEntry
	Optional *Value // nil means None; non-nil wraps the Some payload

	Record *RecordValue
	Variant *VariantValue
	Enum    string
}

// MapEntry is one key/value pair of a GenMap value, order-preserving per
// the wire/JSON two-element-array-of-pairs encoding.
type MapEntry struct {
	Key   Value
	Value Value
}

// RecordValue is a decoded record: ordered fields matching the declaring
// Record type's field order.
type RecordValue struct {
	Fields []FieldValue
}

// FieldValue is one labelled field of a RecordValue.
type FieldValue struct {
	Name  string
	Value Value
}

// VariantValue is a decoded variant: the chosen constructor's name plus its
// single payload value.
type VariantValue struct {
	Constructor string
	Value       Value
}

// Unit returns the single Value of Daml's Unit type.
func Unit() Value { return Value{Kind: ValueUnit} }

// Some wraps v as a Some-valued Optional.
func Some(v Value) Value {
	return Value{Kind: ValueOptional, Optional: &v}
}

// None returns the Value of an empty Optional.
func None() Value {
	return Value{Kind: ValueOptional, Optional: nil}
}
