package types

// Field is a named, typed slot within a Record or an anonymous Struct.
type Field struct {
	Name string
	Type Type
}

// Record is a Daml-LF record data definition: a named product type with
// ordered, labelled fields.
type Record struct {
	Fields []Field
}

// Variant is a Daml-LF variant (sum) data definition: a named choice
// between constructors, each carrying a single typed payload.
type Variant struct {
	Constructors []Field
}

// Enum is a Daml-LF enum data definition: a named choice between
// zero-argument constructors.
type Enum struct {
	Constructors []string
}

// DataKind discriminates the variants of Data.
type DataKind int

const (
	DataRecord DataKind = iota
	DataVariant
	DataEnum
	DataTemplate
)

// Data is a named data definition within a Module: a Record, Variant, Enum
// or Template, tagged by Kind. For Record, Variant and Enum kinds, exactly
// one of Record/Variant/Enum is populated. A Template's underlying payload
// is itself a Record, so a DataTemplate populates both Record (the contract
// argument shape) and Template (its choices and key).
type Data struct {
	Name         string
	TypeParams   []TypeVarWithKind
	Kind         DataKind
	Serializable bool
	Record       *Record
	Variant      *Variant
	Enum         *Enum
	Template     *Template
}

// Choice is a single exercisable choice on a Template: its argument type,
// its result type, and whether exercising it consumes the contract.
type Choice struct {
	Name         string
	ArgumentType Type
	ReturnType   Type
	Consuming    bool
}

// Template is a Daml-LF template data definition: the contract shape
// (shared with its Record) plus its choices and optional contract key type.
type Template struct {
	Choices []Choice
	// KeyType is the contract key's type, or nil if the template declares
	// no contract key.
	KeyType *Type
}
