// Package interning implements the late-binding string/dotted-name
// interning scheme used by Daml-LF archive payloads. Depending on the
// language version, a name may be carried literally inline or as an index
// into the package's interned-strings/interned-dotted-names tables; this
// package resolves either form uniformly and enforces that only the form
// the payload's language version actually supports was used.
package interning

import (
	"strings"

	"github.com/daml-lf/bridge/lf/version"
	"github.com/daml-lf/bridge/lferrors"
)

// Resolver gives an InternableString/InternableDottedName access to its
// owning package's interning tables and language version.
type Resolver interface {
	LanguageVersion() version.Version
	ResolveString(index int32) (string, error)
	ResolveStrings(indices []int32) ([]string, error)
	ResolveDottedToIndices(index int32) ([]int32, error)
	ResolveDotted(index int32) ([]string, error)
}

// String is a name that may be carried literally or as an interned-string
// table index, depending on the producing compiler's language version.
type String struct {
	literal  string
	index    int32
	interned bool
}

// LiteralString constructs a String carrying its value inline.
func LiteralString(s string) String {
	return String{literal: s}
}

// InternedString constructs a String referencing an interned-strings index.
func InternedString(index int32) String {
	return String{index: index, interned: true}
}

// Resolve returns the underlying string, enforcing that literal strings are
// only used when the resolver's language version does not support interned
// strings, and that interned indices are only used when it does.
func (s String) Resolve(r Resolver) (string, error) {
	supportsInterning := r.LanguageVersion().Supports(version.FeatureInternedStrings)
	if s.interned {
		if !supportsInterning {
			return "", lferrors.New(lferrors.KindDecode,
				"interned string index used but language version does not support INTERNED_STRINGS")
		}
		return r.ResolveString(s.index)
	}
	if supportsInterning {
		return "", lferrors.New(lferrors.KindDecode,
			"literal string used but language version requires INTERNED_STRINGS")
	}
	return s.literal, nil
}

// DottedName is a dotted path (e.g. a module name) that may be carried as a
// literal segment list or as an interned-dotted-names table index.
type DottedName struct {
	literal  []string
	index    int32
	interned bool
}

// LiteralDottedName constructs a DottedName carrying its segments inline.
func LiteralDottedName(segments []string) DottedName {
	return DottedName{literal: segments}
}

// InternedDottedName constructs a DottedName referencing an
// interned-dotted-names table index.
func InternedDottedName(index int32) DottedName {
	return DottedName{index: index, interned: true}
}

// Resolve returns the dotted name's segments, enforcing the same
// literal-vs-interned version gating as String.Resolve.
func (d DottedName) Resolve(r Resolver) ([]string, error) {
	supportsInterning := r.LanguageVersion().Supports(version.FeatureInternedDottedNames)
	if d.interned {
		if !supportsInterning {
			return nil, lferrors.New(lferrors.KindDecode,
				"interned dotted name index used but language version does not support INTERNED_DOTTED_NAMES")
		}
		return r.ResolveDotted(d.index)
	}
	if supportsInterning {
		return nil, lferrors.New(lferrors.KindDecode,
			"literal dotted name used but language version requires INTERNED_DOTTED_NAMES")
	}
	return d.literal, nil
}

// ResolveLast returns only the final segment of the dotted name, e.g. the
// entity name out of a qualified "Module.Entity" path.
func (d DottedName) ResolveLast(r Resolver) (string, error) {
	segments, err := d.Resolve(r)
	if err != nil {
		return "", err
	}
	if len(segments) == 0 {
		return "", lferrors.New(lferrors.KindDecode, "dotted name resolved to zero segments")
	}
	return segments[len(segments)-1], nil
}

// Join renders a dotted name's segments joined with ".", mirroring how
// Daml-LF module/entity names print in error messages and template ids.
func Join(segments []string) string {
	return strings.Join(segments, ".")
}

// Table holds a package's interned strings and interned dotted names,
// implementing Resolver directly for convenience when only one package's
// tables are in scope (the common case within a single Package decode).
type Table struct {
	Version             version.Version
	InternedStrings     []string
	InternedDottedNames [][]int32
}

var _ Resolver = (*Table)(nil)

// LanguageVersion returns the owning package's language version.
func (t *Table) LanguageVersion() version.Version {
	return t.Version
}

// ResolveString looks up a single interned string by index.
func (t *Table) ResolveString(index int32) (string, error) {
	if index < 0 || int(index) >= len(t.InternedStrings) {
		return "", lferrors.Errorf(lferrors.KindDecode, "interned string index %d out of range [0,%d)", index, len(t.InternedStrings))
	}
	return t.InternedStrings[index], nil
}

// ResolveStrings looks up a batch of interned strings by index.
func (t *Table) ResolveStrings(indices []int32) ([]string, error) {
	out := make([]string, len(indices))
	for i, idx := range indices {
		s, err := t.ResolveString(idx)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// ResolveDottedToIndices returns the interned-string indices that make up
// the dotted name at the given interned-dotted-names table index.
func (t *Table) ResolveDottedToIndices(index int32) ([]int32, error) {
	if index < 0 || int(index) >= len(t.InternedDottedNames) {
		return nil, lferrors.Errorf(lferrors.KindDecode, "interned dotted name index %d out of range [0,%d)", index, len(t.InternedDottedNames))
	}
	return t.InternedDottedNames[index], nil
}

// ResolveDotted resolves the interned-dotted-names table index all the way
// down to its string segments.
func (t *Table) ResolveDotted(index int32) ([]string, error) {
	indices, err := t.ResolveDottedToIndices(index)
	if err != nil {
		return nil, err
	}
	return t.ResolveStrings(indices)
}
