// Package version models the Daml-LF language version lattice and the
// per-feature minimum-version gating used by the archive decoder.
package version

import "fmt"

// Minor identifies a Daml-LF 1.x minor version. Ordering matches release
// order, not numeric value: V8 < V11 < Dev.
type Minor int

const (
	MinorV0 Minor = iota
	MinorV1
	MinorV2
	MinorV3
	MinorV4
	MinorV5
	MinorV6
	MinorV7
	MinorV8
	MinorV11
	MinorDev
)

// String renders the minor version the way it appears in a dalf payload.
func (m Minor) String() string {
	switch m {
	case MinorV0:
		return "0"
	case MinorV1:
		return "1"
	case MinorV2:
		return "2"
	case MinorV3:
		return "3"
	case MinorV4:
		return "4"
	case MinorV5:
		return "5"
	case MinorV6:
		return "6"
	case MinorV7:
		return "7"
	case MinorV8:
		return "8"
	case MinorV11:
		return "11"
	case MinorDev:
		return "dev"
	default:
		return "unknown"
	}
}

// ParseMinor parses the minor-version string embedded in an archive payload.
func ParseMinor(s string) (Minor, error) {
	switch s {
	case "0":
		return MinorV0, nil
	case "1":
		return MinorV1, nil
	case "2":
		return MinorV2, nil
	case "3":
		return MinorV3, nil
	case "4":
		return MinorV4, nil
	case "5":
		return MinorV5, nil
	case "6":
		return MinorV6, nil
	case "7":
		return MinorV7, nil
	case "8":
		return MinorV8, nil
	case "11":
		return MinorV11, nil
	case "dev":
		return MinorDev, nil
	default:
		return 0, fmt.Errorf("unknown language minor version %q", s)
	}
}

// Version is a Daml-LF language version: the legacy v0, a v1.x release, or
// a v2.x release. Zero value is V0.
type Version struct {
	major int // 0, 1, or 2
	minor Minor
}

// V0 is the legacy, pre-1.0 language version.
var V0 = Version{major: 0}

// V1 constructs a v1.<minor> language version.
func V1(minor Minor) Version {
	return Version{major: 1, minor: minor}
}

// V2 constructs a v2.<minor> language version, e.g. V2(MinorV1) for the
// daml_lf_2_1 archive payload variant.
func V2(minor Minor) Version {
	return Version{major: 2, minor: minor}
}

var (
	V1_0  = V1(MinorV0)
	V1_1  = V1(MinorV1)
	V1_2  = V1(MinorV2)
	V1_3  = V1(MinorV3)
	V1_4  = V1(MinorV4)
	V1_5  = V1(MinorV5)
	V1_6  = V1(MinorV6)
	V1_7  = V1(MinorV7)
	V1_8  = V1(MinorV8)
	V1_11 = V1(MinorV11)
	V1Dev = V1(MinorDev)

	V2_1 = V2(MinorV1)
)

// String renders the version as e.g. "v0", "v1.7" or "v2.1".
func (v Version) String() string {
	switch v.major {
	case 0:
		return "v0"
	case 2:
		return fmt.Sprintf("v2.%s", v.minor)
	default:
		return fmt.Sprintf("v1.%s", v.minor)
	}
}

// rank returns a total order key comparable with <, satisfying the
// non-numeric minor-version order (V8 < V11 < Dev), major.0 < major.1, and
// every v1.x sorting before every v2.x.
func (v Version) rank() int {
	switch v.major {
	case 0:
		return -1
	case 2:
		return 1000 + int(v.minor)
	default:
		return int(v.minor)
	}
}

// Less reports whether v sorts strictly before other.
func (v Version) Less(other Version) bool {
	return v.rank() < other.rank()
}

// AtLeast reports whether v is the same as, or sorts after, other.
func (v Version) AtLeast(other Version) bool {
	return !v.Less(other)
}

// FeatureVersion names a Daml-LF feature and the minimum language version
// that must support_feature it for the feature to be usable.
type FeatureVersion struct {
	Name      string
	MinVersion Version
}

// Supports reports whether v is new enough to use the given feature.
func (v Version) Supports(feature FeatureVersion) bool {
	return v.AtLeast(feature.MinVersion)
}

// The full set of named Daml-LF feature gates, mirroring the feature table
// used to validate literal-vs-interned string/dotted-name usage and other
// version-gated wire shapes during decode.
var (
	FeatureAnyType              = FeatureVersion{Name: "ANY_TYPE", MinVersion: V1_7}
	FeatureArrowType            = FeatureVersion{Name: "ARROW_TYPE", MinVersion: V1_1}
	FeatureChoiceObservers      = FeatureVersion{Name: "CHOICE_OBSERVERS", MinVersion: V1_11}
	FeatureCoerceContractID     = FeatureVersion{Name: "COERCE_CONTRACT_ID", MinVersion: V1_5}
	FeatureComplexContractKeys  = FeatureVersion{Name: "COMPLEX_CONTACT_KEYS", MinVersion: V1_4}
	FeatureContractKeys         = FeatureVersion{Name: "CONTRACT_KEYS", MinVersion: V1_3}
	FeatureDefault              = FeatureVersion{Name: "DEFAULT", MinVersion: V1_0}
	FeatureEnum                 = FeatureVersion{Name: "ENUM", MinVersion: V1_6}
	FeatureInternedDottedNames  = FeatureVersion{Name: "INTERNED_DOTTED_NAMES", MinVersion: V1_7}
	FeatureInternedPackageID    = FeatureVersion{Name: "INTERNED_PACKAGE_ID", MinVersion: V1_6}
	FeatureInternedStrings      = FeatureVersion{Name: "INTERNED_STRINGS", MinVersion: V1_7}
	FeatureNumberParsing        = FeatureVersion{Name: "NUMBER_PARSING", MinVersion: V1_5}
	FeatureNumeric              = FeatureVersion{Name: "NUMERIC", MinVersion: V1_7}
	FeatureOptional             = FeatureVersion{Name: "OPTIONAL", MinVersion: V1_1}
	FeatureOptionalExerciseActor = FeatureVersion{Name: "OPTIONAL_EXERCISE_ACTOR", MinVersion: V1_5}
	FeaturePackageMetadata      = FeatureVersion{Name: "PACKAGE_METADATA", MinVersion: V1_8}
	FeaturePartyOrdering        = FeatureVersion{Name: "PARTY_ORDERING", MinVersion: V1_1}
	FeaturePartyTextConversions = FeatureVersion{Name: "PARTY_TEXT_CONVERSIONS", MinVersion: V1_2}
	FeatureShaText              = FeatureVersion{Name: "SHA_TEXT", MinVersion: V1_2}
	FeatureTextMap              = FeatureVersion{Name: "TEXTMAP", MinVersion: V1_3}
	FeatureTextPacking          = FeatureVersion{Name: "TEXT_PACKING", MinVersion: V1_6}
	FeatureTypeRep              = FeatureVersion{Name: "TYPE_REP", MinVersion: V1_7}
)
