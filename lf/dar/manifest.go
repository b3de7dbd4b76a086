// Package dar reads a .dar archive (a zip container of one or more .dalf
// payloads plus an optional Java-style manifest) and produces the raw bytes
// for the main dalf and its dependencies, ready for lf/decode.
package dar

import (
	"strconv"
	"strings"

	"github.com/daml-lf/bridge/lferrors"
)

const (
	manifestVersionKey = "Manifest-Version"
	createdByKey       = "Created-By"
	mainDalfKey        = "Main-Dalf"
	dalfsKey           = "Dalfs"
	formatKey          = "Format"
	encryptionKey      = "Encryption"

	version1Value      = "1.0"
	nonEncryptedValue   = "non-encrypted"
	damlLfFormatValue   = "daml-lf"
)

// ManifestVersion is the version of a dar manifest file.
type ManifestVersion int

const (
	ManifestVersionUnknown ManifestVersion = iota
	ManifestVersionV1
)

// ManifestFormat is the format of the dalf archives referenced by a manifest.
type ManifestFormat int

const (
	ManifestFormatUnknown ManifestFormat = iota
	ManifestFormatDamlLf
)

// EncryptionType is the encryption state of the dalf archives referenced by
// a manifest. Only NotEncrypted dars can be decoded.
type EncryptionType int

const (
	EncryptionUnknown EncryptionType = iota
	EncryptionNotEncrypted
)

// Manifest is a parsed META-INF/MANIFEST.MF from a dar file, naming the main
// dalf entry and its dependency dalf entries by zip path.
type Manifest struct {
	Version           ManifestVersion
	CreatedBy         string
	DalfMain          string
	DalfDependencies  []string
	Format            ManifestFormat
	Encryption        EncryptionType
}

// NewImpliedManifest builds a Manifest for a legacy dar that carried no
// manifest file, with its main/dependency dalfs inferred from path naming.
func NewImpliedManifest(dalfMain string, dalfDependencies []string) Manifest {
	return Manifest{
		Version:          ManifestVersionUnknown,
		CreatedBy:        "implied",
		DalfMain:         dalfMain,
		DalfDependencies: dalfDependencies,
		Format:           ManifestFormatUnknown,
		Encryption:       EncryptionUnknown,
	}
}

// ParseManifest parses the key:value lines of a META-INF/MANIFEST.MF file.
// Parsing is key-order-independent; whitespace around Dalfs entries
// (including the continuation-line wrapping Java manifests use for long
// values) is stripped.
func ParseManifest(contents string) (Manifest, error) {
	fields := parseManifestFields(contents)

	manifestVersion := ManifestVersionUnknown
	if raw, ok := fields[manifestVersionKey]; ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && strconv.FormatFloat(f, 'f', 1, 64) == version1Value {
			manifestVersion = ManifestVersionV1
		} else {
			return Manifest{}, lferrors.Errorf(lferrors.KindDecode, "unexpected value for %s, found %s", manifestVersionKey, raw)
		}
	}

	createdBy := fields[createdByKey]

	rawMain, ok := fields[mainDalfKey]
	if !ok {
		return Manifest{}, lferrors.Errorf(lferrors.KindDecode, "key %s not found", mainDalfKey)
	}
	dalfMain := stripWhitespace(rawMain)

	rawDalfs, ok := fields[dalfsKey]
	if !ok {
		return Manifest{}, lferrors.Errorf(lferrors.KindDecode, "key %s not found", dalfsKey)
	}
	var dependencies []string
	for _, entry := range strings.Split(rawDalfs, ",") {
		stripped := stripWhitespace(entry)
		if stripped == dalfMain {
			continue
		}
		dependencies = append(dependencies, stripped)
	}

	rawFormat, ok := fields[formatKey]
	if !ok {
		return Manifest{}, lferrors.Errorf(lferrors.KindDecode, "key %s not found", formatKey)
	}
	if strings.ToLower(rawFormat) != damlLfFormatValue {
		return Manifest{}, lferrors.Errorf(lferrors.KindDecode, "unsupported manifest format: %s", rawFormat)
	}

	rawEncryption, ok := fields[encryptionKey]
	if !ok {
		return Manifest{}, lferrors.Errorf(lferrors.KindDecode, "key %s not found", encryptionKey)
	}
	if strings.ToLower(rawEncryption) != nonEncryptedValue {
		return Manifest{}, lferrors.Errorf(lferrors.KindDecode, "encrypted dars are not supported: %s", rawEncryption)
	}

	return Manifest{
		Version:          manifestVersion,
		CreatedBy:        createdBy,
		DalfMain:         dalfMain,
		DalfDependencies: dependencies,
		Format:           ManifestFormatDamlLf,
		Encryption:       EncryptionNotEncrypted,
	}, nil
}

// parseManifestFields parses "Key: value" lines into a map, joining any
// continuation line (one beginning with a single leading space, per the
// Java jar manifest spec) onto the previous key's value.
func parseManifestFields(contents string) map[string]string {
	fields := make(map[string]string)
	var lastKey string
	for _, rawLine := range strings.Split(contents, "\n") {
		line := strings.TrimRight(rawLine, "\r")
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, " ") && lastKey != "" {
			fields[lastKey] += strings.TrimPrefix(line, " ")
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		fields[key] = value
		lastKey = key
	}
	return fields
}

func stripWhitespace(s string) string {
	var b strings.Builder
	for _, r := range s {
		if !strings.ContainsRune(" \t\r\n", r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
