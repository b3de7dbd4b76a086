package dar_test

import (
	"strings"
	"testing"

	"github.com/daml-lf/bridge/lf/dar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trimMargin(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		trimmed := strings.TrimLeft(l, " \t")
		out = append(out, strings.TrimPrefix(trimmed, "|"))
	}
	return strings.TrimPrefix(strings.Join(out, "\n"), "\n")
}

func TestParseManifestSplitsDalfsAndJoinsContinuation(t *testing.T) {
	manifestStr := trimMargin(`
		|Manifest-Version: 1.0
		|Created-By: Digital Asset packager (DAML-GHC)
		|Main-Dalf: com.digitalasset.daml.lf.archive:DarReaderTest:0.1.dalf
		|Dalfs: com.digitalasset.daml.lf.archive:DarReaderTest:0.1.dalf, daml-pri
		| m.dalf
		|Format: daml-lf
		|Encryption: non-encrypted`)

	m, err := dar.ParseManifest(manifestStr)
	require.NoError(t, err)
	assert.Equal(t, dar.ManifestVersionV1, m.Version)
	assert.Equal(t, "Digital Asset packager (DAML-GHC)", m.CreatedBy)
	assert.Equal(t, "com.digitalasset.daml.lf.archive:DarReaderTest:0.1.dalf", m.DalfMain)
	assert.Equal(t, []string{"daml-prim.dalf"}, m.DalfDependencies)
	assert.Equal(t, dar.ManifestFormatDamlLf, m.Format)
	assert.Equal(t, dar.EncryptionNotEncrypted, m.Encryption)
}

func TestParseManifestMultipleDalfsExcludesMain(t *testing.T) {
	manifestStr := trimMargin(`
		|Main-Dalf: A.dalf
		|Dalfs: B.dalf, C.dalf, A.dalf, E.dalf
		|Format: daml-lf
		|Encryption: non-encrypted`)

	m, err := dar.ParseManifest(manifestStr)
	require.NoError(t, err)
	assert.Equal(t, dar.ManifestVersionUnknown, m.Version)
	assert.Equal(t, "", m.CreatedBy)
	assert.Equal(t, "A.dalf", m.DalfMain)
	assert.Equal(t, []string{"B.dalf", "C.dalf", "E.dalf"}, m.DalfDependencies)
}

func TestParseManifestSingleMainDalfHasNoDependencies(t *testing.T) {
	manifestStr := trimMargin(`
		|Main-Dalf: A.dalf
		|Dalfs: A.dalf
		|Format: daml-lf
		|Encryption: non-encrypted`)

	m, err := dar.ParseManifest(manifestStr)
	require.NoError(t, err)
	assert.Empty(t, m.DalfDependencies)
}

func TestParseManifestRejectsUnknownFormat(t *testing.T) {
	manifestStr := trimMargin(`
		|Main-Dalf: A.dalf
		|Dalfs: B.dalf, C.dalf, A.dalf, E.dalf
		|Format: anything-different-from-daml-lf
		|Encryption: non-encrypted`)

	_, err := dar.ParseManifest(manifestStr)
	assert.Error(t, err)
}

func TestParseManifestRejectsEncryptedDar(t *testing.T) {
	manifestStr := trimMargin(`
		|Main-Dalf: A.dalf
		|Dalfs: A.dalf
		|Format: daml-lf
		|Encryption: some-encryption-scheme`)

	_, err := dar.ParseManifest(manifestStr)
	assert.Error(t, err)
}

func TestParseManifestMissingMainDalfKey(t *testing.T) {
	manifestStr := trimMargin(`
		|Dalfs: A.dalf
		|Format: daml-lf
		|Encryption: non-encrypted`)

	_, err := dar.ParseManifest(manifestStr)
	assert.Error(t, err)
}
