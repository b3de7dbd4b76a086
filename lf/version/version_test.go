package version_test

import (
	"testing"

	"github.com/daml-lf/bridge/lf/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinorVersionOrdering(t *testing.T) {
	assert.True(t, version.MinorV0 < version.MinorV1)
	assert.True(t, version.MinorV7 < version.MinorV8)
	assert.True(t, version.MinorV8 < version.MinorV11)
	assert.True(t, version.MinorV11 < version.MinorDev)
}

func TestVersionOrdering(t *testing.T) {
	assert.True(t, version.V0.Less(version.V1_0))
	assert.True(t, version.V1_0.Less(version.V1_1))
	assert.True(t, version.V1_8.Less(version.V1_11))
	assert.True(t, version.V1_11.Less(version.V1Dev))
	assert.False(t, version.V1_7.Less(version.V1_6))
}

func TestDisplayVersion(t *testing.T) {
	assert.Equal(t, "v0", version.V0.String())
	assert.Equal(t, "v1.7", version.V1_7.String())
	assert.Equal(t, "v1.dev", version.V1Dev.String())
	assert.Equal(t, "v2.1", version.V2_1.String())
}

func TestV2SortsAboveEveryV1(t *testing.T) {
	assert.True(t, version.V1Dev.Less(version.V2_1))
	assert.True(t, version.V1_0.Less(version.V2_1))
}

func TestParseMinor(t *testing.T) {
	m, err := version.ParseMinor("11")
	require.NoError(t, err)
	assert.Equal(t, version.MinorV11, m)

	_, err = version.ParseMinor("bogus")
	assert.Error(t, err)
}

func TestSupportsFeature(t *testing.T) {
	assert.True(t, version.V1_7.Supports(version.FeatureInternedStrings))
	assert.False(t, version.V1_6.Supports(version.FeatureInternedStrings))
	assert.True(t, version.V1_11.Supports(version.FeatureChoiceObservers))
}
