package planner

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zamdevio/droply/pkg/plugin"
	"github.com/zamdevio/droply/pkg/registry"
)

func testCaps() *registry.Capabilities {
	return &registry.Capabilities{
		Compression: registry.CompressionSet{
			Algorithms: []plugin.Algorithm{
				plugin.AlgorithmBrotli,
				plugin.AlgorithmGzip,
				plugin.AlgorithmLZ4,
				plugin.AlgorithmSnappy,
				plugin.AlgorithmZipDeflate,
				plugin.AlgorithmZstd,
			},
			Levels: map[plugin.Algorithm]plugin.LevelRange{
				plugin.AlgorithmGzip:       {Min: 0, Max: 9, Default: 6},
				plugin.AlgorithmBrotli:     {Min: 0, Max: 11, Default: 6},
				plugin.AlgorithmZipDeflate: {Min: 0, Max: 9, Default: 6},
				plugin.AlgorithmZstd:       {Min: 1, Max: 22, Default: 3},
				plugin.AlgorithmLZ4:        {Min: 0, Max: 9, Default: 1},
				plugin.AlgorithmSnappy:     {Min: 0, Max: 0, Default: 0},
			},
		},
		Archives: registry.ArchiveSet{
			Formats: []plugin.ArchiveFormat{plugin.ArchiveTar, plugin.ArchiveZip},
			Features: map[plugin.ArchiveFormat][]string{
				plugin.ArchiveZip: {plugin.FeatureCompressInside, plugin.FeatureMetadataEmbedding},
				plugin.ArchiveTar: {plugin.FeatureMetadataEmbedding},
			},
		},
	}
}

func TestResolveSingleFileDefaults(t *testing.T) {
	res := Resolve(RawOptions{}, InputShape{}, testCaps())
	require.True(t, res.Valid)
	assert.Equal(t, KindManySingle, res.Plan.Kind)
	assert.Equal(t, plugin.ArchiveNone, res.Plan.Archive)
	assert.Equal(t, plugin.AlgorithmGzip, res.Plan.WrapperCompression)
	assert.Equal(t, 6, res.Plan.WrapperLevel)
	assert.False(t, res.Plan.EmbedMeta)
}

func TestResolveMultiFileDefaults(t *testing.T) {
	res := Resolve(RawOptions{}, InputShape{IsMulti: true}, testCaps())
	require.True(t, res.Valid)
	assert.Equal(t, KindArchived, res.Plan.Kind)
	assert.Equal(t, plugin.ArchiveZip, res.Plan.Archive)
	assert.Equal(t, plugin.AlgorithmNone, res.Plan.WrapperCompression)
	assert.True(t, res.Plan.EmbedMeta)
}

func TestResolveDirectoryDefaults(t *testing.T) {
	res := Resolve(RawOptions{}, InputShape{IsDirectory: true}, testCaps())
	require.True(t, res.Valid)
	assert.Equal(t, plugin.ArchiveZip, res.Plan.Archive)
}

func TestResolveExplicitArchiveAndAlgorithm(t *testing.T) {
	level := 9
	res := Resolve(RawOptions{Archive: "tar", Algorithm: "gzip", Level: &level},
		InputShape{IsDirectory: true}, testCaps())
	require.True(t, res.Valid)
	assert.Equal(t, KindArchived, res.Plan.Kind)
	assert.Equal(t, plugin.ArchiveTar, res.Plan.Archive)
	assert.Equal(t, plugin.AlgorithmGzip, res.Plan.WrapperCompression)
	assert.Equal(t, 9, res.Plan.WrapperLevel)
	assert.True(t, res.Plan.EmbedMeta)
}

func TestResolveZipAsCompressionRejected(t *testing.T) {
	for _, archive := range []string{"", "zip", "tar", "none"} {
		res := Resolve(RawOptions{Algorithm: "zip", Archive: archive}, InputShape{}, testCaps())
		require.False(t, res.Valid, "archive=%q", archive)
		require.NotEmpty(t, res.Errors)
		assert.Contains(t, res.Errors[0], "archive format", "archive=%q", archive)
	}

	// The canonical spelling is rejected the same way.
	res := Resolve(RawOptions{Algorithm: "zip-deflate"}, InputShape{}, testCaps())
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "archive format")
}

func TestResolveMultiWithoutArchiveModes(t *testing.T) {
	shape := InputShape{IsMulti: true}

	res := Resolve(RawOptions{Algorithm: "gzip", Mode: "each"}, shape, testCaps())
	require.True(t, res.Valid)
	assert.Equal(t, KindManySingle, res.Plan.Kind)
	assert.Equal(t, plugin.ArchiveNone, res.Plan.Archive)

	res = Resolve(RawOptions{Algorithm: "gzip", Mode: "error"}, shape, testCaps())
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "multiple inputs")
	assert.Nil(t, res.Plan)

	for _, mode := range []string{"", "bundle"} {
		res = Resolve(RawOptions{Algorithm: "gzip", Mode: mode}, shape, testCaps())
		require.True(t, res.Valid, "mode=%q", mode)
		assert.Equal(t, plugin.ArchiveZip, res.Plan.Archive, "mode=%q", mode)
	}
}

func TestResolveInvalidNames(t *testing.T) {
	res := Resolve(RawOptions{Algorithm: "lzma"}, InputShape{}, testCaps())
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "unsupported compression algorithm")
	assert.Contains(t, res.Errors[0], "gzip")

	res = Resolve(RawOptions{Archive: "rar"}, InputShape{}, testCaps())
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "unsupported archive format")

	res = Resolve(RawOptions{Mode: "sometimes"}, InputShape{}, testCaps())
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "invalid mode")
}

func TestResolveLevelBounds(t *testing.T) {
	level := 12
	res := Resolve(RawOptions{Algorithm: "gzip", Level: &level}, InputShape{}, testCaps())
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "out of range")

	level = 11
	res = Resolve(RawOptions{Algorithm: "brotli", Level: &level}, InputShape{}, testCaps())
	require.True(t, res.Valid)
	assert.Equal(t, 11, res.Plan.WrapperLevel)
}

func TestResolveCompressInside(t *testing.T) {
	res := Resolve(RawOptions{Archive: "zip", CompressInside: true}, InputShape{IsMulti: true}, testCaps())
	require.True(t, res.Valid)
	assert.True(t, res.Plan.ZipInternal.Enabled)
	assert.Equal(t, 6, res.Plan.ZipInternal.Level)
	assert.Equal(t, plugin.AlgorithmNone, res.Plan.WrapperCompression)

	level := 3
	res = Resolve(RawOptions{Archive: "zip", CompressInside: true, Level: &level},
		InputShape{IsMulti: true}, testCaps())
	require.True(t, res.Valid)
	assert.Equal(t, 3, res.Plan.ZipInternal.Level)

	// Tar has no internal compression.
	res = Resolve(RawOptions{Archive: "tar", CompressInside: true}, InputShape{IsMulti: true}, testCaps())
	require.True(t, res.Valid)
	assert.False(t, res.Plan.ZipInternal.Enabled)
}

func TestResolveMetadataEligibility(t *testing.T) {
	res := Resolve(RawOptions{Archive: "tar"}, InputShape{IsMulti: true}, testCaps())
	require.True(t, res.Valid)
	assert.True(t, res.Plan.EmbedMeta)

	res = Resolve(RawOptions{Archive: "tar", NoMeta: true}, InputShape{IsMulti: true}, testCaps())
	require.True(t, res.Valid)
	assert.False(t, res.Plan.EmbedMeta)

	res = Resolve(RawOptions{Algorithm: "gzip"}, InputShape{}, testCaps())
	require.True(t, res.Valid)
	assert.False(t, res.Plan.EmbedMeta)
}

func TestResolveWarnings(t *testing.T) {
	level := 5
	res := Resolve(RawOptions{Archive: "zip", Level: &level}, InputShape{IsMulti: true}, testCaps())
	require.True(t, res.Valid)
	assert.True(t, hasWarning(res, "level has no effect"))

	res = Resolve(RawOptions{Archive: "tar"}, InputShape{IsMulti: true}, testCaps())
	require.True(t, res.Valid)
	assert.True(t, hasWarning(res, "defaulting to none"))

	res = Resolve(RawOptions{Algorithm: "gzip", Meta: true}, InputShape{}, testCaps())
	require.True(t, res.Valid)
	assert.True(t, hasWarning(res, "cannot be embedded"))
}

// Totality: every combination either yields a plan or non-empty errors, and
// Resolve never panics.
func TestResolveTotality(t *testing.T) {
	algorithms := []string{"", "gzip", "brotli", "zip", "zstd", "bogus"}
	archives := []string{"", "zip", "tar", "none", "bogus"}
	modes := []string{"", "each", "bundle", "error", "bogus"}
	levels := []*int{nil, intp(-1), intp(0), intp(6), intp(99)}
	shapes := []InputShape{{}, {IsMulti: true}, {IsDirectory: true}, {IsMulti: true, IsDirectory: true}}

	caps := testCaps()
	for _, algo := range algorithms {
		for _, archive := range archives {
			for _, mode := range modes {
				for _, level := range levels {
					for _, shape := range shapes {
						raw := RawOptions{Algorithm: algo, Archive: archive, Mode: mode, Level: level}
						res := Resolve(raw, shape, caps)
						label := fmt.Sprintf("algo=%q archive=%q mode=%q", algo, archive, mode)
						if res.Valid {
							require.NotNil(t, res.Plan, label)
							require.Empty(t, res.Errors, label)
						} else {
							require.NotEmpty(t, res.Errors, label)
						}
					}
				}
			}
		}
	}
}

func hasWarning(res ValidationResult, substr string) bool {
	for _, w := range res.Warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func intp(v int) *int { return &v }
