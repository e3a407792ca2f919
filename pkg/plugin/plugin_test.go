package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompression struct{}

func (fakeCompression) Compress(data []byte, _ int) ([]byte, error) { return data, nil }
func (fakeCompression) Decompress(data []byte) ([]byte, error)      { return data, nil }

type fakeArchive struct{}

func (fakeArchive) Pack(files []FileTuple, _ PackOptions) ([]byte, error) { return nil, nil }
func (fakeArchive) Unpack(data []byte) ([]FileTuple, error)               { return nil, nil }

func TestConventionalPath(t *testing.T) {
	assert.Equal(t, "droply/native/compression/gzip",
		ConventionalPath(PlatformNative, KindCompression, "gzip"))
	assert.Equal(t, "droply/web/archive/zip",
		ConventionalPath(PlatformWeb, KindArchive, "zip"))
}

func TestTableRegisterAndFind(t *testing.T) {
	table := NewTable()
	reg := &Registration{
		Info:        Info{Name: "gzip", Kind: KindCompression},
		Compression: fakeCompression{},
	}
	require.NoError(t, table.Register(PlatformNative, reg))

	got, ok := table.Find(PlatformNative, KindCompression, "gzip")
	require.True(t, ok)
	assert.Same(t, reg, got)

	_, ok = table.Find(PlatformNodejs, KindCompression, "gzip")
	assert.False(t, ok)

	err := table.Register(PlatformNative, reg)
	assert.ErrorIs(t, err, ErrDuplicateRegistration)
	assert.Equal(t, 1, table.Len())
}

func TestTableRejectsMismatchedRegistration(t *testing.T) {
	table := NewTable()

	err := table.Register(PlatformNative, &Registration{
		Info: Info{Name: "gzip", Kind: KindCompression},
	})
	assert.ErrorIs(t, err, ErrInvalidRegistration)

	err = table.Register(PlatformNative, &Registration{
		Info:        Info{Name: "zip", Kind: KindArchive},
		Compression: fakeCompression{},
	})
	assert.ErrorIs(t, err, ErrInvalidRegistration)

	err = table.Register(PlatformNative, &Registration{
		Info:    Info{Name: "odd", Kind: Kind("neither")},
		Archive: fakeArchive{},
	})
	assert.ErrorIs(t, err, ErrInvalidRegistration)
}

func TestTableEntriesSorted(t *testing.T) {
	table := NewTable()
	for _, name := range []string{"zstd", "brotli", "gzip"} {
		require.NoError(t, table.Register(PlatformNative, &Registration{
			Info:        Info{Name: name, Kind: KindCompression},
			Compression: fakeCompression{},
		}))
	}

	entries := table.Entries(PlatformNative, KindCompression)
	require.Len(t, entries, 3)
	assert.Equal(t, "brotli", entries[0].Info.Name)
	assert.Equal(t, "gzip", entries[1].Info.Name)
	assert.Equal(t, "zstd", entries[2].Info.Name)
}

func TestParseAlgorithmAliases(t *testing.T) {
	tests := []struct {
		in   string
		want Algorithm
		ok   bool
	}{
		{"gzip", AlgorithmGzip, true},
		{"gz", AlgorithmGzip, true},
		{"GZIP", AlgorithmGzip, true},
		{"brotli", AlgorithmBrotli, true},
		{"br", AlgorithmBrotli, true},
		{"zip", AlgorithmZipDeflate, true},
		{"deflate", AlgorithmZipDeflate, true},
		{"zip-deflate", AlgorithmZipDeflate, true},
		{"zstd", AlgorithmZstd, true},
		{"lz4", AlgorithmLZ4, true},
		{"sz", AlgorithmSnappy, true},
		{"", AlgorithmNone, true},
		{"none", AlgorithmNone, true},
		{"lzma", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseAlgorithm(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestParsePlatform(t *testing.T) {
	p, ok := ParsePlatform("Native")
	require.True(t, ok)
	assert.Equal(t, PlatformNative, p)

	_, ok = ParsePlatform("ios")
	assert.False(t, ok)
}

func TestLevelRange(t *testing.T) {
	r := LevelRange{Min: 1, Max: 22, Default: 3}
	assert.True(t, r.Contains(1))
	assert.True(t, r.Contains(22))
	assert.False(t, r.Contains(0))
	assert.False(t, r.Contains(23))
	assert.Equal(t, 1, r.Clamp(-5))
	assert.Equal(t, 22, r.Clamp(100))
	assert.Equal(t, 7, r.Clamp(7))
}

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(`{
		"name": "droply-plugin-gzip",
		"version": "1.2.0",
		"type": "compression",
		"platform": "nodejs",
		"algorithm": "gzip",
		"capabilities": {"compression": true},
		"compression_levels": {"min": 0, "max": 9, "default": 6}
	}`))
	require.NoError(t, err)
	assert.Equal(t, KindCompression, m.Kind())
	assert.Equal(t, "gzip", m.Subject())
	assert.Equal(t, "gzip", m.Binding())
	require.NotNil(t, m.Levels)
	assert.Equal(t, 6, m.Levels.Default)

	m, err = ParseManifest([]byte(`{
		"name": "droply-plugin-tar",
		"version": "1.0.0",
		"type": "archive",
		"platform": "web",
		"format": "tar",
		"module": "tar-stream",
		"capabilities": {"archiving": true, "metadata_embedding": true}
	}`))
	require.NoError(t, err)
	assert.Equal(t, KindArchive, m.Kind())
	assert.Equal(t, "tar", m.Subject())
	assert.Equal(t, "tar-stream", m.Binding())

	_, err = ParseManifest([]byte(`{"name": "x", "type": "compression"}`))
	assert.Error(t, err)
	_, err = ParseManifest([]byte(`{"name": "x", "type": "archive"}`))
	assert.Error(t, err)
	_, err = ParseManifest([]byte(`{"name": "x", "type": "mystery"}`))
	assert.Error(t, err)
}

func TestParseRegistryDoc(t *testing.T) {
	doc, err := ParseRegistryDoc([]byte(`{
		"version": 1,
		"platforms": {
			"web": {
				"compression": {"gzip": {"name": "gzip", "version": "1.0.0"}},
				"archives": {}
			}
		}
	}`))
	require.NoError(t, err)
	require.Contains(t, doc.Platforms, "web")
	assert.Equal(t, "gzip", doc.Platforms["web"].Compression["gzip"].Name)

	_, err = ParseRegistryDoc([]byte(`{"version": 1, "platforms": {}}`))
	assert.Error(t, err)
}
