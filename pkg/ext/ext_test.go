package ext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zamdevio/droply/pkg/plugin"
)

func TestGenerateParseRoundTrip(t *testing.T) {
	archives := []plugin.ArchiveFormat{plugin.ArchiveNone, plugin.ArchiveZip, plugin.ArchiveTar}
	algorithms := []plugin.Algorithm{
		plugin.AlgorithmNone,
		plugin.AlgorithmGzip,
		plugin.AlgorithmBrotli,
		plugin.AlgorithmZstd,
		plugin.AlgorithmLZ4,
		plugin.AlgorithmSnappy,
		plugin.AlgorithmZipDeflate,
	}

	for _, archive := range archives {
		for _, algo := range algorithms {
			gen, err := Generate("report", archive, algo)
			if err != nil {
				// The only pairings without a filename form are zip-deflate
				// outside a tar wrapper.
				require.ErrorIs(t, err, ErrUnsupportedPairing)
				require.Equal(t, plugin.AlgorithmZipDeflate, algo)
				require.NotEqual(t, plugin.ArchiveTar, archive)
				continue
			}
			if archive == plugin.ArchiveNone && algo == plugin.AlgorithmNone {
				assert.Equal(t, "report", gen.FullName)
				continue
			}

			parsed := Parse(gen.FullName)
			assert.Equal(t, archive, parsed.Archive, "round-trip archive for %s", gen.FullName)
			assert.Equal(t, algo, parsed.Compression, "round-trip compression for %s", gen.FullName)
			assert.Equal(t, "report", parsed.Base, "round-trip base for %s", gen.FullName)
		}
	}
}

func TestGenerateKnownNames(t *testing.T) {
	tests := []struct {
		archive plugin.ArchiveFormat
		algo    plugin.Algorithm
		want    string
	}{
		{plugin.ArchiveNone, plugin.AlgorithmGzip, "data.gz"},
		{plugin.ArchiveNone, plugin.AlgorithmBrotli, "data.br"},
		{plugin.ArchiveNone, plugin.AlgorithmZstd, "data.zst"},
		{plugin.ArchiveTar, plugin.AlgorithmNone, "data.tar"},
		{plugin.ArchiveTar, plugin.AlgorithmGzip, "data.tar.gz"},
		{plugin.ArchiveTar, plugin.AlgorithmZipDeflate, "data.tar.zip"},
		{plugin.ArchiveZip, plugin.AlgorithmNone, "data.zip"},
		{plugin.ArchiveZip, plugin.AlgorithmBrotli, "data.zip.br"},
		{plugin.ArchiveZip, plugin.AlgorithmSnappy, "data.zip.sz"},
	}
	for _, tt := range tests {
		gen, err := Generate("data", tt.archive, tt.algo)
		require.NoError(t, err)
		assert.Equal(t, tt.want, gen.FullName)
	}
}

func TestParseLongestSuffixWins(t *testing.T) {
	parsed := Parse("backup.tar.gz")
	assert.Equal(t, plugin.ArchiveTar, parsed.Archive)
	assert.Equal(t, plugin.AlgorithmGzip, parsed.Compression)
	assert.Equal(t, "backup", parsed.Base)

	parsed = Parse("site.zip.zst")
	assert.Equal(t, plugin.ArchiveZip, parsed.Archive)
	assert.Equal(t, plugin.AlgorithmZstd, parsed.Compression)

	// Bare .gz must still work when no archive suffix precedes it.
	parsed = Parse("notes.txt.gz")
	assert.Equal(t, plugin.ArchiveNone, parsed.Archive)
	assert.Equal(t, plugin.AlgorithmGzip, parsed.Compression)
	assert.Equal(t, "notes.txt", parsed.Base)
}

func TestParseTgzAlias(t *testing.T) {
	parsed := Parse("dump.tgz")
	assert.Equal(t, plugin.ArchiveTar, parsed.Archive)
	assert.Equal(t, plugin.AlgorithmGzip, parsed.Compression)
	assert.Equal(t, "dump", parsed.Base)
}

func TestParseIsTotal(t *testing.T) {
	for _, name := range []string{"", "noext", "weird.xyz", "trailing.", ".hidden", "a.b.c.unknown"} {
		parsed := Parse(name)
		assert.Equal(t, plugin.ArchiveNone, parsed.Archive, "name %q", name)
		assert.Equal(t, plugin.AlgorithmNone, parsed.Compression, "name %q", name)
		assert.Equal(t, name, parsed.Base, "name %q", name)
	}
}

func TestParseCaseInsensitive(t *testing.T) {
	parsed := Parse("REPORT.TAR.GZ")
	assert.Equal(t, plugin.ArchiveTar, parsed.Archive)
	assert.Equal(t, plugin.AlgorithmGzip, parsed.Compression)
	assert.Equal(t, "REPORT", parsed.Base)
}

func TestValidate(t *testing.T) {
	assert.True(t, Validate("a.tar.gz").Valid)
	assert.True(t, Validate("a.zip").Valid)

	res := Validate("")
	assert.False(t, res.Valid)
	require.NotEmpty(t, res.Errors)

	res = Validate("plain.txt")
	assert.False(t, res.Valid)

	// Recognized suffix with nothing in front of it.
	res = Validate(".tar.gz")
	assert.False(t, res.Valid)
}

func TestGenerateZipDeflateRequiresTar(t *testing.T) {
	_, err := Generate("x", plugin.ArchiveNone, plugin.AlgorithmZipDeflate)
	assert.ErrorIs(t, err, ErrUnsupportedPairing)

	_, err = Generate("x", plugin.ArchiveZip, plugin.AlgorithmZipDeflate)
	assert.ErrorIs(t, err, ErrUnsupportedPairing)

	gen, err := Generate("x", plugin.ArchiveTar, plugin.AlgorithmZipDeflate)
	require.NoError(t, err)
	assert.Equal(t, "x.tar.zip", gen.FullName)
}
