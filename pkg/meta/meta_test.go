package meta

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zamdevio/droply/pkg/plugin"
)

func TestComposeTotalsAndRatio(t *testing.T) {
	start := time.Now()
	m := Compose(OperationDescriptor{
		Operation:  "compress",
		Archive:    plugin.ArchiveNone,
		Algorithm:  plugin.AlgorithmGzip,
		StartedAt:  start,
		FinishedAt: start.Add(120 * time.Millisecond),
		Files: []FileMeta{
			{Name: "a.txt", OriginalSize: 1000, CompressedSize: 250},
			{Name: "b.txt", OriginalSize: 1000, CompressedSize: 250},
		},
	})

	require.NotEmpty(t, m.ID)
	assert.Equal(t, 2000, m.Totals.Original)
	assert.Equal(t, 500, m.Totals.Compressed)
	assert.InDelta(t, 0.75, m.Totals.Ratio, 1e-9)
	assert.Equal(t, int64(120), m.DurationMs)
	assert.Equal(t, MinConsumerVersion, m.Compatibility.MinConsumerVersion)
	assert.Contains(t, m.Environment.Runtime, "go")
}

func TestComposeCompressedTotalOverride(t *testing.T) {
	m := Compose(OperationDescriptor{
		Operation: "compress",
		Archive:   plugin.ArchiveZip,
		Files: []FileMeta{
			{Name: "a", OriginalSize: 100, CompressedSize: 100},
			{Name: "b", OriginalSize: 100, CompressedSize: 100},
		},
		CompressedTotal: 60,
	})
	assert.Equal(t, 200, m.Totals.Original)
	assert.Equal(t, 60, m.Totals.Compressed)
	assert.InDelta(t, 0.7, m.Totals.Ratio, 1e-9)
}

func TestComposeNegativeRatioWhenOutputGrows(t *testing.T) {
	m := Compose(OperationDescriptor{
		Files: []FileMeta{{Name: "tiny", OriginalSize: 10, CompressedSize: 40}},
	})
	assert.Less(t, m.Totals.Ratio, 0.0)
}

func TestComposeEmptyInputs(t *testing.T) {
	m := Compose(OperationDescriptor{Operation: "compress"})
	assert.Zero(t, m.Totals.Original)
	assert.Zero(t, m.Totals.Ratio)
}

func TestReservedPathDefaults(t *testing.T) {
	assert.Equal(t, ".droply/__droply_meta.json", ReservedPath("", ""))
	assert.Equal(t, "custom/meta.json", ReservedPath("custom", "meta.json"))
}

func TestGuardSpoofing(t *testing.T) {
	files := []plugin.FileTuple{{Name: ".droply/__droply_meta.json"}}
	err := GuardSpoofing(files, "", "", false)
	require.ErrorIs(t, err, ErrSpoofingDetected)
	assert.Contains(t, err.Error(), "--allow-user-meta")

	// Anything under the reserved directory counts.
	err = GuardSpoofing([]plugin.FileTuple{{Name: ".droply/evil.json"}}, "", "", false)
	assert.ErrorIs(t, err, ErrSpoofingDetected)

	// Windows-style separators and redundant path elements do not evade the
	// guard.
	err = GuardSpoofing([]plugin.FileTuple{{Name: `.droply\__droply_meta.json`}}, "", "", false)
	assert.ErrorIs(t, err, ErrSpoofingDetected)
	err = GuardSpoofing([]plugin.FileTuple{{Name: "./.droply/../.droply/x"}}, "", "", false)
	assert.ErrorIs(t, err, ErrSpoofingDetected)

	assert.NoError(t, GuardSpoofing([]plugin.FileTuple{{Name: "normal.txt"}}, "", "", false))
	assert.NoError(t, GuardSpoofing([]plugin.FileTuple{{Name: "droply.txt"}}, "", "", false))

	// Explicit opt-out.
	assert.NoError(t, GuardSpoofing(files, "", "", true))

	// Custom reserved location shifts the guard with it.
	err = GuardSpoofing([]plugin.FileTuple{{Name: "custom/meta.json"}}, "custom", "meta.json", false)
	assert.ErrorIs(t, err, ErrSpoofingDetected)
	assert.NoError(t, GuardSpoofing([]plugin.FileTuple{{Name: ".droply/anything"}}, "custom", "meta.json", false))
}

func TestEncodeDecodeJSON(t *testing.T) {
	m := Compose(OperationDescriptor{
		Operation: "compress",
		Archive:   plugin.ArchiveTar,
		Algorithm: plugin.AlgorithmBrotli,
		Files:     []FileMeta{{Name: "a", OriginalSize: 10, CompressedSize: 5}},
		Backends:  []string{"tar", "brotli"},
	})

	doc, err := m.EncodeJSON()
	require.NoError(t, err)

	decoded, err := DecodeJSON(doc)
	require.NoError(t, err)
	assert.Equal(t, m.ID, decoded.ID)
	assert.Equal(t, plugin.ArchiveTar, decoded.Archive)
	assert.Equal(t, m.Compatibility.Backends, decoded.Compatibility.Backends)

	_, err = DecodeJSON([]byte("{broken"))
	assert.Error(t, err)
}

func TestRenderText(t *testing.T) {
	m := Compose(OperationDescriptor{
		Operation: "compress",
		Archive:   plugin.ArchiveZip,
		Algorithm: plugin.AlgorithmNone,
		Files:     []FileMeta{{Name: "a.txt", OriginalSize: 2048, CompressedSize: 1024, Method: "store"}},
	})

	out := m.RenderText()
	assert.Contains(t, out, "compress")
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "store")
	assert.Contains(t, out, "saved")
}
