package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zamdevio/droply/pkg/backend"
	"github.com/zamdevio/droply/pkg/loader"
	"github.com/zamdevio/droply/pkg/plugin"
)

func TestNewCompressorValidation(t *testing.T) {
	_, err := NewCompressor(nil)
	assert.ErrorIs(t, err, ErrNotCompression)

	_, err = NewCompressor(&loader.Handle{Archive: backend.Zip{}})
	assert.ErrorIs(t, err, ErrNotCompression)

	c, err := NewCompressor(&loader.Handle{
		Info:        plugin.Info{Name: "gzip"},
		Compression: backend.Gzip{},
	})
	require.NoError(t, err)
	assert.Equal(t, "gzip", c.Info().Name)
}

func TestNewArchiverValidation(t *testing.T) {
	_, err := NewArchiver(nil)
	assert.ErrorIs(t, err, ErrNotArchive)

	_, err = NewArchiver(&loader.Handle{Compression: backend.Gzip{}})
	assert.ErrorIs(t, err, ErrNotArchive)
}

func TestCompressorDelegates(t *testing.T) {
	c, err := NewCompressor(&loader.Handle{Compression: backend.Gzip{}})
	require.NoError(t, err)

	data := []byte("delegation, not interpretation")
	compressed, err := c.Compress(data, 6)
	require.NoError(t, err)
	restored, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, data, restored)
}

type failingArchive struct{}

var errPackBroken = errors.New("pack broken")

func (failingArchive) Pack([]plugin.FileTuple, plugin.PackOptions) ([]byte, error) {
	return nil, errPackBroken
}
func (failingArchive) Unpack([]byte) ([]plugin.FileTuple, error) { return nil, errPackBroken }

// Backend errors pass through untouched: the adapter never retries or
// rewrites them.
func TestArchiverPropagatesErrors(t *testing.T) {
	a, err := NewArchiver(&loader.Handle{Archive: failingArchive{}})
	require.NoError(t, err)

	_, err = a.Pack(nil, plugin.PackOptions{})
	assert.ErrorIs(t, err, errPackBroken)
	_, err = a.Unpack(nil)
	assert.ErrorIs(t, err, errPackBroken)
}
