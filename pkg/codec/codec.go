// Package codec provides the uniform compress/decompress and pack/unpack
// adapters over loaded plugin handles. Adapters are pure delegation: no
// retries, no caching, no error suppression, so upstream code never depends
// on which resolution path produced a backend.
package codec

import (
	"errors"

	"github.com/zamdevio/droply/pkg/loader"
	"github.com/zamdevio/droply/pkg/plugin"
)

var (
	ErrNotCompression = errors.New("droply: handle does not expose a compression backend")
	ErrNotArchive     = errors.New("droply: handle does not expose an archive backend")
)

// Compressor wraps a compression handle.
type Compressor struct {
	handle *loader.Handle
}

// NewCompressor validates and wraps a handle.
func NewCompressor(h *loader.Handle) (*Compressor, error) {
	if h == nil || h.Compression == nil {
		return nil, ErrNotCompression
	}
	return &Compressor{handle: h}, nil
}

// Info returns the backend's registration info.
func (c *Compressor) Info() plugin.Info { return c.handle.Info }

// Compress delegates to the backend.
func (c *Compressor) Compress(data []byte, level int) ([]byte, error) {
	return c.handle.Compression.Compress(data, level)
}

// Decompress delegates to the backend.
func (c *Compressor) Decompress(data []byte) ([]byte, error) {
	return c.handle.Compression.Decompress(data)
}

// Archiver wraps an archive handle.
type Archiver struct {
	handle *loader.Handle
}

// NewArchiver validates and wraps a handle.
func NewArchiver(h *loader.Handle) (*Archiver, error) {
	if h == nil || h.Archive == nil {
		return nil, ErrNotArchive
	}
	return &Archiver{handle: h}, nil
}

// Info returns the backend's registration info.
func (a *Archiver) Info() plugin.Info { return a.handle.Info }

// Pack delegates to the backend.
func (a *Archiver) Pack(files []plugin.FileTuple, opts plugin.PackOptions) ([]byte, error) {
	return a.handle.Archive.Pack(files, opts)
}

// Unpack delegates to the backend.
func (a *Archiver) Unpack(data []byte) ([]plugin.FileTuple, error) {
	return a.handle.Archive.Unpack(data)
}
