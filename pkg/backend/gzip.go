// Package backend provides the compiled-in native compression and archive
// backends and registers them in the plugin table. Each backend normalizes a
// third-party codec into the uniform CompressionBackend/ArchiveBackend shape.
package backend

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/zamdevio/droply/pkg/plugin"
)

// GzipLevels is the level range advertised for gzip.
var GzipLevels = plugin.LevelRange{Min: 0, Max: 9, Default: 6}

// Gzip implements gzip compression using the standard library.
type Gzip struct{}

func (Gzip) Compress(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, GzipLevels.Clamp(level))
	if err != nil {
		return nil, fmt.Errorf("gzip writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip close: %w", err)
	}
	return buf.Bytes(), nil
}

func (Gzip) Decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("gzip decompress: %w", err)
	}
	return out, nil
}
