package backend

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"

	"github.com/zamdevio/droply/pkg/plugin"
)

// BrotliLevels is the level range advertised for brotli.
var BrotliLevels = plugin.LevelRange{Min: 0, Max: 11, Default: 6}

// Brotli implements brotli compression.
type Brotli struct{}

func (Brotli) Compress(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	bw := brotli.NewWriterLevel(&buf, BrotliLevels.Clamp(level))
	if _, err := bw.Write(data); err != nil {
		return nil, fmt.Errorf("brotli compress: %w", err)
	}
	if err := bw.Close(); err != nil {
		return nil, fmt.Errorf("brotli close: %w", err)
	}
	return buf.Bytes(), nil
}

func (Brotli) Decompress(data []byte) ([]byte, error) {
	out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("brotli decompress: %w", err)
	}
	return out, nil
}
