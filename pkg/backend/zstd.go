package backend

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/zamdevio/droply/pkg/plugin"
)

// ZstdLevels is the level range advertised for zstd.
var ZstdLevels = plugin.LevelRange{Min: 1, Max: 22, Default: 3}

// Zstd implements zstd compression.
type Zstd struct{}

func (Zstd) Compress(data []byte, level int) ([]byte, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(ZstdLevels.Clamp(level))))
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	out := enc.EncodeAll(data, nil)
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("zstd close: %w", err)
	}
	return out, nil
}

func (Zstd) Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return out, nil
}
