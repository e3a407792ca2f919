package backend

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/zamdevio/droply/pkg/plugin"
)

// LZ4Levels is the level range advertised for lz4. Level 0 selects the fast
// path; 1-9 map onto the high-compression levels.
var LZ4Levels = plugin.LevelRange{Min: 0, Max: 9, Default: 1}

// LZ4 implements lz4 frame compression.
type LZ4 struct{}

var lz4LevelTable = map[int]lz4.CompressionLevel{
	0: lz4.Fast,
	1: lz4.Level1,
	2: lz4.Level2,
	3: lz4.Level3,
	4: lz4.Level4,
	5: lz4.Level5,
	6: lz4.Level6,
	7: lz4.Level7,
	8: lz4.Level8,
	9: lz4.Level9,
}

func (LZ4) Compress(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if err := zw.Apply(lz4.CompressionLevelOption(lz4LevelTable[LZ4Levels.Clamp(level)])); err != nil {
		return nil, fmt.Errorf("lz4 level: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("lz4 close: %w", err)
	}
	return buf.Bytes(), nil
}

func (LZ4) Decompress(data []byte) ([]byte, error) {
	out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	return out, nil
}
