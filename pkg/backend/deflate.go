package backend

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/zamdevio/droply/pkg/plugin"
)

// DeflateLevels is the level range advertised for zip-deflate. The same range
// governs zip archive-internal compression.
var DeflateLevels = plugin.LevelRange{Min: 0, Max: 9, Default: 6}

// Deflate implements a raw deflate stream, the codec zip uses for its
// archive-internal compression. It is registered so the registry can answer
// level queries for zip-deflate; the planner never allows it as a wrapper.
type Deflate struct{}

func (Deflate) Compress(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, DeflateLevels.Clamp(level))
	if err != nil {
		return nil, fmt.Errorf("deflate writer: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, fmt.Errorf("deflate compress: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, fmt.Errorf("deflate close: %w", err)
	}
	return buf.Bytes(), nil
}

func (Deflate) Decompress(data []byte) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(data))
	defer fr.Close()
	out, err := io.ReadAll(fr)
	if err != nil {
		return nil, fmt.Errorf("deflate decompress: %w", err)
	}
	return out, nil
}
