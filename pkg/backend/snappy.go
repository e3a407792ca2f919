package backend

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"

	"github.com/zamdevio/droply/pkg/plugin"
)

// SnappyLevels is the level range advertised for snappy, which has no levels.
var SnappyLevels = plugin.LevelRange{Min: 0, Max: 0, Default: 0}

// Snappy implements snappy framed-stream compression. The level argument is
// ignored.
type Snappy struct{}

func (Snappy) Compress(data []byte, _ int) ([]byte, error) {
	var buf bytes.Buffer
	sw := snappy.NewBufferedWriter(&buf)
	if _, err := sw.Write(data); err != nil {
		return nil, fmt.Errorf("snappy compress: %w", err)
	}
	if err := sw.Close(); err != nil {
		return nil, fmt.Errorf("snappy close: %w", err)
	}
	return buf.Bytes(), nil
}

func (Snappy) Decompress(data []byte) ([]byte, error) {
	out, err := io.ReadAll(snappy.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("snappy decompress: %w", err)
	}
	return out, nil
}
