package backend

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"github.com/zamdevio/droply/pkg/plugin"
)

// Zip implements the zip archive format. Entries are stored uncompressed
// unless PackOptions.CompressInside is set, in which case deflate is used at
// the requested level.
type Zip struct{}

func (Zip) Pack(files []plugin.FileTuple, opts plugin.PackOptions) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	method := uint16(zip.Store)
	if opts.CompressInside {
		method = zip.Deflate
		level := DeflateLevels.Clamp(opts.Level)
		zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, level)
		})
	}

	now := time.Now()
	for _, file := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     file.Name,
			Method:   method,
			Modified: now,
		})
		if err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", file.Name, err)
		}
		if _, err := w.Write(file.Data); err != nil {
			return nil, fmt.Errorf("zip write %s: %w", file.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip close: %w", err)
	}
	return buf.Bytes(), nil
}

func (Zip) Unpack(data []byte) ([]plugin.FileTuple, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("zip open: %w", err)
	}

	files := make([]plugin.FileTuple, 0, len(zr.File))
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", entry.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("zip read %s: %w", entry.Name, err)
		}
		files = append(files, plugin.FileTuple{Name: entry.Name, Data: content})
	}
	return files, nil
}
