package backend

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/zamdevio/droply/pkg/plugin"
)

// Tar implements the tar archive format. Tar has no internal compression, so
// PackOptions are ignored; wrapper compression over the whole stream is the
// planner's concern.
type Tar struct{}

func (Tar) Pack(files []plugin.FileTuple, _ plugin.PackOptions) ([]byte, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	now := time.Now()
	for _, file := range files {
		hdr := &tar.Header{
			Name:    file.Name,
			Mode:    0o644,
			Size:    int64(len(file.Data)),
			ModTime: now,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, fmt.Errorf("tar header %s: %w", file.Name, err)
		}
		if _, err := tw.Write(file.Data); err != nil {
			return nil, fmt.Errorf("tar write %s: %w", file.Name, err)
		}
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("tar close: %w", err)
	}
	return buf.Bytes(), nil
}

func (Tar) Unpack(data []byte) ([]plugin.FileTuple, error) {
	tr := tar.NewReader(bytes.NewReader(data))

	var files []plugin.FileTuple
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tar next: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("tar read %s: %w", hdr.Name, err)
		}
		files = append(files, plugin.FileTuple{Name: hdr.Name, Data: content})
	}
	return files, nil
}
