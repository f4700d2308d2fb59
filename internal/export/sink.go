package export

import (
	"context"
	"os"
	"path/filepath"
)

// Sink receives the finished document bytes. Both the CLI and the HTTP API
// write to a directory; the API then serves the file through a download URL.
type Sink interface {
	Write(ctx context.Context, filename string, data []byte) error
}

// DirSink writes documents into a directory, creating it if needed.
type DirSink struct {
	Dir string
}

func (s *DirSink) Write(ctx context.Context, filename string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.Dir, filename), data, 0644)
}

// BufferSink captures the document in memory.
type BufferSink struct {
	Filename string
	Data     []byte
}

func (s *BufferSink) Write(ctx context.Context, filename string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Filename = filename
	s.Data = data
	return nil
}
