package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
)

const (
	jsonExt       = ".json"
	compressedExt = ".json.sz"
)

// FileSink writes one JSON file per report into a directory
type FileSink struct {
	dir      string
	compress bool
}

// NewFileSink creates dir if needed. With compress set, files are
// snappy-encoded and named <tree>.json.sz.
func NewFileSink(dir string, compress bool) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	return &FileSink{dir: dir, compress: compress}, nil
}

// Name implements Sink
func (s *FileSink) Name() string {
	return "file"
}

// Path returns where r is stored
func (s *FileSink) Path(r *Report) string {
	ext := jsonExt
	if s.compress {
		ext = compressedExt
	}
	return filepath.Join(s.dir, r.Name()+"-"+r.ID.String()+ext)
}

// Put implements Sink. The file is written to a temporary name and renamed
// so readers never observe a partial report.
func (s *FileSink) Put(ctx context.Context, r *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Marshal(r)
	if err != nil {
		return err
	}
	if s.compress {
		data = snappy.Encode(nil, data)
	}

	path := s.Path(r)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}

// ReadFile loads a report written by FileSink, decompressing .json.sz files
func ReadFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	if strings.HasSuffix(path, compressedExt) {
		data, err = snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("decompress report: %w", err)
		}
	}
	return Unmarshal(data)
}
