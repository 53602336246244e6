package ledger

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// File is a newline-delimited ledger. The file is re-read on every
// IsProcessed so entries appended by other runs are seen. Concurrent writers
// are not coordinated; use the SQLite backend for that.
type File struct {
	Path string
}

// NewFile returns a File ledger at path. The file is created on first write.
func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) IsProcessed(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	key = Normalize(key)
	if key == "" {
		return false, nil
	}

	fh, err := os.Open(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger: open: %w", err)
	}
	defer fh.Close()

	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" && line == key {
			return true, nil
		}
	}
	if err := sc.Err(); err != nil {
		return false, fmt.Errorf("ledger: read: %w", err)
	}
	return false, nil
}

func (f *File) MarkProcessed(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key = Normalize(key)
	if key == "" {
		return errors.New("ledger: empty key")
	}

	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ledger: mkdir: %w", err)
		}
	}
	fh, err := os.OpenFile(f.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("ledger: open: %w", err)
	}
	if _, err := fh.WriteString(key + "\n"); err != nil {
		fh.Close()
		return fmt.Errorf("ledger: append: %w", err)
	}
	if err := fh.Close(); err != nil {
		return fmt.Errorf("ledger: close: %w", err)
	}
	return nil
}

func (f *File) Close() error { return nil }
