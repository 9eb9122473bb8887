package sheets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir stores each sheet as <dir>/<name>.csv.
//
// Writes go to a temporary file in the same directory that is renamed over
// the old sheet, so a reader sees either the previous grid or the new one.
type Dir struct {
	dir string
}

// NewDir returns a store rooted at dir, creating it if needed.
func NewDir(dir string) (*Dir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &Dir{dir: dir}, nil
}

// Path returns the file that holds the named sheet.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.dir, name+".csv")
}

// ReadSheet reads the named sheet.
func (d *Dir) ReadSheet(ctx context.Context, name string) ([][]string, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(d.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrSheetNotFound)
		}
		return nil, fmt.Errorf("open sheet %q: %w", name, err)
	}
	defer f.Close()

	return ReadGrid(f)
}

// WriteSheet replaces the named sheet.
func (d *Dir) WriteSheet(ctx context.Context, name string, grid [][]string) (err error) {
	if err := validName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.dir, "."+name+"-*.csv.tmp")
	if err != nil {
		return fmt.Errorf("stage sheet %q: %w", name, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := WriteGrid(tmp, grid); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync sheet %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close sheet %q: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), d.Path(name)); err != nil {
		return fmt.Errorf("replace sheet %q: %w", name, err)
	}
	return nil
}

// Close is a no-op.
func (d *Dir) Close() error { return nil }
