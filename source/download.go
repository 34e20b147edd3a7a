package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/viant/phoenixgrid/grid"
)

// DownloadModel copies the file of the grid node nearest to q into dir and
// returns the written path. The file keeps the base name of its locator.
func DownloadModel(ctx context.Context, src Source, q grid.Query, dir string) (string, error) {
	idx, err := Index(ctx, src)
	if err != nil {
		return "", err
	}
	rec, err := grid.NearestSingle(idx, q)
	if err != nil {
		return "", err
	}
	return Save(ctx, src, rec, dir)
}

// Save copies the file behind rec into dir.
func Save(ctx context.Context, src Source, rec grid.Record, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	r, err := src.Open(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", rec.Locator, err)
	}
	defer r.Close()

	dest := filepath.Join(dir, path.Base(filepath.ToSlash(rec.Locator)))
	if err := WriteAtomic(dest, r); err != nil {
		return "", err
	}
	return dest, nil
}

// WriteAtomic streams r into dest through a uniquely named temporary file
// in the same directory, so readers never observe a partial file.
func WriteAtomic(dest string, r io.Reader) error {
	tmp := filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+"."+uuid.NewString()+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
