package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// unzip extracts zipPath into dest. Errors reading the archive are wrapped as
// corruptError so the fetch loop can retry them; filesystem errors are not.
func unzip(zipPath, dest string) error {
	r, err := zip.OpenReader(zipPath)
	if errors.Is(err, zip.ErrInsecurePath) {
		if r != nil {
			_ = r.Close()
		}
		return fmt.Errorf("%w: %w", ErrUnsafePath, err)
	}
	if err != nil {
		return &corruptError{err: err}
	}
	defer r.Close()

	root, err := filepath.Abs(dest)
	if err != nil {
		return fmt.Errorf("resolve extraction root: %w", err)
	}

	for _, f := range r.File {
		if err := extractEntry(f, root); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(f *zip.File, root string) error {
	target := filepath.Join(root, filepath.FromSlash(f.Name))
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return fmt.Errorf("%w: %s", ErrUnsafePath, f.Name)
	}

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(target, 0o750); err != nil {
			return fmt.Errorf("create dir %s: %w", f.Name, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("create dir for %s: %w", f.Name, err)
	}

	src, err := f.Open()
	if err != nil {
		return &corruptError{err: fmt.Errorf("open entry %s: %w", f.Name, err)}
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("create %s: %w", f.Name, err)
	}

	_, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr != nil {
		// Write failures surface as *os.PathError; anything else came from the zip stream.
		var pathErr *os.PathError
		if errors.As(copyErr, &pathErr) {
			return fmt.Errorf("write %s: %w", f.Name, copyErr)
		}
		return &corruptError{err: fmt.Errorf("read entry %s: %w", f.Name, copyErr)}
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", f.Name, closeErr)
	}
	return nil
}
