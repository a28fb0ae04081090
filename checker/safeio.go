package checker

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Fixtures and configs are small; anything bigger is a mistake on the
// command line.
const maxInputBytes = 16 << 20

// readFileByPath reads path through an fs.FS rooted at its directory so the
// name cannot climb out with "..".
func readFileByPath(path string) ([]byte, error) {
	dir, name := filepath.Dir(path), filepath.Base(path)
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("invalid file name: %q", name)
	}
	f, err := os.DirFS(dir).Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: path, Err: fs.ErrInvalid}
	}
	if info.Size() > maxInputBytes {
		return nil, fmt.Errorf("%s: %d bytes exceeds limit of %d", path, info.Size(), maxInputBytes)
	}
	return io.ReadAll(io.LimitReader(f, maxInputBytes+1))
}
