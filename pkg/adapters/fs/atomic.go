package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// TempFilePrefix marks in-progress writes so the watcher and directory scans
// can skip them.
const TempFilePrefix = "wordflow-tmp-"

// writeFileAtomic replaces the file at path with data in a single rename.
// Readers either see the previous contents or the full new contents, never a
// partial write. The scratch file lives in the target's directory because
// rename is only atomic within one filesystem.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("stage atomic write: %w", err)
	}
	name := tmp.Name()
	defer os.Remove(name) // no-op once the rename lands

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	if err := os.Chmod(name, perm); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
