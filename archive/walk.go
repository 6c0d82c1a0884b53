package archive

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ResolveFiles expands path into a flat, depth-first list of absolute
// regular-file paths. The argument itself is resolved through symlinks
// first; entries discovered during directory expansion must be regular
// files or directories, anything else fails with ErrUnsupportedInput
// naming the entry. Errors propagate per entry rather than silently
// dropping already-resolved files; the enclosing batch decides what to
// do with them.
func ResolveFiles(path string) ([]string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, fmt.Errorf("archive: resolve %s: %w", path, err)
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return nil, fmt.Errorf("archive: resolve %s: %w", path, err)
	}
	info, err := os.Lstat(abs)
	if err != nil {
		return nil, fmt.Errorf("archive: stat %s: %w", abs, err)
	}

	var files []string
	if err := walk(abs, info, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func walk(path string, info fs.FileInfo, files *[]string) error {
	switch {
	case info.Mode().IsRegular():
		*files = append(*files, path)
		return nil
	case info.IsDir():
		entries, err := os.ReadDir(path)
		if err != nil {
			return fmt.Errorf("archive: read directory %s: %w", path, err)
		}
		for _, entry := range entries {
			child := filepath.Join(path, entry.Name())
			childInfo, err := entry.Info()
			if err != nil {
				return fmt.Errorf("archive: stat %s: %w", child, err)
			}
			if err := walk(child, childInfo, files); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %s (%s)", ErrUnsupportedInput, path, info.Mode().Type())
	}
}

// ArchiveName derives the archive name of the absolute path abs: its
// path relative to the nearest ancestor of cwd that contains it, with
// forward slashes. Naming files relative to the invocation's working
// directory keeps archives portable across machines.
func ArchiveName(cwd, abs string) (string, error) {
	for dir := filepath.Clean(cwd); ; dir = filepath.Dir(dir) {
		rel, err := filepath.Rel(dir, abs)
		if err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return filepath.ToSlash(rel), nil
		}
		if dir == filepath.Dir(dir) {
			// filesystem root
			break
		}
	}
	return "", fmt.Errorf("archive: cannot derive archive name for %s relative to %s", abs, cwd)
}
