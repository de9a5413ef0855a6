package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"docqa/internal/port"
)

// Walker turns command-line arguments into document files. An argument may be a file,
// a directory (searched with the include patterns) or a doublestar glob.
type Walker struct {
	includes []string
	excludes []string
}

func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*.txt", "**/*.md"}
	}
	return &Walker{
		includes: includes,
		excludes: excludes,
	}
}

func (w *Walker) Resolve(patterns []string) ([]port.FileInfo, error) {
	seen := make(map[string]port.FileInfo)

	for _, pattern := range patterns {
		info, err := os.Stat(pattern)
		switch {
		case err == nil && info.IsDir():
			files, err := w.Walk(pattern)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				seen[f.Path] = f
			}
		case err == nil:
			path, err := filepath.Abs(pattern)
			if err != nil {
				return nil, err
			}
			seen[path] = port.FileInfo{Path: path, ModTime: info.ModTime().Unix(), Size: info.Size()}
		default:
			matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no documents match %q", pattern)
			}
			for _, m := range matches {
				if w.shouldExclude(filepath.ToSlash(m)) {
					continue
				}
				fi, err := os.Stat(m)
				if err != nil {
					return nil, err
				}
				path, err := filepath.Abs(m)
				if err != nil {
					return nil, err
				}
				seen[path] = port.FileInfo{Path: path, ModTime: fi.ModTime().Unix(), Size: fi.Size()}
			}
		}
	}

	files := make([]port.FileInfo, 0, len(seen))
	for _, f := range seen {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Walk lists the files under root that match the include patterns and none of the excludes.
func (w *Walker) Walk(root string) ([]port.FileInfo, error) {
	var files []port.FileInfo

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if relPath != "." && w.shouldExclude(relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if w.shouldInclude(relPath) && !w.shouldExclude(relPath) {
			files = append(files, port.FileInfo{
				Path:    path,
				ModTime: info.ModTime().Unix(),
				Size:    info.Size(),
			})
		}

		return nil
	})

	return files, err
}

func (w *Walker) shouldInclude(path string) bool {
	for _, pattern := range w.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Walker) shouldExclude(path string) bool {
	for _, pattern := range w.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// FileReader reads documents as text.
type FileReader struct{}

func (FileReader) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
