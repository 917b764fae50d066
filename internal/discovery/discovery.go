package discovery

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPatterns are the glob patterns that identify catalog files.
var DefaultPatterns = []string{
	"**/*.catalog.yaml",
	"**/*.catalog.yml",
	"**/*.catalog.toml",
}

// Format is the serialization of a catalog file.
type Format int

const (
	FormatUnknown Format = iota
	FormatYAML
	FormatTOML
)

// String returns the name used by the decoders ("yaml" or "toml").
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "unknown"
	}
}

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case "":
		return FormatUnknown, fmt.Errorf("unsupported file: %s has no extension. catalogs must be .yaml, .yml or .toml", filepath.Base(path))
	default:
		return FormatUnknown, fmt.Errorf("unsupported file type: %s. catalogs must be .yaml, .yml or .toml", ext)
	}
}

// ValidateFilePath checks that path names a readable, non-empty text file
// and returns its absolute path.
func ValidateFilePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}

	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("file not found: %s", abs)
	case errors.Is(err, fs.ErrPermission):
		return "", fmt.Errorf("permission denied: %s", abs)
	case err != nil:
		return "", fmt.Errorf("cannot access file: %s: %w", abs, err)
	case info.IsDir():
		return "", fmt.Errorf("path is a directory, not a file: %s", abs)
	case info.Size() == 0:
		return "", fmt.Errorf("file is empty: %s", abs)
	}

	head, err := sniff(abs)
	if err != nil {
		return "", fmt.Errorf("cannot read file: %s: %w", abs, err)
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return "", fmt.Errorf("file appears to be binary, not text: %s", abs)
	}
	return abs, nil
}

// sniff returns up to the first 512 bytes of a file.
func sniff(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return buf[:n], nil
}

// File is a catalog file read from disk.
type File struct {
	Path     string
	RelPath  string
	Size     int64
	Format   Format
	Contents []byte
}

// FileDiscovery finds catalog files below a root directory.
type FileDiscovery struct {
	root           string
	followSymlinks bool
}

func NewFileDiscovery(root string, followSymlinks bool) *FileDiscovery {
	return &FileDiscovery{root: root, followSymlinks: followSymlinks}
}

// DiscoverFiles finds catalog files matching DefaultPatterns.
func (fd *FileDiscovery) DiscoverFiles() ([]File, error) {
	return fd.DiscoverFilesWithPatterns(DefaultPatterns)
}

// DiscoverFilesWithPatterns reads every file matching one of patterns,
// sorted by relative path, each file once.
func (fd *FileDiscovery) DiscoverFilesWithPatterns(patterns []string) ([]File, error) {
	fsys := os.DirFS(fd.root)
	seen := make(map[string]bool)
	var files []File

	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("error evaluating pattern %s: %w", pattern, err)
		}
		for _, rel := range matches {
			if seen[rel] {
				continue
			}
			seen[rel] = true
			if f, ok := fd.read(rel); ok {
				files = append(files, f)
			}
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// read loads one match. Directories, unreadable files, files with an
// unknown extension and links that are not followed are skipped.
func (fd *FileDiscovery) read(rel string) (File, bool) {
	path := filepath.Join(fd.root, rel)
	info, err := os.Lstat(path)
	if err != nil || info.IsDir() {
		return File{}, false
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		if path, info, err = fd.target(path); err != nil || info.IsDir() {
			return File{}, false
		}
	}

	format, err := DetectFormat(rel)
	if err != nil {
		return File{}, false
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		return File{}, false
	}
	return File{
		Path:     path,
		RelPath:  filepath.ToSlash(rel),
		Size:     info.Size(),
		Format:   format,
		Contents: contents,
	}, true
}

var errSkipLink = errors.New("symlink not followed")

// target resolves a symlink when following is enabled. Links that leave
// the root are rejected.
func (fd *FileDiscovery) target(link string) (string, fs.FileInfo, error) {
	if !fd.followSymlinks {
		return "", nil, errSkipLink
	}
	resolved, err := filepath.EvalSymlinks(link)
	if err != nil {
		return "", nil, err
	}
	root, err := filepath.EvalSymlinks(fd.root)
	if err != nil {
		root = fd.root
	}
	if rel, err := filepath.Rel(root, resolved); err != nil || strings.HasPrefix(rel, "..") {
		return "", nil, errSkipLink
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", nil, err
	}
	return resolved, info, nil
}
