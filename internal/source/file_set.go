package source

import (
	"crypto/sha256"
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileSet manages a collection of template sources.
// A FileSet is not safe for concurrent mutation; the driver loads every file
// before fanning out tokenization jobs, which only read from it.
type FileSet struct {
	files   []File
	index   map[string]FileID // path -> latest id
	baseDir string
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// NewFileSetWithBase создаёт FileSet с заданной базовой директорией.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

// BaseDir returns the directory relative paths are rendered against.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fileSet.baseDir
}

// Add stores a file from normalized bytes, computes LineIdx and Hash, and returns a new FileID.
// It always creates a new FileID even if a file with the same path already exists.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("file %s too large: %w", path, err))
	}
	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}

	normalizedPath := normalizePath(path)
	id := FileID(lenFiles)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fileSet.index[normalizedPath] = id
	return id
}

// Load reads a template from disk, normalizes CRLF/BOM, and calls Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds a virtual file (stdin, test, or generated) with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file metadata for the given ID.
func (fileSet *FileSet) Get(id FileID) *File {
	return &fileSet.files[id]
}

// Len returns the number of files ever added.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

// GetLatest returns the latest file ID for the given path, if it exists.
func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := &fileSet.files[span.File]
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// DisplayPath renders the file path relative to the set's base directory.
func (fileSet *FileSet) DisplayPath(id FileID) string {
	f := fileSet.Get(id)
	if f.Flags&FileVirtual != 0 {
		return f.Path
	}
	if rel, err := RelativePath(f.Path, fileSet.BaseDir()); err == nil {
		return rel
	}
	return f.Path
}

// LineAt returns the 1-based line number containing off.
func (f *File) LineAt(off uint32) uint32 {
	return toLineCol(f.LineIdx, off).Line
}

// GetLine возвращает строку с заданным номером (1-based) без '\n'.
// Если строка не существует, возвращает пустую строку.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	n := uint32(len(f.LineIdx)) //nolint:gosec // bounded by Add
	if lineNum > n+1 {
		return ""
	}
	var start uint32
	if lineNum > 1 {
		start = f.LineIdx[lineNum-2] + 1
	}
	end := uint32(len(f.Content)) //nolint:gosec // bounded by Add
	if lineNum-1 < n {
		end = f.LineIdx[lineNum-1]
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}
