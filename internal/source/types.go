package source

type (
	// FileID uniquely identifies a template within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a template file.
	FileFlags uint8
)

const (
	// FileVirtual marks a template added from memory (test, stdin, generated).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File captures metadata and content for a single template source.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of every '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position in a template.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, in bytes
}
