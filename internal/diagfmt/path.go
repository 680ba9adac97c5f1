package diagfmt

import (
	"path/filepath"

	"quill/internal/source"
)

func formatPath(fs *source.FileSet, id source.FileID, mode PathMode) string {
	f := fs.Get(id)
	if f.Flags&source.FileVirtual != 0 {
		return f.Path
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path
	case PathModeBasename:
		return filepath.Base(f.Path)
	case PathModeRelative:
		if rel, err := source.RelativePath(f.Path, fs.BaseDir()); err == nil {
			return rel
		}
		return f.Path
	default:
		return fs.DisplayPath(id)
	}
}
