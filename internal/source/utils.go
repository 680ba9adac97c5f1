package source

import (
	"path/filepath"
	"slices"
	"strings"
)

// normalizeCRLF заменяет все \r\n на \n, не трогая одиночные \r.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false
	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
			continue
		}
		out = append(out, content[i])
		i++
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}
	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}
	return content, false
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, 16)
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i)) //nolint:gosec // FileSet.Add bounds len(content) to uint32
		}
	}
	return out
}

// toLineCol converts a byte offset into a 1-based line/column pair.
func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// число '\n' строго до off = номер строки (0-based)
	line, _ := slices.BinarySearch(lineIdx, off)
	var startOff uint32
	if line > 0 {
		startOff = lineIdx[line-1] + 1
	}
	return LineCol{Line: uint32(line) + 1, Col: off - startOff + 1} //nolint:gosec // line <= len(lineIdx) which fits uint32
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// RelativePath returns path relative to baseDir, falling back to the
// normalized absolute path when path lives outside baseDir.
func RelativePath(path, baseDir string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return normalizePath(abs), nil //nolint:nilerr // вне baseDir: абсолютный путь
	}
	return normalizePath(rel), nil
}
