package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto renders paths relative to the FileSet base when possible.
	PathModeAuto PathMode = iota
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// ParsePathMode accepts auto|absolute|relative|basename.
func ParsePathMode(s string) (PathMode, bool) {
	switch s {
	case "", "auto":
		return PathModeAuto, true
	case "absolute", "abs":
		return PathModeAbsolute, true
	case "relative", "rel":
		return PathModeRelative, true
	case "basename", "base":
		return PathModeBasename, true
	}
	return PathModeAuto, false
}

// PrettyOpts configures pretty-printing of diagnostics and tokens.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	ShowNotes bool
	// ShowSource prints the offending line with a caret underline.
	ShowSource bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	PathMode         PathMode
	Max              int // обрезка вывода, не Bag
	IncludeNotes     bool
}
