package driver

import (
	"quill/internal/config"
	"quill/internal/lexer"
)

// DefaultExts are the template extensions TokenizeDir picks up.
var DefaultExts = []string{".html", ".htm", ".txt", ".tpl", ".rythm"}

// Options control Tokenize and TokenizeDir.
type Options struct {
	Config         *config.Config // nil means config.Default()
	MaxDiagnostics int
	Jobs           int // <= 0 means GOMAXPROCS
	Cache          *DiskCache
	Progress       ProgressSink
	Strict         bool
	Timings        bool
	Exts           []string // nil means DefaultExts
}

func (o Options) config() *config.Config {
	if o.Config == nil {
		return config.Default()
	}
	return o.Config
}

func (o Options) lexerOptions() lexer.Options {
	lo := o.config().Options()
	lo.Strict = o.Strict
	return lo
}

func (o Options) exts() []string {
	if len(o.Exts) == 0 {
		return DefaultExts
	}
	return o.Exts
}
