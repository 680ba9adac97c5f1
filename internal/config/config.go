// Package config loads quill.toml (or quill.yaml) and turns it into the
// inputs of a tokenizer run: feature flags, delimiters and the language
// registry.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"quill/internal/diag"
	"quill/internal/lang"
	"quill/internal/lexer"
)

// FileNames are looked up in this order in every directory.
var FileNames = []string{"quill.toml", "quill.yaml", "quill.yml"}

// Format of a configuration file.
type Format uint8

const (
	FormatAuto Format = iota
	FormatTOML
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	}
	return "auto"
}

// DetectFormat picks the format from the file extension, TOML by default.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatTOML
}

// Feature switches, named after the engine options they mirror
// (feature.smart_escape.enabled, feature.natural_template.enabled).
type Feature struct {
	SmartEscape     bool `toml:"smart_escape" yaml:"smart_escape"`
	NaturalTemplate bool `toml:"natural_template" yaml:"natural_template"`
}

// SyntaxSpec is the [syntax] table. Empty fields keep the defaults.
type SyntaxSpec struct {
	Marker     string `toml:"marker" yaml:"marker"`
	BlockOpen  string `toml:"block_open" yaml:"block_open"`
	BlockClose string `toml:"block_close" yaml:"block_close"`
}

// File mirrors the on-disk document.
type File struct {
	Feature        Feature     `toml:"feature" yaml:"feature"`
	Syntax         SyntaxSpec  `toml:"syntax" yaml:"syntax"`
	NoDefaultLangs bool        `toml:"no_default_langs" yaml:"no_default_langs"`
	Langs          []lang.Spec `toml:"lang" yaml:"lang"`
}

// Config is a validated configuration. It is read-only once built and may be
// shared by concurrent tokenizer runs.
type Config struct {
	Path     string // empty for defaults
	Features lexer.Features
	Syntax   lexer.Syntax
	Registry *lang.Registry
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Syntax:   lexer.DefaultSyntax(),
		Registry: lang.NewDefaultRegistry(),
	}
}

// Error is a configuration problem with the diagnostic code it maps to.
type Error struct {
	Path string
	Code diag.Code
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Code.ID(), e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Code.ID(), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Find walks up from startDir looking for a configuration file.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the configuration governing startDir, falling
// back to Default.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data, DetectFormat(path))
	if err != nil {
		var cerr *Error
		if errors.As(err, &cerr) {
			cerr.Path = path
		}
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes data in the given format and validates it.
func Parse(data []byte, format Format) (*Config, error) {
	var f File
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, &Error{Code: diag.CfgParseError, Err: err}
		}
	default:
		meta, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f)
		if err != nil {
			return nil, &Error{Code: diag.CfgParseError, Err: err}
		}
		if keys := meta.Undecoded(); len(keys) > 0 {
			return nil, &Error{Code: diag.CfgParseError, Err: fmt.Errorf("unknown key %q", keys[0].String())}
		}
	}
	return f.Build()
}

// Build validates f and produces a Config.
func (f File) Build() (*Config, error) {
	syn, err := f.Syntax.build()
	if err != nil {
		return nil, &Error{Code: diag.CfgBadSyntax, Err: err}
	}

	reg := lang.NewRegistry()
	if !f.NoDefaultLangs {
		reg = lang.NewDefaultRegistry()
	}
	for _, s := range f.Langs {
		if err := reg.RegisterSpec(s); err != nil {
			return nil, &Error{Code: diag.CfgBadLanguage, Err: err}
		}
	}

	return &Config{
		Features: lexer.Features{
			SmartEscape:      f.Feature.SmartEscape,
			NaturalTemplate:  f.Feature.NaturalTemplate,
			HasTemplateLangs: reg.HasTemplateLangs(),
		},
		Syntax:   syn,
		Registry: reg,
	}, nil
}

func (s SyntaxSpec) build() (lexer.Syntax, error) {
	syn := lexer.DefaultSyntax()
	if s.Marker != "" {
		if len(s.Marker) != 1 {
			return syn, fmt.Errorf("marker %q must be a single character", s.Marker)
		}
		syn.Marker = s.Marker[0]
	}
	if s.BlockOpen != "" {
		syn.BlockOpen = s.BlockOpen
	}
	if s.BlockClose != "" {
		syn.BlockClose = s.BlockClose
	}
	return syn, syn.Validate()
}

// Options returns tokenizer options for this configuration.
func (c *Config) Options() lexer.Options {
	return lexer.Options{
		Features: c.Features,
		Syntax:   c.Syntax,
		Registry: c.Registry,
	}
}
