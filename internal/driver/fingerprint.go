package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"quill/internal/config"
	"quill/internal/source"
)

// Digest is a SHA-256 sum used as a cache key.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool { return d == Digest{} }

// Fingerprint hashes everything in cfg that changes the token stream: the
// features, the delimiters and every language with its markers, in
// registration order.
func Fingerprint(cfg *config.Config) Digest {
	h := sha256.New()
	fmt.Fprintf(h, "schema=%d\n", diskCacheSchemaVersion)
	fmt.Fprintf(h, "smart_escape=%t natural_template=%t\n", cfg.Features.SmartEscape, cfg.Features.NaturalTemplate)
	fmt.Fprintf(h, "marker=%q open=%q close=%q\n", cfg.Syntax.Marker, cfg.Syntax.BlockOpen, cfg.Syntax.BlockClose)
	for _, l := range cfg.Registry.Langs() {
		var start, end string
		if l.HasBlocks() {
			start, end = l.BlockStart.String(), l.BlockEnd.String()
		}
		fmt.Fprintf(h, "lang=%q start=%q end=%q\n", l.Name, start, end)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// cacheKey combines the template content hash with the config fingerprint.
func cacheKey(file *source.File, fp Digest) Digest {
	h := sha256.New()
	h.Write(file.Hash[:])
	h.Write(fp[:])
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}
