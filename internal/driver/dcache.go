package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"quill/internal/diag"
	"quill/internal/lexer"
	"quill/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит токены шаблонов на диске, ключ = хэш содержимого + конфигурации.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedDiag is a diagnostic without its notes.
type CachedDiag struct {
	Severity diag.Severity
	Code     diag.Code
	Message  string
	Primary  source.Span
}

// DiskPayload is one cached tokenization: the stream, the warnings the run
// produced and what was left open. File IDs in spans are remapped on load.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Path     string
	Results  []lexer.Result
	Diags    []CachedDiag
	Leftover lexer.Leftover
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache opens a cache rooted at dir, creating it if needed.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	// подкаталог "tokens", чтобы не смешивать с другими артефактами
	return filepath.Join(c.dir, "tokens", key.String()+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		// после успешного Rename файла уже нет
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	payload.Schema = diskCacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, p)
}

// Get reads and deserializes a payload from the disk cache. A payload written
// by another schema version counts as a miss.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог, чтобы параллельный запуск не увидел половину
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// remap points every span of p at file.
func (p *DiskPayload) remap(file source.FileID) {
	for i := range p.Results {
		p.Results[i].Token.Span.File = file
	}
	for i := range p.Diags {
		p.Diags[i].Primary.File = file
	}
}

func toCached(items []diag.Diagnostic) []CachedDiag {
	out := make([]CachedDiag, 0, len(items))
	for _, d := range items {
		if d.Code == diag.IOCacheError {
			continue
		}
		out = append(out, CachedDiag{Severity: d.Severity, Code: d.Code, Message: d.Message, Primary: d.Primary})
	}
	return out
}
