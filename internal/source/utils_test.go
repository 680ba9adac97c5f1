package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRelativePathOutsideBaseFallsBackToAbsolute(t *testing.T) {
	tmp := t.TempDir()
	baseDir := filepath.Join(tmp, "base")
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		t.Fatalf("failed to create base dir: %v", err)
	}
	target := filepath.Join(tmp, "other", "page.html")

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}
	if want := normalizePath(target); got != want {
		t.Fatalf("expected absolute fallback %q, got %q", want, got)
	}
}

func TestRelativePathInsideBaseStaysRelative(t *testing.T) {
	baseDir := t.TempDir()
	target := filepath.Join(baseDir, "nested", "page.html")

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}
	if want := "nested/page.html"; got != want {
		t.Fatalf("expected relative path %q, got %q", want, got)
	}
}

func TestNormalizeCRLFKeepsLoneCR(t *testing.T) {
	out, changed := normalizeCRLF([]byte("x\ry\r\n"))
	if !changed || string(out) != "x\ry\n" {
		t.Fatalf("normalizeCRLF = %q,%v", out, changed)
	}
	out, changed = normalizeCRLF([]byte("plain"))
	if changed || string(out) != "plain" {
		t.Fatalf("normalizeCRLF fast path = %q,%v", out, changed)
	}
}
