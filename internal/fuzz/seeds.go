package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10 // 64 KiB

var inlineSeeds = []string{
	"",
	"hello world",
	"@",
	"}}tail",
	"@@ @// note\n@* block *@",
	"@if (a) {\n  x\n} @else if (b) {\n} @else {\n}",
	"@args String name\n@import java.util.*\nHi @name.trim()!",
	"@{ var s = \"}\"; }",
	"<script>var a = '@';</script>",
	"<!-- @if (x) { -->shown<!-- } -->",
	"<style>p{}</style><script></script>",
	"\xff\xfe@\xc3",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range inlineSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// ошибки обхода не критичны: корпус best effort
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error { //nolint:errcheck
		if walkErr != nil || d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".html", ".txt", ".tpl":
		default:
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
