package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--color=off"}, args...))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := readUIMode("sometimes")
	require.Error(t, err)
	assert.True(t, shouldUseTUI(uiModeOn))
	assert.False(t, shouldUseTUI(uiModeOff))
}

func TestStartDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.html")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	assert.Equal(t, ".", startDir(""))
	assert.Equal(t, dir, startDir(dir))
	assert.Equal(t, dir, startDir(file))
	assert.Equal(t, filepath.Join(dir, "missing"), startDir(filepath.Join(dir, "missing", "x.html")))
}

func TestChainCommandJSON(t *testing.T) {
	out, _, err := execute(t, "chain", "--format", "json", "--natural=true", t.TempDir())
	require.NoError(t, err)

	var payload chainPayload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.True(t, payload.NaturalTemplate)
	assert.Equal(t, []string{"js", "css"}, payload.Langs)
	assert.Equal(t, []string{
		"lang-start-sensor", "lang-end-sensor",
		"comment-start-sensor", "comment-end-sensor",
		"dispatcher", "block-close", "script", "string-run", "fail-through",
	}, payload.Chain)
	assert.Equal(t, "escape", payload.Directives[0])
}

func TestChainCommandHonorsConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := "no_default_langs = true\n[feature]\nsmart_escape = true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quill.toml"), []byte(cfg), 0o600))

	out, _, err := execute(t, "chain", "--format", "json", "--natural=false", dir)
	require.NoError(t, err)

	var payload chainPayload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, filepath.Join(dir, "quill.toml"), payload.Config)
	assert.True(t, payload.SmartEscape)
	assert.Empty(t, payload.Langs)
	// без языков сенсорам нечего искать
	assert.Equal(t, "dispatcher", payload.Chain[0])
}

func TestTokenizeCommandJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte("Hi @user!"), 0o600))

	out, _, err := execute(t, "tokenize", "--format", "json", "--ui", "off", path)
	require.NoError(t, err)

	var toks []struct {
		Kind    string `json:"kind"`
		Text    string `json:"text"`
		Payload string `json:"payload"`
		Parser  string `json:"parser"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &toks))
	require.Len(t, toks, 4)
	assert.Equal(t, "Hi ", toks[0].Text)
	assert.Equal(t, "Directive", toks[1].Kind)
	assert.Equal(t, "expression", toks[1].Parser)
	assert.Equal(t, "EOF", toks[3].Kind)
}

func TestTokenizeDirSummary(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.html"), []byte("ok"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.tpl"), []byte("dangling @"), 0o600))

	out, stderr, err := execute(t, "tokenize", "--format", "pretty", "--ui", "off", "--summary", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "a.html: 2 tokens, 0 errors, 0 warnings")
	assert.Contains(t, out, "b.tpl: 3 tokens, 0 errors, 1 warnings")
	assert.Contains(t, stderr, "LEX1001")
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	src := "<ul>\n  @for (u : users) {\n  <li>@u</li>\n  }\n</ul>\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	out, _, err := execute(t, "render", "--text=false", path)
	require.NoError(t, err)
	assert.Contains(t, out, "{{BlockOpen for}}")
	assert.Contains(t, out, "{{Directive expr}}")
	assert.Contains(t, out, "{{BlockClose}}")
}

func TestVersionJSON(t *testing.T) {
	out, _, err := execute(t, "version", "--format", "json", "--full")
	require.NoError(t, err)
	var payload versionPayload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "quill", payload.Tool)
	assert.NotEmpty(t, payload.Version)
	assert.NotEmpty(t, payload.GitCommit)
}
