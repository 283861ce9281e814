package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/strrl/session-trim/internal/transform"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session-trim.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(PathEnv, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Jobs) != 2 || cfg.Jobs[0].Name != "train" || cfg.Jobs[1].Name != "test" {
		t.Fatalf("unexpected default jobs: %+v", cfg.Jobs)
	}

	p := cfg.Projection(cfg.Jobs[0])
	if strings.Join(p.Header, ",") != "SessionId,ItemId,Time" {
		t.Errorf("unexpected header %v", p.Header)
	}
	if p.MinFields() != 5 {
		t.Errorf("expected 5 min fields, got %d", p.MinFields())
	}

	opts := cfg.Options(cfg.Jobs[0])
	if opts.InputDelimiter != ',' || opts.OutputDelimiter != ',' || opts.Overwrite != transform.OverwriteReplace {
		t.Errorf("unexpected default options %+v", opts)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
baseDir: /data/gru4rec
inputDelimiter: tab
overwrite: fail
verify: true
jobs:
  - name: train
    input: rsc15_train_full.txt
    output: out/train.csv
  - name: test
    input: /abs/test.dat
    output: out/test.csv
    inputDelimiter: ";"
    columns: [0, 2, 1]
log:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Verify || cfg.Log.Level != "debug" || cfg.Log.Format != "console" {
		t.Errorf("scalar fields not loaded: %+v", cfg)
	}
	if got := cfg.ResolvePath(cfg.Jobs[0].Input); got != filepath.Join("/data/gru4rec", "rsc15_train_full.txt") {
		t.Errorf("relative path resolved to %s", got)
	}
	if got := cfg.ResolvePath(cfg.Jobs[1].Input); got != "/abs/test.dat" {
		t.Errorf("absolute path resolved to %s", got)
	}

	trainOpts := cfg.Options(cfg.Jobs[0])
	if trainOpts.InputDelimiter != '\t' || trainOpts.Overwrite != transform.OverwriteFail {
		t.Errorf("unexpected train options %+v", trainOpts)
	}
	testOpts := cfg.Options(cfg.Jobs[1])
	if testOpts.InputDelimiter != ';' {
		t.Errorf("job delimiter override ignored: %q", testOpts.InputDelimiter)
	}
	if cols := cfg.Projection(cfg.Jobs[1]).Columns; len(cols) != 3 || cols[1] != 2 {
		t.Errorf("job columns override ignored: %v", cols)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "baseDir: /from/file\n")
	t.Setenv(PathEnv, path)
	t.Setenv("SESSIONTRIM_BASE_DIR", "/from/env")
	t.Setenv("SESSIONTRIM_VERIFY", "true")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseDir != "/from/env" {
		t.Errorf("expected env base dir, got %s", cfg.BaseDir)
	}
	if !cfg.Verify {
		t.Error("expected verify from env")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected warn level, got %s", cfg.Log.Level)
	}
}

func TestLoadRejectsBadEnvValue(t *testing.T) {
	t.Setenv(PathEnv, "")
	t.Setenv("SESSIONTRIM_VERIFY", "maybe")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for unparsable bool")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no jobs", func(c *Config) { c.Jobs = nil }},
		{"duplicate names", func(c *Config) { c.Jobs[1].Name = "train" }},
		{"missing output", func(c *Config) { c.Jobs[0].Output = "" }},
		{"output is input", func(c *Config) { c.Jobs[0].Output = "./" + c.Jobs[0].Input }},
		{"bad delimiter", func(c *Config) { c.InputDelimiter = "||" }},
		{"bad job delimiter", func(c *Config) { c.Jobs[0].InputDelimiter = `"` }},
		{"bad policy", func(c *Config) { c.Overwrite = "append" }},
		{"header mismatch", func(c *Config) { c.Header = []string{"SessionId"} }},
		{"negative column", func(c *Config) { c.Jobs[1].Columns = []int{0, -3, 4} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in    string
		want  rune
		isErr bool
	}{
		{"", ',', false},
		{",", ',', false},
		{"tab", '\t', false},
		{"TAB", '\t', false},
		{`\t`, '\t', false},
		{"\t", '\t', false},
		{";", ';', false},
		{"|", '|', false},
		{"§", '§', false},
		{"::", 0, true},
		{`"`, 0, true},
		{"\n", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDelimiter(tt.in)
		if (err != nil) != tt.isErr {
			t.Errorf("input %q: expected error %v, got %v", tt.in, tt.isErr, err)
		}
		if got != tt.want {
			t.Errorf("input %q: expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
