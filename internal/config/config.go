package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/strrl/session-trim/internal/transform"
)

// PathEnv names the variable consulted when no config path is given.
const PathEnv = "CONFIG_FILE"

// Job is one (input, output, column selection) entry. Empty optional fields
// inherit the top-level settings.
type Job struct {
	Name           string `yaml:"name"`
	Input          string `yaml:"input"`
	Output         string `yaml:"output"`
	InputDelimiter string `yaml:"inputDelimiter"`
	Columns        []int  `yaml:"columns"`
}

// Config holds everything a run needs; nothing is tied to a machine layout.
type Config struct {
	BaseDir         string `yaml:"baseDir" env:"SESSIONTRIM_BASE_DIR"`
	InputDelimiter  string `yaml:"inputDelimiter" env:"SESSIONTRIM_INPUT_DELIMITER"`
	OutputDelimiter string `yaml:"outputDelimiter" env:"SESSIONTRIM_OUTPUT_DELIMITER"`
	Overwrite       string `yaml:"overwrite" env:"SESSIONTRIM_OVERWRITE"`
	Verify          bool   `yaml:"verify" env:"SESSIONTRIM_VERIFY"`

	Columns []int    `yaml:"columns" env:"-"`
	Header  []string `yaml:"header" env:"-"`
	Jobs    []Job    `yaml:"jobs" env:"-"`

	Log struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"log"`
}

// Default returns the train/test layout of the session dataset in the
// current directory.
func Default() *Config {
	def := transform.DefaultProjection()
	cfg := &Config{
		BaseDir:         ".",
		InputDelimiter:  ",",
		OutputDelimiter: ",",
		Overwrite:       string(transform.OverwriteReplace),
		Columns:         def.Columns,
		Header:          def.Header,
		Jobs: []Job{
			{Name: "train", Input: "sessions_train.csv", Output: "sessions_train_trimmed.csv"},
			{Name: "test", Input: "sessions_test.csv", Output: "sessions_test_trimmed.csv"},
		},
	}
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	return cfg
}

// Load builds the configuration from defaults, the YAML file at path (or
// $CONFIG_FILE when path is empty) and environment overrides, then validates
// it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := populateFromEnv(reflect.ValueOf(cfg).Elem(), ""); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(path string, target *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read file: %w", err)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("config: decode yaml: %w", err)
	}

	return nil
}

// Validate checks the job list and every delimiter and projection in it.
func (c *Config) Validate() error {
	if len(c.Jobs) == 0 {
		return errors.New("config: at least one job required")
	}
	if _, err := ParseDelimiter(c.InputDelimiter); err != nil {
		return fmt.Errorf("config: inputDelimiter: %w", err)
	}
	if _, err := ParseDelimiter(c.OutputDelimiter); err != nil {
		return fmt.Errorf("config: outputDelimiter: %w", err)
	}
	if _, err := transform.ParseOverwritePolicy(c.Overwrite); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	seen := make(map[string]bool, len(c.Jobs))
	for i, job := range c.Jobs {
		name := strings.TrimSpace(job.Name)
		if name == "" {
			return fmt.Errorf("config: job %d: name required", i)
		}
		if seen[name] {
			return fmt.Errorf("config: duplicate job name %q", name)
		}
		seen[name] = true

		if strings.TrimSpace(job.Input) == "" || strings.TrimSpace(job.Output) == "" {
			return fmt.Errorf("config: job %q: input and output required", name)
		}
		if c.ResolvePath(job.Input) == c.ResolvePath(job.Output) {
			return fmt.Errorf("config: job %q: output would overwrite input", name)
		}
		if _, err := ParseDelimiter(job.InputDelimiter); job.InputDelimiter != "" && err != nil {
			return fmt.Errorf("config: job %q: inputDelimiter: %w", name, err)
		}
		if err := c.Projection(job).Validate(); err != nil {
			return fmt.Errorf("config: job %q: %w", name, err)
		}
	}
	return nil
}

// ResolvePath anchors relative paths at BaseDir.
func (c *Config) ResolvePath(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	base := c.BaseDir
	if base == "" {
		base = "."
	}
	return filepath.Join(base, p)
}

// Projection returns the column selection for job.
func (c *Config) Projection(job Job) transform.Projection {
	cols := c.Columns
	if len(job.Columns) > 0 {
		cols = job.Columns
	}
	return transform.Projection{
		Columns: append([]int(nil), cols...),
		Header:  append([]string(nil), c.Header...),
	}
}

// Options returns the read/write options for job. Delimiters must already
// have passed Validate.
func (c *Config) Options(job Job) transform.Options {
	inDelim := c.InputDelimiter
	if job.InputDelimiter != "" {
		inDelim = job.InputDelimiter
	}
	in, _ := ParseDelimiter(inDelim)
	out, _ := ParseDelimiter(c.OutputDelimiter)
	policy, _ := transform.ParseOverwritePolicy(c.Overwrite)
	return transform.Options{
		InputDelimiter:  in,
		OutputDelimiter: out,
		Overwrite:       policy,
	}
}

// ParseDelimiter turns a configured delimiter into a rune. Empty means comma;
// "tab" and the escape sequence \t mean TAB.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return ',', nil
	case "tab", `\t`, "\t":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter %q must be a single character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if !transform.ValidDelimiter(r) {
		return 0, fmt.Errorf("delimiter %q is not allowed", s)
	}
	return r, nil
}
