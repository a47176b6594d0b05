// Package config loads bfi settings from YAML, TOML or JSON files and
// validates them against an embedded CUE schema.
//
// Files are decoded on top of Default, so a file only needs the keys it
// changes. Unknown keys are rejected.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/roach88/bfi/internal/engine"
	"github.com/roach88/bfi/internal/ioport"
)

//go:embed schema.cue
var schemaCUE string

// Config is the full set of file-configurable settings.
type Config struct {
	Engine EngineSection `yaml:"engine" toml:"engine" json:"engine"`
	IO     IOSection     `yaml:"io" toml:"io" json:"io"`
	Source SourceSection `yaml:"source" toml:"source" json:"source"`
	Log    LogSection    `yaml:"log" toml:"log" json:"log"`
	REPL   REPLSection   `yaml:"repl" toml:"repl" json:"repl"`
}

// EngineSection mirrors engine.Config with textual enums.
type EngineSection struct {
	TapeSize int    `yaml:"tape_size" toml:"tape_size" json:"tape_size"`
	CellBits int    `yaml:"cell_bits" toml:"cell_bits" json:"cell_bits"`
	Bounds   string `yaml:"bounds" toml:"bounds" json:"bounds"`
	MaxSteps int    `yaml:"max_steps" toml:"max_steps" json:"max_steps"`
}

// IOSection selects the capability presets.
type IOSection struct {
	Input     string `yaml:"input" toml:"input" json:"input"`
	Output    string `yaml:"output" toml:"output" json:"output"`
	EOF       string `yaml:"eof" toml:"eof" json:"eof"`
	Separator string `yaml:"separator" toml:"separator" json:"separator"`
}

// SourceSection controls cleaning.
type SourceSection struct {
	// MaxLength caps the cleaned program. 0 means unlimited.
	MaxLength int `yaml:"max_length" toml:"max_length" json:"max_length"`
	// Truncate allows running a program that exceeded MaxLength.
	Truncate bool `yaml:"truncate" toml:"truncate" json:"truncate"`
}

// LogSection configures internal/logs.
type LogSection struct {
	Level string `yaml:"level" toml:"level" json:"level"`
	File  string `yaml:"file" toml:"file" json:"file"`
}

// REPLSection configures the interactive shell.
type REPLSection struct {
	Prompt      string `yaml:"prompt" toml:"prompt" json:"prompt"`
	HistoryFile string `yaml:"history_file" toml:"history_file" json:"history_file"`
}

// DefaultPrompt is the REPL prompt.
const DefaultPrompt = "bf$ "

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Engine: EngineSection{
			TapeSize: engine.DefaultTapeSize,
			CellBits: engine.DefaultCellBits,
			Bounds:   engine.BoundsReject.String(),
		},
		IO: IOSection{
			Input:     ioport.ASCII,
			Output:    ioport.ASCII,
			EOF:       ioport.EOFZero.String(),
			Separator: ioport.DefaultSeparator,
		},
		Log: LogSection{
			Level: "info",
		},
		REPL: REPLSection{
			Prompt: DefaultPrompt,
		},
	}
}

// Load reads path on top of Default and validates the result.
// The decoder is chosen by extension: .yaml, .yml, .json or .toml.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".json":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse error in %s: %w", path, err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("parse error in %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("parse error in %s: unknown key %q", path, undecoded[0].String())
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q (use .yaml, .yml, .json or .toml)", ext)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ValidationError reports a config that does not satisfy the schema.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

var (
	// cue values are not safe for concurrent use; schemaMu guards all of them.
	schemaMu   sync.Mutex
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error
)

func loadSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		root := schemaCtx.CompileString(schemaCUE, cue.Filename("schema.cue"))
		if err := root.Err(); err != nil {
			schemaErr = fmt.Errorf("compile config schema: %w", err)
			return
		}
		schemaDef = root.LookupPath(cue.ParsePath("#Config"))
		schemaErr = schemaDef.Err()
	})
	return schemaCtx, schemaDef, schemaErr
}

// Validate checks c against the embedded CUE schema.
// Failures are returned as *ValidationError.
func (c Config) Validate() error {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	ctx, def, err := loadSchema()
	if err != nil {
		return err
	}

	value := ctx.Encode(c)
	if err := value.Err(); err != nil {
		return &ValidationError{Err: err}
	}
	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// EngineConfig converts the engine section.
func (c Config) EngineConfig() (engine.Config, error) {
	bounds, err := engine.ParseBoundsPolicy(c.Engine.Bounds)
	if err != nil {
		return engine.Config{}, err
	}
	ec := engine.Config{
		TapeSize: c.Engine.TapeSize,
		CellBits: c.Engine.CellBits,
		Bounds:   bounds,
		MaxSteps: c.Engine.MaxSteps,
	}
	return ec, ec.Validate()
}

// EOFPolicy converts io.eof.
func (c Config) EOFPolicy() (ioport.EOFPolicy, error) {
	return ioport.ParseEOFPolicy(c.IO.EOF)
}
