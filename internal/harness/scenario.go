package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bfi/internal/engine"
	"github.com/roach88/bfi/internal/ioport"
	"github.com/roach88/bfi/internal/store"
)

// Scenario defines one program run and what it must produce.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program is inline source. Comments are allowed; it is cleaned first.
	Program string `yaml:"program,omitempty"`

	// ProgramFile is a source file, relative to the scenario file.
	ProgramFile string `yaml:"program_file,omitempty"`

	// Input is text decoded by the input preset.
	Input string `yaml:"input,omitempty"`

	// InputValues are raw cell values, bypassing the input preset.
	InputValues []int `yaml:"input_values,omitempty"`

	InputFormat  string `yaml:"input_format,omitempty"`
	OutputFormat string `yaml:"output_format,omitempty"`
	Separator    string `yaml:"separator,omitempty"`
	EOF          string `yaml:"eof,omitempty"`

	TapeSize int    `yaml:"tape_size,omitempty"`
	CellBits int    `yaml:"cell_bits,omitempty"`
	Bounds   string `yaml:"bounds,omitempty"`
	MaxSteps int    `yaml:"max_steps,omitempty"`

	// Expect lists the checks. Only fields that are set are checked.
	Expect Expect `yaml:"expect"`

	// Path is the file the scenario was loaded from, if any.
	Path string `yaml:"-"`
}

// Expect describes the observable outcome of a run.
type Expect struct {
	// Status is halted or faulted. Defaults to faulted when Error is set,
	// halted otherwise.
	Status string `yaml:"status,omitempty"`

	// Output is the exact text written by the output preset.
	Output *string `yaml:"output,omitempty"`

	// OutputValues are the raw cell values passed to the output.
	OutputValues []int `yaml:"output_values,omitempty"`

	// Tape is compared against the first len(Tape) cells.
	Tape []int `yaml:"tape,omitempty"`

	Pointer *int `yaml:"pointer,omitempty"`

	Error *ErrorExpect `yaml:"error,omitempty"`
}

// ErrorExpect matches the error a faulted run returned.
type ErrorExpect struct {
	// Code is the error's stable code, e.g. E201 or E301.
	Code string `yaml:"code,omitempty"`

	// Contains is a substring of the error message.
	Contains string `yaml:"contains,omitempty"`
}

func (e Expect) isEmpty() bool {
	return e.Status == "" && e.Output == nil && e.OutputValues == nil &&
		e.Tape == nil && e.Pointer == nil && e.Error == nil
}

// wantStatus resolves the default status.
func (e Expect) wantStatus() string {
	switch {
	case e.Status != "":
		return e.Status
	case e.Error != nil:
		return store.StatusFaulted
	default:
		return store.StatusHalted
	}
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// ProgramFile is resolved relative to the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "outputs:" vs "output:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	scenario.Path = path
	if scenario.ProgramFile != "" && !filepath.IsAbs(scenario.ProgramFile) {
		scenario.ProgramFile = filepath.Join(filepath.Dir(path), scenario.ProgramFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadDir loads every .yaml and .yml file in dir, sorted by file name.
// Scenario names must be unique within the directory.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}

	seen := make(map[string]string)
	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("duplicate scenario name %q in %s and %s", s.Name, prev, path)
		}
		seen[s.Name] = path
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Description == "" {
		return errors.New("description is required")
	}

	switch {
	case s.Program == "" && s.ProgramFile == "":
		return errors.New("program or program_file is required")
	case s.Program != "" && s.ProgramFile != "":
		return errors.New("program and program_file are mutually exclusive")
	}
	if s.ProgramFile != "" {
		if _, err := os.Stat(s.ProgramFile); err != nil {
			return fmt.Errorf("program file not found: %s", s.ProgramFile)
		}
	}

	if s.Input != "" && s.InputValues != nil {
		return errors.New("input and input_values are mutually exclusive")
	}
	for field, name := range map[string]string{"input_format": s.InputFormat, "output_format": s.OutputFormat} {
		if name == "" {
			continue
		}
		if _, err := ioport.Lookup(name); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	if _, err := ioport.ParseEOFPolicy(s.EOF); err != nil {
		return err
	}
	if _, err := s.engineConfig(); err != nil {
		return err
	}

	return validateExpect(s.Expect)
}

func validateExpect(e Expect) error {
	if e.isEmpty() {
		return errors.New("expect must set at least one of status, output, output_values, tape, pointer or error")
	}
	switch e.Status {
	case "", store.StatusHalted, store.StatusFaulted:
	default:
		return fmt.Errorf("expect.status: must be %q or %q, got %q", store.StatusHalted, store.StatusFaulted, e.Status)
	}
	if e.Error != nil {
		if e.Error.Code == "" && e.Error.Contains == "" {
			return errors.New("expect.error: code or contains is required")
		}
		if e.Status == store.StatusHalted {
			return errors.New("expect.error: a halted run has no error")
		}
	}
	if e.Pointer != nil && *e.Pointer < 0 {
		return fmt.Errorf("expect.pointer: must be non-negative, got %d", *e.Pointer)
	}
	return nil
}

// engineConfig applies the scenario's overrides to engine.DefaultConfig.
func (s *Scenario) engineConfig() (engine.Config, error) {
	cfg := engine.DefaultConfig()
	if s.TapeSize != 0 {
		cfg.TapeSize = s.TapeSize
	}
	if s.CellBits != 0 {
		cfg.CellBits = s.CellBits
	}
	bounds, err := engine.ParseBoundsPolicy(s.Bounds)
	if err != nil {
		return engine.Config{}, err
	}
	cfg.Bounds = bounds
	cfg.MaxSteps = s.MaxSteps

	if err := cfg.Validate(); err != nil {
		return engine.Config{}, err
	}
	return cfg, nil
}

// source returns the program text.
func (s *Scenario) source() (string, error) {
	if s.ProgramFile == "" {
		return s.Program, nil
	}
	data, err := os.ReadFile(s.ProgramFile)
	if err != nil {
		return "", fmt.Errorf("failed to read program file: %w", err)
	}
	return string(data), nil
}

func formatOrDefault(name string) string {
	if name == "" {
		return ioport.ASCII
	}
	return name
}
