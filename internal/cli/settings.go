package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/bfi/internal/config"
	"github.com/roach88/bfi/internal/engine"
	"github.com/roach88/bfi/internal/ioport"
)

// EngineFlags are the execution flags shared by run and repl.
// Only flags set on the command line override the config file.
type EngineFlags struct {
	Input     string
	Output    string
	EOF       string
	Separator string
	TapeSize  int
	CellBits  int
	Bounds    string
	MaxSteps  int
}

func (f *EngineFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.Input, "input", ioport.ASCII, "input preset (ascii|decimal|latin1)")
	flags.StringVar(&f.Output, "output", ioport.ASCII, "output preset (ascii|decimal|latin1)")
	flags.StringVar(&f.EOF, "eof", ioport.EOFZero.String(), "end of input policy (zero|minus-one|error)")
	flags.StringVar(&f.Separator, "separator", ioport.DefaultSeparator, "separator written after each decimal value")
	flags.IntVar(&f.TapeSize, "tape-size", engine.DefaultTapeSize, "number of tape cells")
	flags.IntVar(&f.CellBits, "cell-bits", engine.DefaultCellBits, "cell width in bits (8|16|32)")
	flags.StringVar(&f.Bounds, "bounds", engine.BoundsReject.String(), "pointer bounds policy (reject|wrap)")
	flags.IntVar(&f.MaxSteps, "max-steps", 0, "fault after this many instructions (0 = unlimited)")
}

// apply copies changed flags onto cfg.
func (f *EngineFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.IO.Input = f.Input
	}
	if flags.Changed("output") {
		cfg.IO.Output = f.Output
	}
	if flags.Changed("eof") {
		cfg.IO.EOF = f.EOF
	}
	if flags.Changed("separator") {
		cfg.IO.Separator = f.Separator
	}
	if flags.Changed("tape-size") {
		cfg.Engine.TapeSize = f.TapeSize
	}
	if flags.Changed("cell-bits") {
		cfg.Engine.CellBits = f.CellBits
	}
	if flags.Changed("bounds") {
		cfg.Engine.Bounds = f.Bounds
	}
	if flags.Changed("max-steps") {
		cfg.Engine.MaxSteps = f.MaxSteps
	}
}

// Execution is everything needed to run programs with the merged settings.
type Execution struct {
	Config    config.Config
	Engine    engine.Config
	Input     ioport.Preset
	Output    ioport.Preset
	EOF       ioport.EOFPolicy
	Separator string
}

// resolveExecution merges the config file with the command flags.
// Unknown presets fail before schema validation so they keep their own
// error code.
func resolveExecution(opts *RootOptions, flags *EngineFlags, cmd *cobra.Command) (Execution, error) {
	cfg, err := opts.Settings()
	if err != nil {
		return Execution{}, err
	}
	flags.apply(cmd, &cfg)

	in, err := ioport.Lookup(cfg.IO.Input)
	if err != nil {
		return Execution{}, err
	}
	out, err := ioport.Lookup(cfg.IO.Output)
	if err != nil {
		return Execution{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Execution{}, err
	}
	ecfg, err := cfg.EngineConfig()
	if err != nil {
		return Execution{}, err
	}
	eof, err := cfg.EOFPolicy()
	if err != nil {
		return Execution{}, err
	}

	return Execution{
		Config:    cfg,
		Engine:    ecfg,
		Input:     in,
		Output:    out,
		EOF:       eof,
		Separator: cfg.IO.Separator,
	}, nil
}
