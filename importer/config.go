package importer

import "github.com/creasty/defaults"

// Config controls how declaration sources are processed.
type Config struct {
	// TreatAsFile interprets the source string as a path instead of raw
	// declaration text.
	TreatAsFile bool `toml:"treat_as_file" default:"true"`

	// DefineMacros enables the [macros] table; member values and array
	// counts may then reference macros by name.
	DefineMacros bool `toml:"define_macros" default:"true"`

	// SuppressWarnings silences non-fatal import warnings such as an
	// unrecognized calling convention.
	SuppressWarnings bool `toml:"suppress_warnings" default:"true"`
}

// DefaultConfig returns the standard import configuration.
func DefaultConfig() Config {
	var c Config
	defaults.MustSet(&c)
	return c
}
