// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// NoteStyle selects how topic notes are rendered.
type NoteStyle string

const (
	// NoteQuote renders each note paragraph as a block quote line.
	NoteQuote NoteStyle = "quote"
	// NoteFenced renders the whole note verbatim inside a fenced block.
	NoteFenced NoteStyle = "fenced"
)

// Nested list items only stay nested in CommonMark when the indent unit is
// at least the width of the "- " marker and under four extra spaces.
const (
	DefaultIndentWidth = 2
	MinIndentWidth     = 2
	MaxIndentWidth     = 4
)

// EmitConfig holds settings for the Markdown emitter.
type EmitConfig struct {
	// IndentWidth is the number of spaces per list nesting level (2..4, default 2).
	IndentWidth int `json:"indent" yaml:"indent"`

	// NoteStyle selects quote or fenced rendering for notes (default quote).
	NoteStyle NoteStyle `json:"note_style" yaml:"note_style"`

	// Relationships controls whether the trailing relationships section is emitted.
	Relationships bool `json:"relationships" yaml:"relationships"`

	// Icons controls whether icon annotations are appended to topic lines.
	Icons bool `json:"icons" yaml:"icons"`
}

// Validate checks the emitter settings.
func (c *EmitConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.IndentWidth, validation.Required, validation.Min(MinIndentWidth), validation.Max(MaxIndentWidth)),
		validation.Field(&c.NoteStyle, validation.Required, validation.In(NoteQuote, NoteFenced)),
	)
}

// ConversionConfig holds settings for converting files on disk.
type ConversionConfig struct {
	EmitConfig `yaml:",inline"`

	// OutputDir is the directory for .md outputs. Empty writes next to each input.
	OutputDir string `json:"out_dir,omitempty" yaml:"out_dir,omitempty"`

	// Overwrite replaces existing outputs instead of skipping them.
	Overwrite bool `json:"overwrite" yaml:"overwrite"`

	// Frontmatter prepends YAML frontmatter (source, title, converted_at).
	Frontmatter bool `json:"frontmatter" yaml:"frontmatter"`

	// HTML also writes an HTML preview next to each .md output.
	HTML bool `json:"html" yaml:"html"`

	// Jobs bounds parallel conversions in a batch. 0 uses one worker per CPU.
	Jobs int `json:"jobs" yaml:"jobs"`

	// LogLevel sets the diagnostic log level.
	LogLevel slog.Level `json:"log_level" yaml:"log_level"`
}

// Validate checks the conversion settings.
func (c *ConversionConfig) Validate() error {
	if err := c.EmitConfig.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Jobs, validation.Min(0)),
	)
}

// DefaultEmitConfig returns the emitter defaults.
func DefaultEmitConfig() EmitConfig {
	return EmitConfig{
		IndentWidth:   DefaultIndentWidth,
		NoteStyle:     NoteQuote,
		Relationships: true,
		Icons:         true,
	}
}

// DefaultConversionConfig returns the conversion defaults.
func DefaultConversionConfig() ConversionConfig {
	return ConversionConfig{
		EmitConfig: DefaultEmitConfig(),
		LogLevel:   slog.LevelInfo,
	}
}
