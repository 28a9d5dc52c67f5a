// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ConversionStatus indicates the outcome of converting one mind-map file.
type ConversionStatus string

const (
	// ConversionNone means the output already existed and nothing was written.
	ConversionNone ConversionStatus = "none"
	// ConversionDone means the output was written with no warnings.
	ConversionDone ConversionStatus = "converted"
	// ConversionPartial means the output was written but warnings were raised
	// (for example, relationships that were dropped).
	ConversionPartial ConversionStatus = "partial"
	// ConversionFailed means a fatal error prevented any output.
	ConversionFailed ConversionStatus = "failed"
)

// MapFile describes one mind-map input and where its Markdown goes.
type MapFile struct {
	// Path is the local filesystem path to the .mmap/.xmmap input.
	Path string `json:"path" yaml:"path"`

	// Dir is Path's directory relative to the directory it was discovered
	// under. It is recreated below an output directory so maps with the
	// same name in different folders do not collide.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// OutputPath is the destination .md file. Empty means "next to Path".
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`

	// Status tracks the outcome of the last conversion.
	Status ConversionStatus `json:"status" yaml:"status"`

	// Warnings are the recoverable conditions raised during the last conversion.
	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}
