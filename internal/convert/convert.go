// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert is the mind-map to Markdown conversion entry point. The
// Engine composes the container reader and the Markdown emitter in a single
// pass; ConvertFile and ConvertBatch add the on-disk side (output naming,
// skip-if-exists, frontmatter, atomic writes) used by the CLI.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/natefinch/atomic"
	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/mmap2md/internal/container"
	"github.com/pdiddy/mmap2md/internal/markdown"
	"github.com/pdiddy/mmap2md/pkg/types"
)

const (
	markdownExt = ".md"
	htmlExt     = ".html"
)

// Result is the outcome of one successful conversion.
type Result struct {
	Document *types.Document
	Markdown string
	Warnings []types.Warning
}

// Converter turns a mind-map file into Markdown. Engine is the production
// implementation; tests substitute fakes.
type Converter interface {
	// Convert reads the map at path and returns its Markdown rendering. Fatal
	// failures are *types.ConversionError values; recoverable ones are in
	// Result.Warnings.
	Convert(path string) (*Result, error)
}

// Engine converts mind maps with a fixed emitter configuration. Each call
// builds and discards its own Document, so an Engine may be shared by
// concurrent callers.
type Engine struct {
	emitter *markdown.Emitter
}

// NewEngine creates an Engine.
func NewEngine(cfg types.EmitConfig) *Engine {
	return &Engine{emitter: markdown.NewEmitter(cfg)}
}

// Convert reads the map at path and emits Markdown. No output is returned
// for fatal errors.
func (e *Engine) Convert(path string) (*Result, error) {
	doc, err := container.ReadFile(path)
	if err != nil {
		return nil, err
	}
	md, warnings := e.emitter.Emit(doc)
	return &Result{Document: doc, Markdown: md, Warnings: warnings}, nil
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Partial   int
	Skipped   int
	Failed    int
}

// Total returns the total number of maps processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Partial + r.Skipped + r.Failed
}

// HasFailures reports whether any map failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

func (r *BatchResult) add(status types.ConversionStatus) {
	switch status {
	case types.ConversionDone:
		r.Converted++
	case types.ConversionPartial:
		r.Partial++
	case types.ConversionNone:
		r.Skipped++
	case types.ConversionFailed:
		r.Failed++
	}
}

// OutputPath returns where the Markdown for a map goes: OutputPath when set,
// otherwise <stem>.md in outDir/<m.Dir>, or next to the input when outDir
// is empty.
func OutputPath(m types.MapFile, outDir string) string {
	if m.OutputPath != "" {
		return m.OutputPath
	}
	base := strings.TrimSuffix(filepath.Base(m.Path), filepath.Ext(m.Path))
	dir := filepath.Dir(m.Path)
	if outDir != "" {
		dir = filepath.Join(outDir, m.Dir)
	}
	return filepath.Join(dir, base+markdownExt)
}

// ConvertFile converts a single map and writes the result to disk, logging
// one status line (plus one line per warning) to w. Existing outputs are
// skipped unless cfg.Overwrite is set. The returned MapFile carries the
// status and any warnings.
func ConvertFile(c Converter, m types.MapFile, cfg types.ConversionConfig, w io.Writer) types.MapFile {
	mdPath := OutputPath(m, cfg.OutputDir)
	m.OutputPath = mdPath
	name := filepath.Base(mdPath)

	if !cfg.Overwrite {
		if _, err := os.Stat(mdPath); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", name)
			m.Status = types.ConversionNone
			return m
		}
	}

	fail := func(err error) types.MapFile {
		fmt.Fprintf(w, "failed:  %s (%v)\n", filepath.Base(m.Path), err)
		m.Status = types.ConversionFailed
		return m
	}

	res, err := c.Convert(m.Path)
	if err != nil {
		return fail(err)
	}

	content := res.Markdown
	if cfg.Frontmatter {
		content, err = addFrontmatter(m.Path, res.Document, content, time.Now().UTC())
		if err != nil {
			return fail(err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(mdPath), 0o755); err != nil {
		return fail(err)
	}
	if err := atomic.WriteFile(mdPath, strings.NewReader(content)); err != nil {
		return fail(err)
	}

	if cfg.HTML {
		page, err := markdown.RenderHTML([]byte(res.Markdown), title(res.Document))
		if err != nil {
			return fail(err)
		}
		htmlPath := strings.TrimSuffix(mdPath, filepath.Ext(mdPath)) + htmlExt
		if err := atomic.WriteFile(htmlPath, bytes.NewReader(page)); err != nil {
			return fail(err)
		}
	}

	m.Warnings = res.Warnings
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "warning: %s: %s\n", filepath.Base(m.Path), warn)
	}

	size := humanize.Bytes(uint64(len(content)))
	if len(res.Warnings) > 0 {
		fmt.Fprintf(w, "partial: %s (%s, %d warning(s))\n", name, size, len(res.Warnings))
		m.Status = types.ConversionPartial
		return m
	}
	fmt.Fprintf(w, "converted: %s (%s)\n", name, size)
	m.Status = types.ConversionDone
	return m
}

// ConvertBatch converts maps on up to cfg.Jobs workers (one per CPU when
// zero). Each conversion owns its Document; nothing is shared between
// workers. Status lines are buffered per map and written to w in input
// order, followed by a summary. Maps not yet started when ctx is cancelled
// are reported as failed, as are maps whose output path was already claimed
// by an earlier map in the batch.
func ConvertBatch(ctx context.Context, c Converter, maps []types.MapFile, cfg types.ConversionConfig, w io.Writer) ([]types.MapFile, BatchResult) {
	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	out := make([]types.MapFile, len(maps))
	logs := make([]bytes.Buffer, len(maps))

	claimed := make(map[string]string, len(maps))
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, m := range maps {
		m.OutputPath = OutputPath(m, cfg.OutputDir)
		key := filepath.Clean(m.OutputPath)
		if first, dup := claimed[key]; dup {
			fmt.Fprintf(&logs[i], "failed:  %s (output %s already produced by %s)\n",
				filepath.Base(m.Path), m.OutputPath, first)
			m.Status = types.ConversionFailed
			out[i] = m
			continue
		}
		claimed[key] = m.Path

		i, m := i, m
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				fmt.Fprintf(&logs[i], "failed:  %s (%v)\n", filepath.Base(m.Path), err)
				m.Status = types.ConversionFailed
				out[i] = m
				return nil
			}
			out[i] = ConvertFile(c, m, cfg, &logs[i])
			return nil
		})
	}
	_ = g.Wait()

	var result BatchResult
	for i := range maps {
		_, _ = w.Write(logs[i].Bytes())
		result.add(out[i].Status)
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d partial, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Partial, result.Skipped, result.Failed, result.Total())
	return out, result
}

// ConvertPaths builds MapFile records from paths and delegates to
// ConvertBatch. The paths carry no discovery root, so outputs land directly
// in cfg.OutputDir.
func ConvertPaths(ctx context.Context, c Converter, paths []string, cfg types.ConversionConfig, w io.Writer) ([]types.MapFile, BatchResult) {
	maps := make([]types.MapFile, len(paths))
	for i, p := range paths {
		maps[i] = types.MapFile{Path: p}
	}
	return ConvertBatch(ctx, c, maps, cfg, w)
}

// frontmatter is the YAML header written ahead of the Markdown body.
type frontmatter struct {
	Title       string `yaml:"title,omitempty"`
	Source      string `yaml:"source"`
	ConvertedAt string `yaml:"converted_at"`
}

// addFrontmatter prepends YAML frontmatter to the converted Markdown.
func addFrontmatter(source string, doc *types.Document, body string, now time.Time) (string, error) {
	data, err := yaml.Marshal(frontmatter{
		Title:       title(doc),
		Source:      source,
		ConvertedAt: now.Format(time.RFC3339),
	})
	if err != nil {
		return "", fmt.Errorf("marshaling frontmatter: %w", err)
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(data)
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String(), nil
}

func title(doc *types.Document) string {
	if doc == nil || doc.Root == nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Root.PlainText()), " ")
}
