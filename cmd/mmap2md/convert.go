package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/mmap2md/internal/convert"
	"github.com/pdiddy/mmap2md/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [maps or directories...]",
	Short: "Convert mind maps to Markdown",
	Long: `Convert reads each .mmap or .xmmap file and writes <name>.md next to it,
or into --out-dir. Directories are searched recursively for mind maps.
Existing outputs are skipped unless --overwrite is given.

Conversions that drop dangling relationships still produce output and are
reported as partial. A map that cannot be read produces no output and makes
the command exit non-zero once the rest of the batch has finished.`,
	RunE: runConvert,
}

func init() {
	addConversionFlags(convertCmd)
	convertCmd.Flags().Bool("stdout", false, "print Markdown to stdout instead of writing files")

	rootCmd.AddCommand(convertCmd)
}

// addConversionFlags registers the flags that make up a ConversionConfig.
func addConversionFlags(cmd *cobra.Command) {
	def := types.DefaultConversionConfig()
	cmd.Flags().Int("indent", def.IndentWidth, "spaces per list nesting level (2-4)")
	cmd.Flags().String("note-style", string(def.NoteStyle), "note rendering: quote or fenced")
	cmd.Flags().Bool("relationships", def.Relationships, "emit the trailing Relationships section")
	cmd.Flags().Bool("icons", def.Icons, "append topic icons as inline code")
	cmd.Flags().Bool("frontmatter", def.Frontmatter, "prepend YAML frontmatter (title, source, converted_at)")
	cmd.Flags().String("out-dir", def.OutputDir, "directory for .md outputs (default: next to each map)")
	cmd.Flags().Bool("overwrite", def.Overwrite, "replace existing outputs")
	cmd.Flags().Int("jobs", def.Jobs, "parallel conversions (0 = one per CPU)")
	cmd.Flags().Bool("html", def.HTML, "also write an HTML preview next to each .md")
}

// loadConversionConfig resolves flags, environment, and config file into a
// validated ConversionConfig.
func loadConversionConfig(cmd *cobra.Command) (types.ConversionConfig, error) {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return types.ConversionConfig{}, err
	}
	level, err := parseLevel(viper.GetString("log-level"))
	if err != nil {
		return types.ConversionConfig{}, err
	}

	cfg := types.ConversionConfig{
		EmitConfig: types.EmitConfig{
			IndentWidth:   viper.GetInt("indent"),
			NoteStyle:     types.NoteStyle(viper.GetString("note-style")),
			Relationships: viper.GetBool("relationships"),
			Icons:         viper.GetBool("icons"),
		},
		OutputDir:   viper.GetString("out-dir"),
		Overwrite:   viper.GetBool("overwrite"),
		Frontmatter: viper.GetBool("frontmatter"),
		HTML:        viper.GetBool("html"),
		Jobs:        viper.GetInt("jobs"),
		LogLevel:    level,
	}
	if err := cfg.Validate(); err != nil {
		return types.ConversionConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more .mmap/.xmmap files or directories")
	}

	cfg, err := loadConversionConfig(cmd)
	if err != nil {
		return err
	}
	maps, err := convert.Discover(args)
	if err != nil {
		return err
	}
	if len(maps) == 0 {
		return fmt.Errorf("no mind maps found in %v", args)
	}

	engine := convert.NewEngine(cfg.EmitConfig)

	if toStdout, _ := cmd.Flags().GetBool("stdout"); toStdout {
		return printMarkdown(cmd, engine, maps)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_, result := convert.ConvertBatch(ctx, engine, maps, cfg, cmd.OutOrStdout())
	if result.HasFailures() {
		return fmt.Errorf("%d map(s) failed conversion", result.Failed)
	}
	return nil
}

// printMarkdown writes each map's Markdown to stdout in input order.
// Warnings and failures go to the logger.
func printMarkdown(cmd *cobra.Command, c convert.Converter, maps []types.MapFile) error {
	out := cmd.OutOrStdout()
	failed := 0
	for i, m := range maps {
		p := m.Path
		res, err := c.Convert(p)
		if err != nil {
			logger.Error("conversion failed", slog.String("path", p), slog.String("error", err.Error()))
			failed++
			continue
		}
		for _, w := range res.Warnings {
			logger.Warn(w.Detail, slog.String("path", p), slog.String("kind", string(w.Kind)))
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprint(out, res.Markdown)
	}
	if failed > 0 {
		return fmt.Errorf("%d map(s) failed conversion", failed)
	}
	return nil
}
