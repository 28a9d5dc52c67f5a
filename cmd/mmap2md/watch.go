package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/mmap2md/internal/convert"
	"github.com/pdiddy/mmap2md/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Re-convert mind maps whenever they change",
	Long: `Watch converts every map under the directory (default: current
directory), then keeps running and re-converts each .mmap or .xmmap file
that is created or saved. Outputs are always overwritten while watching.
Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	addConversionFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a changed map is converted")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	cfg, err := loadConversionConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Overwrite = true
	debounce, _ := cmd.Flags().GetDuration("debounce")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine := convert.NewEngine(cfg.EmitConfig)
	out := cmd.OutOrStdout()

	initial, err := convert.Discover([]string{root})
	if err != nil {
		return err
	}
	if len(initial) > 0 {
		convert.ConvertBatch(ctx, engine, initial, cfg, out)
	}

	return watch.Watch(ctx, root, logger, debounce, func(paths []string) {
		_, result := convert.ConvertBatch(ctx, engine, convert.Under(root, paths), cfg, out)
		logger.Debug("watch: batch done", slog.Int("total", result.Total()), slog.Int("failed", result.Failed))
	})
}
