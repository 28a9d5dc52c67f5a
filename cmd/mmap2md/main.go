// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the mmap2md CLI. It converts
// MindManager .mmap/.xmmap mind maps into CommonMark Markdown outlines.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// configName is the config file's base name in every search directory.
const configName = "mmap2md"

// logger carries diagnostics to stderr. Per-file status lines are written
// to stdout by the convert package and are not affected by log-level.
var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

// rootCmd is the base command for the mmap2md CLI.
var rootCmd = &cobra.Command{
	Use:   "mmap2md",
	Short: "Convert MindManager mind maps to Markdown",
	Long: `mmap2md reads MindManager mind maps (.mmap zip containers and bare
.xmmap XML documents) and writes a Markdown outline of each one: the central
topic as a heading, subtopics as nested list items, notes as quotes or fenced
blocks, and cross-links in a trailing Relationships section.

Settings come from flags, MMAP2MD_* environment variables (a .env file in
the working directory is loaded first), and an optional mmap2md.yaml.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlag("log-level", cmd.Root().PersistentFlags().Lookup("log-level")); err != nil {
			return err
		}
		level, err := parseLevel(viper.GetString("log-level"))
		if err != nil {
			return err
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", slog.String("path", used))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./"+configName+".yaml or ~/.config/mmap2md/"+configName+".yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "diagnostic log level: debug, info, warn, or error")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "mmap2md"))
		}
	}

	viper.SetEnvPrefix("MMAP2MD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		fmt.Fprintln(os.Stderr, "Error reading config file:", err)
	}
}

// parseLevel maps a level name onto slog.Level.
func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log-level %q: %w", s, err)
	}
	return level, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
