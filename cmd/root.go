package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tupiza-labs/metalscan/internal/classify"
	cfgpkg "github.com/tupiza-labs/metalscan/internal/config"
	"github.com/tupiza-labs/metalscan/internal/measure"
	"github.com/tupiza-labs/metalscan/internal/pipeline"
)

var (
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "metalscan",
	Short: "metalscan: heavy-metal contamination assessment over field tables",
	Long: `metalscan loads wide-format heavy-metal measurement tables (CSV/XLSX),
normalizes parameter names and units against a dictionary, classifies each
measurement against regulatory reference standards (WHO, Codex, CDC,
Ley 1333), and emits station and parameter contamination summaries.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.metalscan/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: the built-in assessment tables still work.
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{DefaultMatrix: "water", OutputDir: "."}
	}
	cfg = c
}

// buildContext assembles a pipeline context from the loaded configuration,
// falling back to the built-in assessment tables for unset paths.
func buildContext() (*pipeline.Context, error) {
	ctx := pipeline.NewContext()
	if cfg == nil {
		return ctx, nil
	}
	if cfg.DictionaryPath != "" {
		d, conv, err := measure.LoadDictionary(cfg.DictionaryPath)
		if err != nil {
			return nil, err
		}
		ctx.Dictionary = d
		ctx.Conversions = conv
	}
	if cfg.StandardsPath != "" {
		s, err := measure.LoadStandards(cfg.StandardsPath)
		if err != nil {
			return nil, err
		}
		ctx.Standards = s
	}
	if cfg.BreakpointsPath != "" {
		t, err := classify.LoadTable(cfg.BreakpointsPath)
		if err != nil {
			return nil, err
		}
		ctx.Breakpoints = t
	}
	if sep, err := parseSeparator(cfg.DecimalSeparator); err != nil {
		return nil, fmt.Errorf("decimal_separator: %w", err)
	} else {
		ctx.Parse.DecimalSeparator = sep
	}
	if sep, err := parseSeparator(cfg.ThousandsSeparator); err != nil {
		return nil, fmt.Errorf("thousands_separator: %w", err)
	} else {
		ctx.Parse.ThousandsSeparator = sep
	}
	return ctx, nil
}

func parseSeparator(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ".", "dot":
		return '.', nil
	case " ", "space":
		return ' ', nil
	}
	return 0, fmt.Errorf("unsupported separator %q (use '.'|','|'space')", s)
}

func debugf(format string, args ...any) {
	if debug {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
