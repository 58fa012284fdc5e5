package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tupiza-labs/metalscan/internal/measure"
	"github.com/tupiza-labs/metalscan/internal/pipeline"
	"github.com/tupiza-labs/metalscan/internal/report"
	"github.com/tupiza-labs/metalscan/internal/table"
)

var (
	assessMatrix      string
	assessOrientation string
	assessSheetName   string
	assessSheetIndex  int
	assessStations    string
	assessDelimiter   string
	assessOutputPath  string
)

var assessCmd = &cobra.Command{
	Use:   "assess <file...>",
	Short: "Run the contamination assessment over one or more wide tables",
	Long: `Each input file becomes one report section. A file that fails to parse
aborts only its own section; sibling sections still run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := buildContext()
		if err != nil {
			return err
		}
		sections, err := buildSections(args)
		if err != nil {
			return err
		}
		debugf("run %s: %d section(s)", ctx.RunID, len(sections))

		res := pipeline.Run(ctx, sections)
		for _, sec := range res.Sections {
			if sec.Err != nil {
				fmt.Fprintf(os.Stderr, "⚠ Section %s failed: %v\n", sec.Section.Name, sec.Err)
			}
		}

		md := report.Markdown(res)
		if assessOutputPath != "" {
			if err := os.WriteFile(assessOutputPath, []byte(md), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote assessment to %s\n", assessOutputPath)
		} else {
			fmt.Print(md)
		}

		if res.Failed() {
			return fmt.Errorf("all %d section(s) failed", len(res.Sections))
		}
		return nil
	},
}

// buildSections maps input paths plus the shared flags onto pipeline
// sections.
func buildSections(paths []string) ([]pipeline.Section, error) {
	matrixName := assessMatrix
	if matrixName == "" && cfg != nil {
		matrixName = cfg.DefaultMatrix
	}
	matrix, err := measure.ParseMatrix(matrixName)
	if err != nil {
		return nil, err
	}

	var orientation table.Orientation
	switch strings.ToLower(strings.TrimSpace(assessOrientation)) {
	case "", "rows":
		orientation = table.ParamsInRows
	case "columns", "cols":
		orientation = table.ParamsInColumns
	default:
		return nil, fmt.Errorf("unsupported --orientation: %s (use rows|columns)", assessOrientation)
	}

	var delim rune
	switch assessDelimiter {
	case "":
	case ",":
		delim = ','
	case ";":
		delim = ';'
	case "\t", "tab":
		delim = '\t'
	default:
		return nil, fmt.Errorf("unsupported --delimiter: %s", assessDelimiter)
	}

	sections := make([]pipeline.Section, 0, len(paths))
	for _, p := range paths {
		sections = append(sections, pipeline.Section{
			Name:         strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)),
			Path:         p,
			Matrix:       matrix,
			Orientation:  orientation,
			SheetName:    assessSheetName,
			SheetIndex:   assessSheetIndex,
			StationsPath: assessStations,
			Delimiter:    delim,
		})
	}
	return sections, nil
}

func init() {
	assessCmd.Flags().StringVar(&assessMatrix, "matrix", "", "sample matrix: water|soil|sediment|vegetation|fish|blood (default from config)")
	assessCmd.Flags().StringVar(&assessOrientation, "orientation", "rows", "axis carrying the parameters: rows|columns")
	assessCmd.Flags().StringVar(&assessSheetName, "sheet-name", "", "XLSX sheet to read, by name")
	assessCmd.Flags().IntVar(&assessSheetIndex, "sheet-index", 0, "XLSX sheet to read, 1-based (default first)")
	assessCmd.Flags().StringVar(&assessStations, "stations", "", "station metadata CSV (station_id,code,basin,date,latitude,longitude)")
	assessCmd.Flags().StringVar(&assessDelimiter, "delimiter", "", "CSV delimiter (default: sniffed)")
	assessCmd.Flags().StringVarP(&assessOutputPath, "output", "o", "", "write the markdown report to a file instead of stdout")
	rootCmd.AddCommand(assessCmd)
}
