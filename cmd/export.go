package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tupiza-labs/metalscan/internal/aggregate"
	"github.com/tupiza-labs/metalscan/internal/pipeline"
	"github.com/tupiza-labs/metalscan/internal/spatial"
	"github.com/tupiza-labs/metalscan/internal/utils"
)

var (
	exportFormat string
	exportOutput string
)

// exportSection is the JSON artifact for one section: the tabular hand-off
// the presentation layer consumes.
type exportSection struct {
	Name         string                          `json:"name"`
	Matrix       string                          `json:"matrix"`
	Error        string                          `json:"error,omitempty"`
	Stations     []aggregate.StationSummary      `json:"stations,omitempty"`
	Parameters   []aggregate.ParameterAssessment `json:"parameters,omitempty"`
	Untranslated []string                        `json:"untranslated,omitempty"`
	Warnings     []string                        `json:"warnings,omitempty"`
}

var exportCmd = &cobra.Command{
	Use:   "export <file...>",
	Short: "Run the assessment and write JSON or GeoJSON artifacts",
	Long: `export runs the same pipeline as assess and writes machine-readable
artifacts: "json" for the tabular summaries, "geojson" for the map-ready
station features. Stations without coordinates appear only in the JSON
output.`,
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
		res := pipeline.Run(ctx, sections)
		if res.Failed() {
			return fmt.Errorf("all %d section(s) failed", len(res.Sections))
		}

		out := exportOutput
		if out == "" {
			dir := "."
			if cfg != nil && cfg.OutputDir != "" {
				dir = cfg.OutputDir
			}
			if err := utils.EnsureDir(dir); err != nil {
				return fmt.Errorf("output dir: %w", err)
			}
			out = filepath.Join(dir, "assessment."+exportFormat)
		}

		var data []byte
		switch strings.ToLower(exportFormat) {
		case "json":
			payload := struct {
				RunID    string          `json:"run_id"`
				Sections []exportSection `json:"sections"`
			}{RunID: res.RunID.String()}
			for _, sec := range res.Sections {
				es := exportSection{
					Name:         sec.Section.Name,
					Matrix:       string(sec.Section.Matrix),
					Stations:     sec.ByStation,
					Parameters:   sec.ByParameter,
					Untranslated: sec.Untranslated,
					Warnings:     sec.Warnings,
				}
				if sec.Err != nil {
					es.Error = sec.Err.Error()
				}
				payload.Sections = append(payload.Sections, es)
			}
			data, err = utils.PrettyJSON(payload)
			if err != nil {
				return err
			}
		case "geojson":
			merged := spatial.FeatureCollection{Type: "FeatureCollection", Features: []spatial.Feature{}}
			for _, sec := range res.Sections {
				merged.Features = append(merged.Features, sec.Spatial.Collection.Features...)
			}
			data, err = utils.PrettyJSON(merged)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported --format: %s (use json|geojson)", exportFormat)
		}

		if err := utils.SafeWriteFile(out, data); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %s artifact to %s\n", exportFormat, out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "artifact format: json|geojson")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "artifact path (default <output_dir>/assessment.<format>)")
	exportCmd.Flags().StringVar(&assessMatrix, "matrix", "", "sample matrix (shared with assess)")
	exportCmd.Flags().StringVar(&assessOrientation, "orientation", "rows", "axis carrying the parameters: rows|columns")
	exportCmd.Flags().StringVar(&assessSheetName, "sheet-name", "", "XLSX sheet to read, by name")
	exportCmd.Flags().IntVar(&assessSheetIndex, "sheet-index", 0, "XLSX sheet to read, 1-based")
	exportCmd.Flags().StringVar(&assessStations, "stations", "", "station metadata CSV")
	exportCmd.Flags().StringVar(&assessDelimiter, "delimiter", "", "CSV delimiter (default: sniffed)")
	rootCmd.AddCommand(exportCmd)
}
