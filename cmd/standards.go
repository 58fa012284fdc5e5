package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tupiza-labs/metalscan/internal/measure"
)

var standardsMatrix string

var standardsCmd = &cobra.Command{
	Use:   "standards",
	Short: "List the reference standards the assessment compares against",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := buildContext()
		if err != nil {
			return err
		}
		var matrix measure.Matrix
		if standardsMatrix != "" {
			matrix, err = measure.ParseMatrix(standardsMatrix)
			if err != nil {
				return err
			}
		}
		fmt.Println("| Parameter | Matrix | Limit | Unit | Source |")
		fmt.Println("| --- | --- | --- | --- | --- |")
		for _, std := range ctx.Standards.All() {
			if matrix != "" && std.Matrix != matrix {
				continue
			}
			unit := std.Unit
			if unit == "" {
				unit = "-"
			}
			fmt.Printf("| %s | %s | %g | %s | %s |\n",
				std.Parameter, std.Matrix, std.Limit, unit, std.Source)
		}
		return nil
	},
}

func init() {
	standardsCmd.Flags().StringVar(&standardsMatrix, "matrix", "", "only list standards for this sample matrix")
	rootCmd.AddCommand(standardsCmd)
}
