package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MatheusDSantossi/data-analyses-automate/internal/dataset"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/schema"
)

var (
	insSampleLimit int
	insJSON        bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show the inferred column schema of a spreadsheet without calling the AI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := dataset.ParseFile(args[0])
		if err != nil {
			return err
		}
		limit := insSampleLimit
		if limit <= 0 && cfg != nil {
			limit = cfg.SampleLimit
		}
		profiles := schema.ClassifyColumns(ds, limit)
		if insJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(profiles)
		}
		fmt.Printf("Dataset: %s (%d rows, %d columns)\n\n", ds.Name, len(ds.Rows), len(profiles))
		for _, p := range profiles {
			fmt.Printf("%-24s %-12s unique=%d\n", p.Name, p.Kind, p.UniqueSampleCount)
			if p.NumericRange != nil {
				fmt.Printf("%-24s min=%.2f max=%.2f\n", "", p.NumericRange.Min, p.NumericRange.Max)
			}
			if len(p.SampleValues) > 0 {
				fmt.Printf("%-24s sample: %v\n", "", p.SampleValues)
			}
		}
		if dates := schema.DateColumns(profiles); len(dates) > 0 {
			fmt.Printf("\nDate columns: %v\n", dates)
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().IntVar(&insSampleLimit, "sample-limit", 0, "rows sampled for column classification (default from config)")
	inspectCmd.Flags().BoolVar(&insJSON, "json", false, "print profiles as JSON")
	rootCmd.AddCommand(inspectCmd)
}
