package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MatheusDSantossi/data-analyses-automate/internal/dataset"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/pipeline"
)

var (
	anaSampleLimit int
	anaMaxCharts   int
	anaTopN        int
	anaNoAI        bool
	anaJSON        bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a spreadsheet and recommend charts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := dataset.ParseFile(args[0])
		if err != nil {
			return err
		}
		log := newLogger()
		analyzer := pipeline.NewAnalyzer(newGenerator(), log, pipelineOptions(anaSampleLimit, anaMaxCharts, anaTopN, anaNoAI))
		controller := pipeline.NewController(analyzer, log)
		analysis, err := controller.Analyze(cmd.Context(), ds)
		if err != nil {
			return err
		}
		if anaJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(analysis)
		}
		printAnalysis(analysis)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().IntVar(&anaSampleLimit, "sample-limit", 0, "rows sampled for column classification (default from config)")
	analyzeCmd.Flags().IntVar(&anaMaxCharts, "max-charts", 0, "maximum charts to recommend (default from config)")
	analyzeCmd.Flags().IntVar(&anaTopN, "top-n", 0, "truncate grouped charts to the N largest groups")
	analyzeCmd.Flags().BoolVar(&anaNoAI, "no-ai", false, "skip the AI call and build charts from the dataset structure only")
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "print the full analysis as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func printAnalysis(a *pipeline.Analysis) {
	fmt.Printf("Dataset: %s (%d rows)\n\n", a.Name, a.RowCount)
	fmt.Println("Columns:")
	for _, p := range a.Profiles {
		extra := ""
		if p.NumericRange != nil {
			extra = fmt.Sprintf("  [%.2f .. %.2f]", p.NumericRange.Min, p.NumericRange.Max)
		}
		fmt.Printf("  %-24s %-12s%s\n", p.Name, p.Kind, extra)
	}
	if len(a.Cards) > 0 {
		fmt.Println("\nCards:")
		for _, c := range a.Cards {
			fmt.Printf("  %-28s %s\n", c.Title+":", c.Value)
		}
	}
	fmt.Println("\nCharts:")
	for _, ch := range a.Charts {
		if !ch.Valid {
			fmt.Printf("  ✗ %s (%s): %s\n", ch.Title, ch.Kind, ch.Error)
			continue
		}
		fmt.Printf("  ✓ %s (%s)\n", ch.Title, ch.Kind)
		rec := ch.Recommendation
		binding := rec.Metric
		if rec.GroupBy != "" {
			binding = strings.TrimSpace(binding + " by " + rec.GroupBy)
		}
		if binding != "" {
			fmt.Printf("      %s, %s\n", binding, rec.Aggregation)
		}
		if ch.Payload != nil {
			switch {
			case len(ch.Payload.GroupRows) > 0:
				fmt.Printf("      %d groups\n", len(ch.Payload.GroupRows))
			case len(ch.Payload.Categories) > 0:
				fmt.Printf("      %d buckets, %d series\n", len(ch.Payload.Categories), len(ch.Payload.Series))
			}
		}
		if rec.Explain != "" {
			fmt.Printf("      %s\n", rec.Explain)
		}
	}
}
