package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haskel/studycost/internal/dataset"
)

var edaCmd = &cobra.Command{
	Use:   "eda",
	Short: "Show the reference dataset summary",
	Long:  `Print summary statistics of the dataset loaded by the running server.`,
	RunE:  runEDA,
}

func init() {
	rootCmd.AddCommand(edaCmd)
}

func runEDA(cmd *cobra.Command, args []string) error {
	var summary dataset.Summary
	if err := NewClient().getJSON("/v1/eda/summary", &summary); err != nil {
		return fmt.Errorf("failed to get dataset summary: %w", err)
	}

	if jsonOut {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	printSummary(&summary)
	return nil
}

func printSummary(s *dataset.Summary) {
	fmt.Printf("=== Dataset (%d rows) ===\n", s.Rows)

	fmt.Printf("\n  %-18s %10s %10s %10s %10s %10s\n", "Column", "Mean", "Std", "Min", "Median", "Max")
	for _, c := range s.Columns {
		fmt.Printf("  %-18s %10.1f %10.1f %10.1f %10.1f %10.1f\n", c.Name, c.Mean, c.Std, c.Min, c.Median, c.Max)
	}

	if len(s.CostByCountry) > 0 {
		fmt.Printf("\nAverage total cost by country:\n")
		for _, g := range s.CostByCountry {
			fmt.Printf("  %-18s %12.0f  (%d rows)\n", g.Name, g.Average, g.Count)
		}
	}

	if len(s.LevelShare) > 0 {
		fmt.Printf("\nLevel share:\n")
		for _, l := range s.LevelShare {
			fmt.Printf("  %-18s %5.1f%%\n", l.Name, l.Fraction*100)
		}
	}
}
