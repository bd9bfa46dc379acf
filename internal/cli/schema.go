package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haskel/studycost/internal/feature"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the estimate form fields",
	Long:  `Print the fields the running server expects, in the order the model uses them.`,
	RunE:  runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	resp, err := NewClient().Schema()
	if err != nil {
		return fmt.Errorf("failed to get schema: %w", err)
	}

	if jsonOut {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Schema %s (range policy: %s)\n\n", resp.Version, resp.RangePolicy)
	fmt.Printf("  %-20s %-12s %s\n", "Field", "Kind", "Accepted values")
	for _, f := range resp.Fields {
		accepted := fmt.Sprintf("%g - %g", f.Min, f.Max)
		switch {
		case len(f.Options) > 0:
			accepted = strings.Join(f.Options, ", ")
		case f.Kind == feature.KindCategorical:
			accepted = "any"
		case f.Max == 0:
			accepted = fmt.Sprintf(">= %g", f.Min)
		}
		fmt.Printf("  %-20s %-12s %s\n", f.Name, f.Kind, accepted)
	}

	return nil
}
