package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haskel/studycost/internal/estimate"
)

// Exit codes from sysexits.h.
const (
	ExitDataErr  = 65 // EX_DATAERR: the input failed validation
	ExitSoftware = 70 // EX_SOFTWARE: the model could not produce an estimate
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the total annual cost of study",
	Long: `Submit field values to the running server and print the estimated
total annual cost.

Examples:
  studycost estimate --set Tuition_USD=20000 --set Rent_USD=800 ...
  studycost estimate --session <id> --set Level=Master ...`,
	RunE: runEstimate,
}

var (
	estimateSets    []string
	estimateSession string
)

func init() {
	estimateCmd.Flags().StringArrayVar(&estimateSets, "set", nil, "field value as Name=value (repeatable)")
	estimateCmd.Flags().StringVar(&estimateSession, "session", "", "session ID to remember the result in")
	rootCmd.AddCommand(estimateCmd)
}

// parseSets turns Name=value pairs into an estimate input.
// Numbers are sent as JSON numbers, an empty value as null.
func parseSets(sets []string) (estimate.Input, error) {
	input := make(estimate.Input, len(sets))
	for _, s := range sets {
		name, value, ok := strings.Cut(s, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q (expected Name=value)", s)
		}

		value = strings.TrimSpace(value)
		if value == "" {
			input[name] = nil
		} else if n, err := strconv.ParseFloat(value, 64); err == nil {
			input[name] = n
		} else {
			input[name] = value
		}
	}
	return input, nil
}

func runEstimate(cmd *cobra.Command, args []string) error {
	input, err := parseSets(estimateSets)
	if err != nil {
		return err
	}

	resp, err := NewClient().Estimate(input, estimateSession)

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		code := 0
		switch apiErr.Status {
		case http.StatusBadRequest:
			code = ExitDataErr
		case http.StatusUnprocessableEntity:
			code = ExitSoftware
		}
		if code != 0 {
			printEstimateError(apiErr)
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true
			return &ExitError{Code: code, Err: apiErr}
		}
	}
	if err != nil {
		return fmt.Errorf("failed to estimate: %w", err)
	}

	if jsonOut {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Estimated Total Annual Cost: %s\n", resp.Formatted)
	if resp.SessionID != "" && verbose {
		fmt.Printf("Session: %s\n", resp.SessionID)
	}

	if len(resp.Importances) > 0 {
		fmt.Println("\nFeature importance:")
		for _, imp := range resp.Importances {
			fmt.Printf("  %-20s %5.1f%%\n", imp.Name, imp.Weight*100)
		}
	} else if resp.ImportanceNote != "" {
		fmt.Printf("\n%s\n", resp.ImportanceNote)
	}

	return nil
}

func printEstimateError(e *APIError) {
	if jsonOut {
		data, _ := json.Marshal(e.ErrorResponse)
		fmt.Println(string(data))
		return
	}

	switch e.Kind {
	case estimate.KindValidation:
		fmt.Printf("Invalid input: %s\n", e.Message)
	case estimate.KindInference:
		fmt.Printf("Error making prediction: %s\n", e.Message)
	default:
		fmt.Printf("Error: %s\n", e.Message)
	}
}
