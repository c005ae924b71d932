package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foodtrust/backend/config"
	"github.com/foodtrust/backend/internal/domain"
	"github.com/foodtrust/backend/internal/reference"
	"github.com/foodtrust/backend/internal/usecase"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [INGREDIENTS]",
	Short: "Classify an ingredient declaration",
	Long: `Classify every phrase of an ingredient declaration and estimate the
product's processing level. Pass "-" to read the declaration from stdin.

Examples:
  foodtrust classify "INGREDIENTS: Enriched Flour (Wheat Flour, Niacin), Salt"
  echo "Water, Sugar" | foodtrust classify - --json`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

var classifyJSON bool

func init() {
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	raw := args[0]
	if raw == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		raw = string(data)
	}

	idx, err := loadIndex()
	if err != nil {
		return err
	}

	result := usecase.Classify(raw, idx)

	out := cmd.OutOrStdout()
	if classifyJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printResultText(out, result)
	return nil
}

// loadIndex builds the reference index from flags and configuration. It does
// not need a USDA key.
func loadIndex() (*reference.Index, error) {
	cfg, err := config.Read()
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, err
		}
	}
	return reference.LoadIndex(referencePaths(cfg), reference.WithLogger(logger)), nil
}

func printResultText(w io.Writer, r domain.ClassificationResult) {
	fmt.Fprintf(w, "Processing:   %d - %s\n", r.ProcessingLevel, r.ProcessingDescription)
	fmt.Fprintf(w, "Completeness: %.2f%% (%s)\n", r.CompletenessScore, r.CompletenessLevel)
	printList(w, "Regulated additives", r.RegulatedNonCommon)
	printList(w, "Regulated, also common", r.RegulatedCommon)
	printList(w, "Common foods", r.CommonOnly)
	printList(w, "Unidentified", r.Unidentified)
	fmt.Fprintln(w, r.Disclaimer)
}

func printList(w io.Writer, label string, names []string) {
	if len(names) == 0 {
		fmt.Fprintf(w, "%s: none\n", label)
		return
	}
	fmt.Fprintf(w, "%s (%d): %s\n", label, len(names), strings.Join(names, ", "))
}
