package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var referenceCmd = &cobra.Command{
	Use:   "reference",
	Short: "Show statistics about the loaded reference data",
	Long: `Load the reference datasets and display:
- Number of regulated substances and aliases
- Common ingredients and regulated substances flagged as common
- Aliases claimed by more than one substance`,
	Args: cobra.NoArgs,
	RunE: runReference,
}

func init() {
	rootCmd.AddCommand(referenceCmd)
}

func runReference(cmd *cobra.Command, args []string) error {
	idx, err := loadIndex()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	st := idx.Stats()
	if st.Substances == 0 && st.CommonIngredients == 0 {
		fmt.Fprintln(out, "No reference data loaded.")
		fmt.Fprintln(out, "Pass --substances and --common, or set reference paths in config.")
		return nil
	}

	fmt.Fprintf(out, "Substances:         %d\n", st.Substances)
	fmt.Fprintf(out, "Aliases:            %d\n", st.Aliases)
	fmt.Fprintf(out, "Common ingredients: %d\n", st.CommonIngredients)
	fmt.Fprintf(out, "Also common:        %d\n", st.CommonRegulated)
	fmt.Fprintf(out, "Alias collisions:   %d\n", st.Collisions)

	for _, c := range idx.Collisions() {
		fmt.Fprintf(out, "  %q: %s -> %s\n", c.Alias, c.Loser, c.Winner)
	}
	return nil
}
