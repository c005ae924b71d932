package main

import (
	"github.com/spf13/cobra"

	"github.com/foodtrust/backend/config"
	"github.com/foodtrust/backend/internal/reference"
)

var (
	// Global flags; empty values fall back to configuration.
	substancesPath      string
	commonPath          string
	commonRegulatedPath string
	verbose             bool
)

var rootCmd = &cobra.Command{
	Use:   "foodtrust",
	Short: "Classify food ingredient declarations against the FDA substance inventory",
	Long: `foodtrust sorts every ingredient of a food label into regulated
additives, regulated substances that are also everyday foods, common foods
and unidentified phrases, then scores completeness and processing level.

Examples:
  # Classify a declaration
  foodtrust classify "Water, Sugar, Citric Acid, Red 40"

  # Show reference data counts and alias collisions
  foodtrust reference

  # Look up a product by GTIN (needs FOODTRUST_USDA_API_KEY)
  foodtrust lookup 012345678905`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&substancesPath, "substances", "", "FDA substances dataset (JSON or YAML)")
	rootCmd.PersistentFlags().StringVar(&commonPath, "common", "", "common ingredients dataset (JSON or YAML)")
	rootCmd.PersistentFlags().StringVar(&commonRegulatedPath, "common-regulated", "", "regulated substances that are also everyday foods")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log reference loading")
}

// referencePaths merges the path flags over configuration.
func referencePaths(cfg *config.Config) reference.Paths {
	paths := reference.Paths{
		Substances:        cfg.Reference.SubstancesPath,
		CommonIngredients: cfg.Reference.CommonIngredientsPath,
		CommonRegulated:   cfg.Reference.CommonRegulatedPath,
	}
	if substancesPath != "" {
		paths.Substances = substancesPath
	}
	if commonPath != "" {
		paths.CommonIngredients = commonPath
	}
	if commonRegulatedPath != "" {
		paths.CommonRegulated = commonRegulatedPath
	}
	return paths
}
