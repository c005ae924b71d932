package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/foodtrust/backend/config"
	"github.com/foodtrust/backend/internal/app"
	"github.com/foodtrust/backend/internal/domain"
	"github.com/foodtrust/backend/internal/usecase"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [GTIN]",
	Short: "Look up and classify a product by GTIN",
	Long: `Fetch a branded product from USDA FoodData Central by GTIN/UPC and
classify its ingredients. Uses the same configuration as the server,
including the durable store when store.type is sqlite.

Examples:
  FOODTRUST_USDA_API_KEY=... foodtrust lookup 012345678905`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

var (
	lookupJSON    bool
	lookupTimeout time.Duration
)

func init() {
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "output result as JSON")
	lookupCmd.Flags().DurationVar(&lookupTimeout, "timeout", 30*time.Second, "lookup timeout")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ref := referencePaths(cfg)
	cfg.Reference.SubstancesPath = ref.Substances
	cfg.Reference.CommonIngredientsPath = ref.CommonIngredients
	cfg.Reference.CommonRegulatedPath = ref.CommonRegulated
	if !verbose {
		cfg.Log.Level = "error"
	}

	var service *usecase.LookupService
	fxApp := fx.New(
		fx.Supply(cfg),
		app.Core,
		fx.Populate(&service),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(cmd.Context(), lookupTimeout)
	defer cancel()

	if err := fxApp.Start(ctx); err != nil {
		return fmt.Errorf("starting: %w", err)
	}
	defer fxApp.Stop(context.Background())

	analysis, err := service.Lookup(ctx, args[0])
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidGTIN):
			return fmt.Errorf("invalid GTIN %q: expected 8 to 14 digits", args[0])
		case errors.Is(err, domain.ErrProductNotFound):
			return fmt.Errorf("product not found in USDA FoodData Central")
		}
		return fmt.Errorf("lookup failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if lookupJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	fmt.Fprintf(out, "GTIN:         %s\n", analysis.GTIN)
	fmt.Fprintf(out, "Product:      %s\n", analysis.Description)
	if analysis.BrandOwner != "" {
		fmt.Fprintf(out, "Brand owner:  %s\n", analysis.BrandOwner)
	}
	fmt.Fprintf(out, "FDC ID:       %s\n", analysis.FdcID)
	fmt.Fprintf(out, "Source:       %s\n", analysis.Source)
	printResultText(out, analysis.Result)
	return nil
}
