package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/badno/monito/internal/pricing"
)

var procureBudget float64

var procureCmd = &cobra.Command{
	Use:   "procure [name:quantity]...",
	Short: "Generate procurement recommendations for a shopping list",
	Long:  `Given a list of product_name:quantity pairs, pick the best supplier for each within an optional budget.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProcure,
}

func init() {
	procureCmd.Flags().Float64Var(&procureBudget, "budget", 0, "total budget limit (0 = unlimited)")
	rootCmd.AddCommand(procureCmd)
}

func runProcure(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	header.Println("\n  PROCUREMENT RECOMMENDATIONS")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	required := make([]pricing.RequiredProduct, 0, len(args))
	for _, arg := range args {
		name, qtyStr, ok := strings.Cut(arg, ":")
		qty := 1.0
		if ok {
			parsed, err := strconv.ParseFloat(qtyStr, 64)
			if err != nil {
				color.Red("  Error: invalid quantity in %q", arg)
				return err
			}
			qty = parsed
		}
		required = append(required, pricing.RequiredProduct{Name: name, Quantity: qty})
	}

	var budgetLimit *float64
	if procureBudget > 0 {
		budgetLimit = &procureBudget
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := loadConfig()
	a, err := connect(ctx, cfg)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer a.close()

	report, err := a.manager.ProcurementReport(ctx, required, budgetLimit)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	fmt.Printf("  Requested:        %d\n", report.ProductsRequested)
	fmt.Printf("  Recommendations:  %d\n", report.RecommendationsGenerated)
	fmt.Printf("  Estimated cost:   %.2f\n", report.TotalEstimatedCost)
	fmt.Printf("  Average savings:  %.1f%%\n", report.AverageSavingsPercentage)
	fmt.Println()

	for _, rec := range report.Recommendations {
		color.Green("  %-25s %.2f at %s (save %.1f%%)", rec.ProductName, rec.Price, rec.Supplier, rec.Savings)
		fmt.Printf("    %s\n", rec.Reasoning)
	}
	fmt.Println()

	return nil
}
