package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price comparison and market intelligence",
}

var priceAnalyzeCmd = &cobra.Command{
	Use:   "analyze [product-id]",
	Short: "Analyze current prices for a single product",
	Args:  cobra.ExactArgs(1),
	RunE:  runPriceAnalyze,
}

var priceSupplierCmd = &cobra.Command{
	Use:   "supplier [name]",
	Short: "Build a competitiveness profile for one supplier",
	Args:  cobra.ExactArgs(1),
	RunE:  runPriceSupplier,
}

var priceOverviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show the catalog-wide market overview",
	RunE:  runPriceOverview,
}

func init() {
	priceCmd.AddCommand(priceAnalyzeCmd)
	priceCmd.AddCommand(priceSupplierCmd)
	priceCmd.AddCommand(priceOverviewCmd)
}

func runPriceAnalyze(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		color.Red("  Error: invalid product id: %v", err)
		return err
	}

	header := color.New(color.FgCyan, color.Bold)
	header.Println("\n  PRICE ANALYSIS")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg := loadConfig()
	a, err := connect(ctx, cfg)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer a.close()

	analysis, err := a.pricing.Analyze(ctx, id)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	if analysis == nil {
		color.Yellow("  No price data for this product")
		return nil
	}

	fmt.Printf("  Product:        %s\n", analysis.ProductName)
	fmt.Printf("  Best price:     %.2f (%s)\n", analysis.BestPrice.OriginalPrice, analysis.BestPrice.Supplier)
	fmt.Printf("  Worst price:    %.2f (%s)\n", analysis.WorstPrice.OriginalPrice, analysis.WorstPrice.Supplier)
	fmt.Printf("  Average:        %.2f\n", analysis.AveragePrice)
	fmt.Printf("  Savings:        %.1f%%\n", analysis.SavingsPotential)
	fmt.Printf("  Suppliers:      %d\n", analysis.SuppliersCount)
	fmt.Printf("  Trend:          %s\n", analysis.PriceTrend)
	fmt.Println()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Supplier", "Price", "Confidence"})
	table.SetBorder(false)
	for _, p := range analysis.CompetitiveSuppliers {
		table.Append([]string{p.Supplier, fmt.Sprintf("%.2f", p.OriginalPrice), fmt.Sprintf("%.0f%%", p.Confidence*100)})
	}
	table.Render()
	fmt.Println()

	return nil
}

func runPriceSupplier(cmd *cobra.Command, args []string) error {
	name := args[0]

	header := color.New(color.FgCyan, color.Bold)
	header.Println("\n  SUPPLIER PROFILE")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg := loadConfig()
	a, err := connect(ctx, cfg)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer a.close()

	analysis, err := a.pricing.AnalyzeSupplier(ctx, name)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	fmt.Printf("  Supplier:             %s\n", analysis.SupplierName)
	fmt.Printf("  Total products:       %d\n", analysis.TotalProducts)
	fmt.Printf("  Best-price products:  %d\n", analysis.BestPriceProducts)
	fmt.Printf("  Competitiveness:      %.1f%%\n", analysis.AverageCompetitiveness)
	fmt.Printf("  Price volatility:     %.2f\n", analysis.PriceVolatility)
	fmt.Printf("  Reliability score:    %.1f%%\n", analysis.ReliabilityScore*100)
	fmt.Println()

	if len(analysis.Strengths) > 0 {
		color.Green("  Strengths: %s", strings.Join(analysis.Strengths, ", "))
	}
	if len(analysis.Weaknesses) > 0 {
		color.Yellow("  Weaknesses: %s", strings.Join(analysis.Weaknesses, ", "))
	}
	fmt.Println()

	return nil
}

func runPriceOverview(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	header.Println("\n  MARKET OVERVIEW")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg := loadConfig()
	a, err := connect(ctx, cfg)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer a.close()

	overview, err := a.pricing.GetMarketOverview(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	fmt.Printf("  Total products:   %d\n", overview.Statistics.TotalProducts)
	fmt.Printf("  Total suppliers:  %d\n", overview.Statistics.TotalSuppliers)
	fmt.Printf("  Overall trend:    %s\n", overview.Trends.OverallTrend)
	fmt.Printf("  Volatility:       %s\n", overview.Trends.Volatility)
	fmt.Println()

	if len(overview.TopDeals) > 0 {
		color.Cyan("  Top deals:")
		for _, d := range overview.TopDeals {
			fmt.Printf("    %-30s %.1f%% off at %s\n", d.ProductName, d.SavingsPercent, d.BestSupplier)
		}
		fmt.Println()
	}

	return nil
}
