package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	catalogCategory      string
	catalogMinSuppliers  int
	catalogIncludeSingle bool
	catalogLimit         int
	catalogMinSavings    float64
	exportOutFile        string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse and manage the unified catalog",
}

var catalogGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build the unified catalog and print the best deals first",
	RunE:  runCatalogGenerate,
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search the catalog by product name",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogSearch,
}

var catalogTopDealsCmd = &cobra.Command{
	Use:   "top-deals",
	Short: "Show the single-supplier-inclusive top deals, ranked by savings",
	RunE:  runCatalogTopDeals,
}

var catalogCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Show per-category aggregates and top deals",
	RunE:  runCatalogCategories,
}

var catalogSuppliersCmd = &cobra.Command{
	Use:   "suppliers",
	Short: "Show supplier market share",
	RunE:  runCatalogSuppliers,
}

var catalogUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh price analysis for every catalog product",
	RunE:  runCatalogUpdate,
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate catalog statistics",
	RunE:  runCatalogStats,
}

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog (and its statistics) to a JSON file",
	RunE:  runCatalogExport,
}

func init() {
	catalogGenerateCmd.Flags().StringVar(&catalogCategory, "category", "", "filter by category")
	catalogGenerateCmd.Flags().IntVar(&catalogMinSuppliers, "min-suppliers", 2, "minimum suppliers per item")
	catalogGenerateCmd.Flags().BoolVar(&catalogIncludeSingle, "include-single", false, "include single-supplier items")
	catalogGenerateCmd.Flags().IntVar(&catalogLimit, "limit", 20, "rows to display (0 = all)")

	catalogSearchCmd.Flags().StringVar(&catalogCategory, "category", "", "filter by category")
	catalogSearchCmd.Flags().IntVar(&catalogLimit, "limit", 20, "maximum results")

	catalogExportCmd.Flags().StringVar(&catalogCategory, "category", "", "filter by category")
	catalogExportCmd.Flags().StringVar(&exportOutFile, "out", "catalog-export.json", "output file path")

	catalogTopDealsCmd.Flags().IntVar(&catalogLimit, "limit", 10, "maximum deals")
	catalogTopDealsCmd.Flags().Float64Var(&catalogMinSavings, "min-savings", 10, "minimum savings percentage")

	catalogCmd.AddCommand(catalogGenerateCmd)
	catalogCmd.AddCommand(catalogTopDealsCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogCategoriesCmd)
	catalogCmd.AddCommand(catalogSuppliersCmd)
	catalogCmd.AddCommand(catalogUpdateCmd)
	catalogCmd.AddCommand(catalogStatsCmd)
	catalogCmd.AddCommand(catalogExportCmd)
}

func runCatalogStats(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	header.Println("\n  CATALOG STATISTICS")
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

	stats, err := a.manager.CatalogStatistics(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	fmt.Printf("  Total products:             %d\n", stats.TotalProducts)
	fmt.Printf("  Total suppliers:            %d\n", stats.TotalSuppliers)
	fmt.Printf("  Categories:                 %d\n", stats.CategoriesCount)
	fmt.Printf("  Products w/ multi-supplier: %d\n", stats.ProductsWithMultipleSuppliers)
	fmt.Printf("  Average savings:            %.1f%%\n", stats.AverageSavings)
	fmt.Printf("  Max savings:                %.1f%%\n", stats.MaxSavings)
	fmt.Printf("  Last update:                %s\n", stats.LastUpdate.Format("2006-01-02 15:04"))
	fmt.Println()

	return nil
}

// catalogRow is the subset of manager.CatalogItem the table renderer
// needs, shared by the generate and search subcommands.
type catalogRow struct {
	Name, Brand, BestSupplier, Trend string
	BestPrice, Savings, Confidence   float64
	Suppliers                        int
}

func renderCatalogTable(items []catalogRow) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Product", "Brand", "Best Price", "Supplier", "Savings", "Suppliers", "Trend", "Confidence"})
	table.SetBorder(false)
	table.SetHeaderColor(
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
	)
	for _, it := range items {
		name := it.Name
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		table.Append([]string{
			name, it.Brand,
			fmt.Sprintf("%.2f", it.BestPrice),
			it.BestSupplier,
			color.GreenString("%.1f%%", it.Savings),
			fmt.Sprintf("%d", it.Suppliers),
			it.Trend,
			fmt.Sprintf("%.0f%%", it.Confidence*100),
		})
	}
	table.Render()
}

func runCatalogGenerate(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	header.Println("\n  UNIFIED CATALOG")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := loadConfig()
	a, err := connect(ctx, cfg)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer a.close()

	items, err := a.manager.GenerateCatalog(ctx, catalogCategory, catalogMinSuppliers, catalogIncludeSingle)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	color.Yellow("  %d products in catalog\n\n", len(items))

	if catalogLimit > 0 && len(items) > catalogLimit {
		items = items[:catalogLimit]
	}

	rows := make([]catalogRow, len(items))
	for i, it := range items {
		rows[i] = catalogRow{it.Name, it.Brand, it.BestSupplier, it.PriceTrend, it.BestPrice, it.SavingsPercentage, it.ConfidenceScore, it.SuppliersCount}
	}
	renderCatalogTable(rows)
	fmt.Println()
	return nil
}

func runCatalogTopDeals(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	header.Println("\n  TOP DEALS")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := loadConfig()
	a, err := connect(ctx, cfg)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer a.close()

	items, err := a.manager.TopDeals(ctx, catalogLimit, catalogMinSavings)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	if len(items) == 0 {
		color.Yellow("  No deals at or above %.1f%% savings", catalogMinSavings)
		return nil
	}

	rows := make([]catalogRow, len(items))
	for i, it := range items {
		rows[i] = catalogRow{it.Name, it.Brand, it.BestSupplier, it.PriceTrend, it.BestPrice, it.SavingsPercentage, it.ConfidenceScore, it.SuppliersCount}
	}
	renderCatalogTable(rows)
	fmt.Println()
	return nil
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	header.Println("\n  CATALOG SEARCH")
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

	items, err := a.manager.SearchCatalog(ctx, args[0], catalogCategory, catalogLimit)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	if len(items) == 0 {
		color.Yellow("  No matches for %q", args[0])
		return nil
	}

	rows := make([]catalogRow, len(items))
	for i, it := range items {
		rows[i] = catalogRow{it.Name, it.Brand, it.BestSupplier, it.PriceTrend, it.BestPrice, it.SavingsPercentage, it.ConfidenceScore, it.SuppliersCount}
	}
	renderCatalogTable(rows)
	fmt.Println()
	return nil
}

func runCatalogCategories(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	header.Println("\n  CATEGORY ANALYSIS")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := loadConfig()
	a, err := connect(ctx, cfg)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer a.close()

	stats, err := a.manager.CategoryAnalysis(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	categories := make([]string, 0, len(stats))
	for c := range stats {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Category", "Products", "Avg Savings", "Max Savings", "Avg Suppliers"})
	table.SetBorder(false)
	for _, c := range categories {
		s := stats[c]
		table.Append([]string{
			c,
			fmt.Sprintf("%d", s.TotalProducts),
			fmt.Sprintf("%.1f%%", s.AverageSavings),
			fmt.Sprintf("%.1f%%", s.MaxSavings),
			fmt.Sprintf("%.1f", s.AverageSuppliersPerItem),
		})
	}
	table.Render()
	fmt.Println()
	return nil
}

func runCatalogSuppliers(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	header.Println("\n  SUPPLIER MARKET SHARE")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := loadConfig()
	a, err := connect(ctx, cfg)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer a.close()

	shares, err := a.manager.SupplierMarketShare(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Supplier", "Best Deals", "Market Share", "Categories", "Avg Savings Given"})
	table.SetBorder(false)
	for _, s := range shares {
		table.Append([]string{
			s.SupplierName,
			fmt.Sprintf("%d", s.BestDealsCount),
			fmt.Sprintf("%.1f%%", s.MarketSharePercent),
			fmt.Sprintf("%d", s.CategoriesCount),
			fmt.Sprintf("%.1f%%", s.AverageSavingsGiven),
		})
	}
	table.Render()
	fmt.Println()
	return nil
}

func runCatalogUpdate(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)
	header.Println("\n  UPDATING CATALOG PRICES")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg := loadConfig()
	a, err := connect(ctx, cfg)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer a.close()

	stats, err := a.manager.UpdateCatalogPrices(ctx)
	if err != nil && stats.ProductsChecked == 0 {
		color.Red("  Error: %v", err)
		return err
	}

	fmt.Printf("  Products checked: %d\n", stats.ProductsChecked)
	fmt.Printf("  Prices updated:   %d\n", stats.PricesUpdated)
	fmt.Printf("  New best deals:   %d\n", stats.NewBestDeals)
	if stats.Errors > 0 {
		color.Yellow("  Errors: %d\n", stats.Errors)
	}
	fmt.Println()
	success.Println("  ✓ Update complete")
	fmt.Println()
	return nil
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)
	header.Println("\n  EXPORTING CATALOG")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := loadConfig()
	a, err := connect(ctx, cfg)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer a.close()

	export, err := a.manager.ExportCatalog(ctx, catalogCategory)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(exportOutFile, data, 0o644); err != nil {
		color.Red("  Error writing %s: %v", exportOutFile, err)
		return err
	}

	success.Printf("  ✓ Exported %d items to %s\n", export.TotalItems, exportOutFile)
	fmt.Println()
	return nil
}
