package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	matchBatchSize    int
	matchAutoThreshold float64
	mergeThreshold    float64
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Resolve duplicate products across suppliers",
	Long:  `Find candidate equivalences between supplier-submitted products and record matches.`,
}

var matchRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run matching over every unprocessed product",
	RunE:  runMatchRun,
}

var matchSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "List auto-merge candidates above a confidence threshold",
	RunE:  runMatchSuggest,
}

var matchMergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Auto-merge high-confidence duplicates, route the rest to manual review",
	RunE:  runMatchMerge,
}

func init() {
	matchRunCmd.Flags().IntVar(&matchBatchSize, "batch-size", 100, "products to process per batch")
	matchSuggestCmd.Flags().Float64Var(&matchAutoThreshold, "threshold", 0.95, "minimum similarity score to suggest")
	matchMergeCmd.Flags().Float64Var(&mergeThreshold, "threshold", 0.95, "minimum similarity score to auto-merge")

	matchCmd.AddCommand(matchRunCmd)
	matchCmd.AddCommand(matchSuggestCmd)
	matchCmd.AddCommand(matchMergeCmd)
}

func runMatchRun(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  MATCHING PRODUCTS")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg := loadConfig()
	a, err := connect(ctx, cfg)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer a.close()

	stats, err := a.matching.ProcessAll(ctx, matchBatchSize)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	fmt.Printf("  Products processed: %d\n", stats.ProductsProcessed)
	fmt.Printf("  Matches found:      %d (exact %d, fuzzy %d)\n", stats.MatchesFound, stats.ExactMatches, stats.FuzzyMatches)
	if stats.Errors > 0 {
		color.Yellow("  Errors: %d\n", stats.Errors)
	}
	fmt.Println()
	success.Println("  ✓ Matching run complete")
	fmt.Println()

	return nil
}

func runMatchSuggest(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)

	header.Println("\n  AUTO-MERGE SUGGESTIONS")
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

	suggestions, err := a.matching.SuggestAutoMerges(ctx, matchAutoThreshold)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	if len(suggestions) == 0 {
		color.Yellow("  No auto-merge candidates above %.0f%% similarity", matchAutoThreshold*100)
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Product A", "Product B", "Score", "Type", "Action"})
	table.SetBorder(false)
	table.SetHeaderColor(
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
	)
	for _, s := range suggestions {
		table.Append([]string{
			s.ProductA.StandardName,
			s.ProductB.StandardName,
			fmt.Sprintf("%.0f%%", s.SimilarityScore*100),
			string(s.MatchType),
			s.SuggestedAction,
		})
	}
	table.Render()
	fmt.Println()

	return nil
}

func runMatchMerge(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  MERGING DUPLICATE PRODUCTS")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg := loadConfig()
	a, err := connect(ctx, cfg)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer a.close()

	stats, err := a.manager.MergeDuplicates(ctx, mergeThreshold)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	fmt.Printf("  Matches found:          %d\n", stats.MatchesFound)
	fmt.Printf("  Auto-merged:            %d\n", stats.AutoMerged)
	fmt.Printf("  Needs manual review:    %d\n", stats.ManualReviewRequired)
	if stats.Errors > 0 {
		color.Yellow("  Errors: %d\n", stats.Errors)
	}
	fmt.Println()
	success.Println("  ✓ Merge run complete")
	fmt.Println()

	return nil
}
