package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/badno/monito/internal/pipeline"
)

var (
	ingestSupplier string
	ingestWorkers  int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Ingest supplier price lists",
	Long:  `Parse one or more supplier spreadsheets/PDFs and load them into the unified catalog.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSupplier, "supplier", "", "supplier name the files belong to (required)")
	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 4, "concurrent ingestion workers")
	ingestCmd.MarkFlagRequired("supplier")
}

func runIngest(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  INGESTING SUPPLIER PRICE LISTS")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()
	color.Yellow("  Supplier: %s\n", ingestSupplier)
	color.Yellow("  Workers: %d\n\n", ingestWorkers)

	tasks := make([]pipeline.FileTask, 0, len(args))
	for _, path := range args {
		if _, err := os.Stat(path); err != nil {
			color.Red("  Error: file not found: %s", path)
			return err
		}
		tasks = append(tasks, pipeline.FileTask{Path: path, Supplier: ingestSupplier})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg := loadConfig()
	a, err := connect(ctx, cfg)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer a.close()

	runner := pipeline.New(a.asStore(), a.norm, cfg.Preprocessor, cfg.Tables.CategoryKeywords, ingestWorkers, a.log)

	bar := progressbar.NewOptions(len(tasks),
		progressbar.OptionSetDescription("  Ingesting files"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.GreenString("█"),
			SaucerHead:    color.GreenString("█"),
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
	)

	results := runner.Run(ctx, tasks)
	bar.Add(len(tasks))
	fmt.Println()
	fmt.Println()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"File", "Created", "Updated", "Prices Added", "Errors", "Status"})
	table.SetBorder(false)
	table.SetHeaderColor(
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
	)

	failures := 0
	for _, r := range results {
		status := color.GreenString("ok")
		if r.Err != nil {
			status = color.RedString("failed: %v", r.Err)
			failures++
		}
		table.Append([]string{
			filepath.Base(r.Task.Path),
			fmt.Sprintf("%d", r.Stats.Created),
			fmt.Sprintf("%d", r.Stats.Updated),
			fmt.Sprintf("%d", r.Stats.Added),
			fmt.Sprintf("%d", r.Stats.Errors),
			status,
		})
	}
	table.Render()
	fmt.Println()

	if failures == 0 {
		success.Printf("  ✓ Ingested %d files\n", len(results))
	} else {
		color.Yellow("  ⚠ %d/%d files failed\n", failures, len(results))
	}
	fmt.Println()

	return nil
}
