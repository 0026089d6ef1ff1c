package preprocessor

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/badno/monito/internal/config"
	"github.com/qax-os/excelize/v2"
)

// ProcessXLSX recovers a PreprocessResult from .xlsx workbook bytes. A
// whole-file open/decode failure returns the zero-value error result
// (a ParseFailure) rather than an error return, matching
// the rest of this package's no-raise contract.
func ProcessXLSX(workbook []byte, cfg config.PreprocessorConfig) PreprocessResult {
	f, err := excelize.OpenReader(bytes.NewReader(workbook))
	if err != nil {
		return emptyResult(fmt.Sprintf("failed to open workbook: %v", err))
	}
	defer f.Close()

	var sheets []SheetResult
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			sheets = append(sheets, SheetResult{SheetName: sheetName, Error: err.Error()})
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.SheetTimeoutSecs)*time.Second)
		result := ProcessSheet(ctx, sheetName, Grid(rows), cfg)
		cancel()

		sheets = append(sheets, result)
	}

	agg := Aggregate(sheets)
	return agg
}
