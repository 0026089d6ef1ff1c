package preprocessor

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/badno/monito/internal/config"
	"github.com/extrame/xls"
)

// ProcessXLS recovers a PreprocessResult from legacy .xls (OLE2 binary)
// workbook bytes. extrame/xls reads from a filesystem path, so the
// bytes are spooled to a temp file first; the temp file is always
// removed before returning.
func ProcessXLS(workbook []byte, cfg config.PreprocessorConfig) PreprocessResult {
	tmp, err := os.CreateTemp("", "monito-*.xls")
	if err != nil {
		return emptyResult(fmt.Sprintf("failed to create temp file: %v", err))
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.Write(workbook); err != nil {
		return emptyResult(fmt.Sprintf("failed to spool workbook: %v", err))
	}
	if err := tmp.Close(); err != nil {
		return emptyResult(fmt.Sprintf("failed to flush workbook: %v", err))
	}

	wb, err := xls.Open(tmp.Name(), "utf-8")
	if err != nil {
		return emptyResult(fmt.Sprintf("failed to open legacy workbook: %v", err))
	}

	var sheets []SheetResult
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}

		grid := gridFromXLSSheet(sheet)

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.SheetTimeoutSecs)*time.Second)
		result := ProcessSheet(ctx, sheet.Name, grid, cfg)
		cancel()

		sheets = append(sheets, result)
	}

	return Aggregate(sheets)
}

func gridFromXLSSheet(sheet *xls.WorkSheet) Grid {
	grid := make(Grid, 0, sheet.MaxRow+1)
	for r := 0; r <= int(sheet.MaxRow); r++ {
		row := sheet.Row(r)
		if row == nil {
			grid = append(grid, []string{})
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		grid = append(grid, cells)
	}
	return grid
}
