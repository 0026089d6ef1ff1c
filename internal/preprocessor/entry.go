package preprocessor

import (
	"strings"

	"github.com/badno/monito/internal/config"
)

const (
	MinFileSizeBytes = 100
	MaxFileSizeBytes = 100 * 1024 * 1024 // 100 MiB
)

// Process dispatches to the xlsx/xls/pdf extractor based on the file
// extension and enforces the configured size bounds. A size violation or
// unrecognized extension is a whole-file ParseFailure, returned as an
// empty result rather than an error.
func Process(filename string, data []byte, cfg config.PreprocessorConfig) PreprocessResult {
	if len(data) < MinFileSizeBytes {
		return emptyResult("file too small to be a valid price list")
	}
	if len(data) > MaxFileSizeBytes {
		return emptyResult("file exceeds maximum size of 100MiB")
	}

	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		return ProcessXLSX(data, cfg)
	case strings.HasSuffix(lower, ".xls"):
		return ProcessXLS(data, cfg)
	case strings.HasSuffix(lower, ".pdf"):
		return ProcessPDF(data, cfg)
	default:
		return emptyResult("unsupported file type: " + filename)
	}
}
