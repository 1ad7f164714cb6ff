package source

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/cognicore/stdtext/pkg/stdtext/internalerr"
)

// LoadXLSX reads corpus rows from the first sheet of a workbook. The first
// row is the header.
func LoadXLSX(path string, opts Options) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%s: no sheets: %w", path, internalerr.ErrInvalidInput)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty sheet: %w", path, internalerr.ErrInvalidInput)
	}

	col, err := textColumn(rows[0], rows[1:], opts.TextColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return extract(rows[1:], col), nil
}
