package interfaces

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	sales "kunafa-ledger/internal/sales/domain"
)

// XLSXReader reads workbooks with excelize.
type XLSXReader struct{}

// ReadFirstSheet returns the raw cell values of the first worksheet.
func (XLSXReader) ReadFirstSheet(r io.Reader) ([][]string, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: empty upload", sales.ErrInvalidFile)
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sales.ErrInvalidFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sales.ErrInvalidFile, err)
	}
	return rows, nil
}
