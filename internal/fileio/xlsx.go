package fileio

import (
	"bytes"
	"io"

	excelize "github.com/xuri/excelize/v2"
)

func readXLSX(r io.Reader) (Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Table{}, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	grid, err := f.GetRows(sheet)
	if err != nil {
		return Table{}, err
	}
	for _, row := range grid {
		for j := range row {
			row[j] = normalizeCell(row[j])
		}
	}
	return Table{Format: "xlsx", Rows: gridToRows(grid)}, nil
}
