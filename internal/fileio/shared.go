package fileio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyFile   = errors.New("arquivo vazio")
	ErrUnsupported = errors.New("formato de arquivo não suportado")
	ErrUnreadable  = errors.New("não foi possível ler o arquivo")
)

// Row is one source line split into cells. Line is 1-based and counts
// physical lines (or sheet rows), so the header is normally line 1.
type Row struct {
	Line  int
	Cells []string
}

// Table is a whole upload held in memory. Rows[0] is the header row.
type Table struct {
	Format    string // csv | xlsx | xls
	Encoding  string // encoding the text was decoded from (csv only)
	Delimiter rune   // csv only
	Rows      []Row
}

func (t Table) Header() Row {
	if len(t.Rows) == 0 {
		return Row{}
	}
	return t.Rows[0]
}

func (t Table) Data() []Row {
	if len(t.Rows) < 2 {
		return nil
	}
	return t.Rows[1:]
}

// ReadTable picks a reader by extension and loads the whole file.
func ReadTable(r io.Reader, filename string) (Table, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	var (
		t   Table
		err error
	)
	switch ext {
	case ".csv", ".txt":
		t, err = readCSV(r)
	case ".xlsx":
		t, err = readXLSX(r)
	case ".xls":
		t, err = readXLS(r)
	default:
		return Table{}, fmt.Errorf("%w: %s", ErrUnsupported, filename)
	}
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if len(t.Rows) == 0 {
		return Table{}, ErrEmptyFile
	}
	return t, nil
}

// gridToRows numbers sheet rows (1-based) and drops the blank ones.
func gridToRows(grid [][]string) []Row {
	out := make([]Row, 0, len(grid))
	for i, cells := range grid {
		if blank(cells) {
			continue
		}
		out = append(out, Row{Line: i + 1, Cells: cells})
	}
	return out
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func normalizeCell(s string) string {
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ").Replace(s)
	return strings.TrimSpace(s)
}
