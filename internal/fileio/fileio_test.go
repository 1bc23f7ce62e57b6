package fileio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	excelize "github.com/xuri/excelize/v2"
)

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ';', SniffDelimiter("nome,partido;votos"))
	assert.Equal(t, ',', SniffDelimiter("nome,partido"))
	assert.Equal(t, '\t', SniffDelimiter("nome\tpartido"))
	assert.Equal(t, ',', SniffDelimiter("nome"))
	assert.Equal(t, ',', SniffDelimiter(""))
}

func TestSplitLine(t *testing.T) {
	assert.Equal(t, []string{"a,b", "c"}, SplitLine(`"a,b",c`, ','))
	assert.Equal(t, []string{"João Silva", "PSD"}, SplitLine(" João Silva ; PSD ", ';'))
	assert.Equal(t, []string{"a", "", "c"}, SplitLine("a;;c", ';'))
	assert.Equal(t, []string{"", ""}, SplitLine(";", ';'))
	assert.Equal(t, []string{`diz "oi"`, "x"}, SplitLine(`"diz ""oi""",x`, ','))
	assert.Equal(t, []string{"São José", "Rio do Sul"}, SplitLine("São\u00A0José;\u00A0\"Rio\u202Fdo Sul\"", ';'))
}

func TestSplitLineUnbalancedQuote(t *testing.T) {
	// the open quote swallows the remaining separators
	got := SplitLine(`a,"b,c`, ',')
	assert.Equal(t, []string{"a", `"b,c`}, got)
}

func TestReadTableCSV(t *testing.T) {
	in := "\xEF\xBB\xBFNome;Partido\r\nJoão Silva;PSD\r\n\r\n;PT\r\n"
	tbl, err := ReadTable(strings.NewReader(in), "prefeitos.CSV")
	require.NoError(t, err)

	assert.Equal(t, "csv", tbl.Format)
	assert.Equal(t, "utf-8", tbl.Encoding)
	assert.Equal(t, ';', tbl.Delimiter)
	assert.Equal(t, Row{Line: 1, Cells: []string{"Nome", "Partido"}}, tbl.Header())
	require.Len(t, tbl.Data(), 2)
	assert.Equal(t, Row{Line: 2, Cells: []string{"João Silva", "PSD"}}, tbl.Data()[0])
	assert.Equal(t, Row{Line: 4, Cells: []string{"", "PT"}}, tbl.Data()[1])
}

func TestReadTableBareCR(t *testing.T) {
	tbl, err := ReadTable(strings.NewReader("nome;prefeito\rJoinville;Adriano\r\rLages;Carmen\r"), "mac.csv")
	require.NoError(t, err)
	assert.Equal(t, ';', tbl.Delimiter)
	assert.Equal(t, Row{Line: 1, Cells: []string{"nome", "prefeito"}}, tbl.Header())
	require.Len(t, tbl.Data(), 2)
	assert.Equal(t, Row{Line: 2, Cells: []string{"Joinville", "Adriano"}}, tbl.Data()[0])
	assert.Equal(t, Row{Line: 4, Cells: []string{"Lages", "Carmen"}}, tbl.Data()[1])
}

func TestReadTableLegacyEncoding(t *testing.T) {
	in := []byte("nome;cidade\nJo\xe3o;S\xe3o Jos\xe9 dos Campos\n")
	tbl, err := ReadTable(bytes.NewReader(in), "lista.csv")
	require.NoError(t, err)
	assert.NotEqual(t, "utf-8", tbl.Encoding)
	assert.Equal(t, []string{"João", "São José dos Campos"}, tbl.Data()[0].Cells)
}

func TestReadTableEmpty(t *testing.T) {
	_, err := ReadTable(strings.NewReader("\xEF\xBB\xBF\n \n"), "x.csv")
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestReadTableUnsupported(t *testing.T) {
	_, err := ReadTable(strings.NewReader("x"), "x.pdf")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestReadTableBrokenWorkbook(t *testing.T) {
	_, err := ReadTable(strings.NewReader("not a zip"), "x.xlsx")
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestReadTableXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Município", "Prefeito"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{" Joinville ", "Adriano"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	tbl, err := ReadTable(bytes.NewReader(buf.Bytes()), "cidades.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", tbl.Format)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, Row{Line: 3, Cells: []string{"Joinville", "Adriano"}}, tbl.Rows[1])
}
