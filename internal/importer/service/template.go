package service

import (
	"bytes"
	"strings"

	excelize "github.com/xuri/excelize/v2"
)

// Template renders the CSV template of a flow: UTF-8 BOM, ';' separated,
// header line plus one example row.
func Template(flow *Flow) []byte {
	var buf bytes.Buffer
	buf.WriteString("\uFEFF")
	headers := make([]string, len(flow.Template))
	examples := make([]string, len(flow.Template))
	for i, c := range flow.Template {
		headers[i] = csvCell(c.Header)
		examples[i] = csvCell(c.Example)
	}
	buf.WriteString(strings.Join(headers, ";"))
	buf.WriteString("\r\n")
	buf.WriteString(strings.Join(examples, ";"))
	buf.WriteString("\r\n")
	return buf.Bytes()
}

func csvCell(s string) string {
	if strings.ContainsAny(s, ";\"\r\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// TemplateXLSX is the same template as a one-sheet workbook.
func TemplateXLSX(flow *Flow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := string(flow.Name)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}
	headers := make([]any, len(flow.Template))
	examples := make([]any, len(flow.Template))
	for i, c := range flow.Template {
		headers[i] = c.Header
		examples[i] = c.Example
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A2", &examples); err != nil {
		return nil, err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
