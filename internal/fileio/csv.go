package fileio

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CRLF, LF and bare CR (old Mac exports) all end a line.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// readCSV loads delimited text. The separator is sniffed from the header
// line and every non-blank line is split with SplitLine.
func readCSV(r io.Reader) (Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Table{}, err
	}
	text, enc, err := DecodeText(b)
	if err != nil {
		return Table{}, err
	}

	t := Table{Format: "csv", Encoding: enc, Delimiter: ','}
	lines := strings.Split(lineBreaks.Replace(text), "\n")
	sniffed := false
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !sniffed {
			t.Delimiter = SniffDelimiter(line)
			sniffed = true
		}
		t.Rows = append(t.Rows, Row{Line: i + 1, Cells: SplitLine(line, t.Delimiter)})
	}
	return t, nil
}

// DecodeText returns the upload as UTF-8 without BOM. Bytes that are not
// valid UTF-8 are decoded from the legacy charset chardet reports;
// spreadsheet exports here are almost always Windows-1252.
func DecodeText(b []byte) (string, string, error) {
	b = bytes.TrimPrefix(b, utf8BOM)
	if utf8.Valid(b) {
		return string(b), "utf-8", nil
	}

	cs := "windows-1252"
	peek := b
	if len(peek) > 4096 {
		peek = peek[:4096]
	}
	if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
		cs = strings.ToLower(det.Charset)
	}

	var enc encoding.Encoding
	switch cs {
	case "iso-8859-1":
		enc = charmap.ISO8859_1
	case "iso-8859-15":
		enc = charmap.ISO8859_15
	case "ibm850":
		enc = charmap.CodePage850
	default:
		cs = "windows-1252"
		enc = charmap.Windows1252
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), b)
	if err != nil {
		return "", cs, err
	}
	return string(out), cs, nil
}

// SniffDelimiter checks the first line for ';', then ',', then tab and
// returns the first one present. Comma is the fallback.
func SniffDelimiter(firstLine string) rune {
	for _, sep := range []rune{';', ',', '\t'} {
		if strings.ContainsRune(firstLine, sep) {
			return sep
		}
	}
	return ','
}

// SplitLine splits one line on sep, ignoring separators inside double
// quotes. Each field is trimmed, has non-breaking spaces turned into
// plain ones and loses one enclosing quote pair.
// Unbalanced quotes never fail, the rest of the line just stays quoted.
func SplitLine(line string, sep rune) []string {
	var (
		fields  []string
		cur     strings.Builder
		inQuote bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case r == sep && !inQuote:
			fields = append(fields, cleanField(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, cleanField(cur.String()))
}

func cleanField(s string) string {
	s = normalizeCell(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return normalizeCell(s)
}
