package service

import (
	"errors"
	"fmt"
	"strings"

	"mapa-service/internal/importer/model"
)

var (
	ErrNoHeader      = errors.New("cabeçalho não encontrado")
	ErrMissingColumn = errors.New("coluna obrigatória não encontrada")
)

// CleanHeader lowercases a header cell and drops quotes, BOM and
// surrounding whitespace.
func CleanHeader(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.ReplaceAll(s, `"`, "")
	return strings.ToLower(strings.TrimSpace(s))
}

// MapHeader resolves header cells against the flow's synonym table. A
// label is tried as is, then in its NormalizeName form. When two columns
// resolve to the same field the first one wins and the later one is
// ignored. The file is rejected when a FileRequired field has no column.
func MapHeader(flow *Flow, cells []string) (model.HeaderMap, error) {
	hm := model.HeaderMap{
		Fields: make(map[int]model.Field),
		Labels: make([]string, len(cells)),
	}
	nonEmpty := 0
	for i, c := range cells {
		label := CleanHeader(c)
		hm.Labels[i] = label
		if label == "" {
			continue
		}
		nonEmpty++
		f, ok := flow.Lookup(label)
		if !ok {
			f, ok = flow.Lookup(NormalizeName(label))
		}
		if !ok || hm.Has(f) {
			continue
		}
		hm.Fields[i] = f
	}
	if nonEmpty == 0 {
		return hm, ErrNoHeader
	}

	var missing []string
	for _, f := range flow.FileRequired {
		if !hm.Has(f) {
			missing = append(missing, describeField(flow, f))
		}
	}
	if len(missing) > 0 {
		return hm, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return hm, nil
}

// describeField names a field by its template header, which is what the
// user sees in the downloaded template.
func describeField(flow *Flow, f model.Field) string {
	for _, tc := range flow.Template {
		if got, ok := flow.Lookup(tc.Header); ok && got == f {
			return tc.Header
		}
	}
	return string(f)
}

// Columns pairs every header label with the field it mapped to.
func Columns(hm model.HeaderMap) []model.Column {
	out := make([]model.Column, len(hm.Labels))
	for i, l := range hm.Labels {
		out[i] = model.Column{Label: l, Field: hm.Fields[i]}
	}
	return out
}
