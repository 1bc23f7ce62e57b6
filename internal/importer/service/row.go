package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"mapa-service/internal/importer/model"
	"mapa-service/internal/utils"
)

var newID = uuid.NewString

// TransformRow turns one data line into a candidate record. Unmapped
// columns and blank cells are skipped; numeric fields keep only their
// digits and are left out when nothing parseable remains. defaults fill
// fields the row leaves empty (e.g. the city chosen in the upload form).
// A row missing a RowRequired field is rejected with a RowError.
func TransformRow(flow *Flow, hm model.HeaderMap, raw model.RawRecord, defaults map[model.Field]string) (model.CandidateRecord, error) {
	rec := model.CandidateRecord{Line: raw.Line, Values: make(map[model.Field]any)}
	for i, cell := range raw.Cells {
		f, ok := hm.Fields[i]
		if !ok {
			continue
		}
		setValue(flow, rec.Values, f, cell)
	}
	for f, v := range defaults {
		if _, ok := rec.Values[f]; !ok && flow.Knows(f) {
			setValue(flow, rec.Values, f, v)
		}
	}

	if flow.IDField != "" && flow.GenerateID {
		if _, ok := rec.Values[flow.IDField]; !ok {
			rec.Values[flow.IDField] = newID()
		}
	}

	var missing []string
	for _, f := range flow.RowRequired {
		if _, ok := rec.Values[f]; !ok {
			missing = append(missing, describeField(flow, f))
		}
	}
	if len(missing) > 0 {
		return model.CandidateRecord{}, model.RowError{
			Line:    raw.Line,
			Message: fmt.Sprintf("Linha %d: campo obrigatório ausente: %s", raw.Line, strings.Join(missing, ", ")),
		}
	}
	return rec, nil
}

func setValue(flow *Flow, values map[model.Field]any, f model.Field, cell string) {
	v := unquote(cell)
	if v == "" {
		return
	}
	if flow.Numeric[f] {
		if n, ok := utils.ParseDigits(v); ok {
			values[f] = n
		}
		return
	}
	values[f] = v
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}
