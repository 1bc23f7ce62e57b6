package service

import (
	"errors"
	"fmt"

	"mapa-service/internal/fileio"
	"mapa-service/internal/importer/model"
)

var ErrNoData = errors.New("nenhuma linha de dados")

// MaxListedErrors is how many row errors are shown verbatim.
const MaxListedErrors = 5

// Parse runs the import pipeline over a loaded table: header mapping,
// per-row validation and reference matching. File-level problems are
// returned as errors; row-level ones end up in Preview.RowErrors and
// never stop the remaining rows.
func Parse(flow *Flow, t fileio.Table, refs *References, defaults map[model.Field]string) (model.Preview, error) {
	p := model.Preview{Flow: flow.Name, Format: t.Format}
	if t.Format == "csv" {
		p.Delimiter = string(t.Delimiter)
	}
	if len(t.Rows) == 0 {
		return p, fileio.ErrEmptyFile
	}

	hm, err := MapHeader(flow, t.Header().Cells)
	p.Columns = Columns(hm)
	if err != nil {
		return p, err
	}
	data := t.Data()
	if len(data) == 0 {
		return p, ErrNoData
	}

	records := make([]model.CandidateRecord, 0, len(data))
	p.RowErrors = []model.RowError{}
	for _, row := range data {
		rec, err := TransformRow(flow, hm, model.RawRecord{Line: row.Line, Cells: row.Cells}, defaults)
		if err != nil {
			var re model.RowError
			if errors.As(err, &re) {
				p.RowErrors = append(p.RowErrors, re)
				continue
			}
			return p, err
		}
		records = append(records, rec)
	}

	p.Results, p.Summary = Match(flow, records, refs)
	p.Messages = CollapseErrors(p.RowErrors, MaxListedErrors)
	p.Suggestions = refs.Suggest(unmatchedKeys(p.Results))
	return p, nil
}

func unmatchedKeys(results []model.MatchResult) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, r := range results {
		if r.Matched || r.Key == "" || seen[r.Key] {
			continue
		}
		seen[r.Key] = true
		keys = append(keys, r.Key)
	}
	return keys
}

// CollapseErrors keeps the first limit messages and folds the rest into
// a single "...e mais N erros" line.
func CollapseErrors(errs []model.RowError, limit int) []string {
	out := make([]string, 0, min(len(errs), limit)+1)
	for i, e := range errs {
		if i == limit {
			out = append(out, fmt.Sprintf("...e mais %d erros", len(errs)-limit))
			break
		}
		out = append(out, e.Message)
	}
	return out
}

// Confirmable returns the results that a commit would write.
func Confirmable(flow *Flow, results []model.MatchResult) []model.MatchResult {
	out := make([]model.MatchResult, 0, len(results))
	for _, r := range results {
		if r.Matched || flow.WriteUnmatched {
			out = append(out, r)
		}
	}
	return out
}
