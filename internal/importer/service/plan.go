package service

import (
	"strings"

	"mapa-service/internal/importer/model"
	"mapa-service/internal/store"
)

// Plan turns the confirmable results of a preview into store batches.
// City rows are upserted by id, vote counts and election winners update
// existing cities, everything else is inserted.
func Plan(flow *Flow, results []model.MatchResult) []store.Batch {
	results = Confirmable(flow, results)
	switch flow.Name {
	case model.FlowCities:
		return []store.Batch{planCities(results)}
	case model.FlowCouncil:
		return []store.Batch{planLinked(store.TableCouncil, results)}
	case model.FlowElection:
		return planElection(results)
	case model.FlowVotes:
		return []store.Batch{planVotes(results)}
	case model.FlowPress:
		return []store.Batch{planLinked(store.TablePress, results)}
	case model.FlowContacts:
		return []store.Batch{planLinked(store.TableContacts, results)}
	}
	return nil
}

func planCities(results []model.MatchResult) store.Batch {
	b := store.Batch{Table: store.TableCities, Mode: store.Upsert}
	for _, r := range results {
		row := columns(r.Record)
		if r.Matched {
			row["id"] = r.RefID
		}
		b.Rows = append(b.Rows, row)
	}
	return b
}

// planLinked inserts rows that hang off a city; the match key is
// replaced by the resolved city_id.
func planLinked(table string, results []model.MatchResult) store.Batch {
	b := store.Batch{Table: table, Mode: store.Insert}
	for _, r := range results {
		row := columns(r.Record, model.FieldCity)
		if r.Matched {
			row["city_id"] = r.RefID
		}
		b.Rows = append(b.Rows, row)
	}
	return b
}

func planVotes(results []model.MatchResult) store.Batch {
	b := store.Batch{Table: store.TableCities, Mode: store.Update}
	for _, r := range results {
		v, ok := r.Record.Int(model.FieldValidVotes)
		if !ok {
			continue
		}
		b.Rows = append(b.Rows, map[string]any{"id": r.RefID, "valid_votes": v})
	}
	return b
}

func planElection(results []model.MatchResult) []store.Batch {
	cities := store.Batch{Table: store.TableCities, Mode: store.Update}
	council := store.Batch{Table: store.TableCouncil, Mode: store.Insert}
	for _, r := range results {
		rec := r.Record
		switch positionOf(rec.String(model.FieldPosition)) {
		case posMayor:
			if !elected(rec) {
				continue
			}
			row := map[string]any{"id": r.RefID, "mayor": rec.String(model.FieldName)}
			if p := rec.String(model.FieldParty); p != "" {
				row["party"] = p
			}
			if v, ok := rec.Int(model.FieldVotes); ok {
				row["mayor_votes"] = v
			}
			if v, ok := rec.Int(model.FieldValidVotes); ok {
				row["valid_votes"] = v
			}
			cities.Rows = append(cities.Rows, row)
		case posViceMayor:
			if !elected(rec) {
				continue
			}
			cities.Rows = append(cities.Rows, map[string]any{"id": r.RefID, "vice_mayor": rec.String(model.FieldName)})
		default:
			row := columns(rec, model.FieldCity, model.FieldPosition, model.FieldValidVotes)
			row["city_id"] = r.RefID
			council.Rows = append(council.Rows, row)
		}
	}
	var out []store.Batch
	if len(cities.Rows) > 0 {
		out = append(out, cities)
	}
	if len(council.Rows) > 0 {
		out = append(out, council)
	}
	return out
}

type position int

const (
	posCouncil position = iota
	posMayor
	posViceMayor
)

func positionOf(s string) position {
	n := NormalizeName(s)
	switch {
	case strings.Contains(n, "vice"):
		return posViceMayor
	case strings.HasPrefix(n, "prefeit"):
		return posMayor
	}
	return posCouncil
}

// elected treats a missing result column as elected; the file is then
// assumed to list winners only.
func elected(rec model.CandidateRecord) bool {
	v, ok := rec.Values[model.FieldElected].(string)
	if !ok {
		return true
	}
	n := NormalizeName(v)
	switch n {
	case "sim", "s", "x", "1", "true":
		return true
	}
	return strings.HasPrefix(n, "eleit")
}

func columns(rec model.CandidateRecord, skip ...model.Field) map[string]any {
	row := make(map[string]any, len(rec.Values))
outer:
	for f, v := range rec.Values {
		for _, s := range skip {
			if f == s {
				continue outer
			}
		}
		row[string(f)] = v
	}
	return row
}
