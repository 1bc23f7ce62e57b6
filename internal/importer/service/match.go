package service

import (
	"fmt"

	"mapa-service/internal/importer/model"
)

// References resolves match keys to stored ids. Names are indexed in
// their NormalizeName form; a key equal to a stored id also resolves.
type References struct {
	byName  map[string]string
	display map[string]string // normalized -> name as stored
	ids     map[string]struct{}
}

func NewReferences() *References {
	return &References{
		byName:  make(map[string]string),
		display: make(map[string]string),
		ids:     make(map[string]struct{}),
	}
}

// Add registers name -> id. On a normalized-name collision the first
// registered id is kept.
func (r *References) Add(name, id string) {
	if id == "" {
		return
	}
	r.ids[id] = struct{}{}
	n := NormalizeName(name)
	if n == "" {
		return
	}
	if _, ok := r.byName[n]; !ok {
		r.byName[n] = id
		r.display[n] = name
	}
}

func (r *References) Resolve(key string) (string, bool) {
	if r == nil || key == "" {
		return "", false
	}
	if _, ok := r.ids[key]; ok {
		return key, true
	}
	id, ok := r.byName[NormalizeName(key)]
	return id, ok
}

func (r *References) Len() int {
	if r == nil {
		return 0
	}
	return len(r.byName)
}

// BuildReferences indexes stored cities by the names the flow matches on.
func BuildReferences(flow *Flow, cities []model.CityRef) *References {
	refs := NewReferences()
	for _, c := range cities {
		switch flow.RefKind {
		case RefMayorName:
			if c.Mayor != nil {
				refs.Add(*c.Mayor, c.ID)
			}
		default:
			refs.Add(c.Name, c.ID)
		}
	}
	return refs
}

// Match resolves each record's match key and tallies the result.
// UnmatchedNames holds the literal keys as typed, each listed once.
func Match(flow *Flow, records []model.CandidateRecord, refs *References) ([]model.MatchResult, model.ImportSummary) {
	results := make([]model.MatchResult, 0, len(records))
	sum := model.ImportSummary{Total: len(records), UnmatchedNames: []string{}}
	listed := make(map[string]bool)

	for _, rec := range records {
		key := rec.String(flow.MatchKey)
		id, ok := refs.Resolve(key)
		results = append(results, model.MatchResult{Record: rec, Key: key, RefID: id, Matched: ok})
		if ok {
			sum.Matched++
			continue
		}
		sum.Unmatched++
		name := key
		if name == "" {
			name = fmt.Sprintf("(vazio, linha %d)", rec.Line)
		}
		if !listed[name] {
			listed[name] = true
			sum.UnmatchedNames = append(sum.UnmatchedNames, name)
		}
	}
	return results, sum
}
