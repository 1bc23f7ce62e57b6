package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapa-service/internal/importer/model"
)

func TestDamerauLevenshtein(t *testing.T) {
	assert.Equal(t, 0, damerauLevenshtein("lages", "lages"))
	assert.Equal(t, 1, damerauLevenshtein("lages", "lagse"))
	assert.Equal(t, 1, damerauLevenshtein("itajai", "itajaí"))
	assert.Equal(t, 3, damerauLevenshtein("", "abc"))
}

func TestSuggest(t *testing.T) {
	refs := NewReferences()
	refs.Add("Florianópolis", "c1")
	refs.Add("Balneário Camboriú", "c2")
	refs.Add("Joinville", "c3")

	got := refs.Suggest([]string{"Florianopolos", "Camboriu Balneario", "Gotham", ""})
	require.Len(t, got, 2)
	assert.Equal(t, "Florianopolos", got[0].Name)
	assert.Equal(t, "Florianópolis", got[0].Candidate)
	assert.InDelta(t, 12.0/13.0, got[0].Score, 1e-9)
	assert.Equal(t, model.Suggestion{Name: "Camboriu Balneario", Candidate: "Balneário Camboriú", Score: 1}, got[1])
}

func TestSuggestWithoutReferences(t *testing.T) {
	var refs *References
	assert.Nil(t, refs.Suggest([]string{"Lages"}))
	assert.Nil(t, NewReferences().Suggest([]string{"Lages"}))
}

func TestParseAddsSuggestions(t *testing.T) {
	refs := NewReferences()
	refs.Add("Chapecó", "c1")

	p, err := Parse(flowCouncil, readCSV(t, "nome;cidade\nAna;Chapeco\nBia;Chapecoo\nCris;Chapecoo\n"), refs, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Summary.Matched)
	assert.Equal(t, []model.Suggestion{{Name: "Chapecoo", Candidate: "Chapecó", Score: 0.875}}, p.Suggestions)
}
