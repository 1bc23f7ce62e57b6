package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapa-service/internal/importer/model"
)

func rec(line int, values map[model.Field]any) model.CandidateRecord {
	return model.CandidateRecord{Line: line, Values: values}
}

func TestReferencesResolve(t *testing.T) {
	refs := NewReferences()
	refs.Add("João Silva", "city-1")
	refs.Add("JOAO SILVA", "city-2") // same normalized name, first wins
	refs.Add("", "city-3")

	id, ok := refs.Resolve("joão silva")
	require.True(t, ok)
	assert.Equal(t, "city-1", id)

	id, ok = refs.Resolve("city-3")
	require.True(t, ok, "a literal stored id resolves")
	assert.Equal(t, "city-3", id)

	_, ok = refs.Resolve("")
	assert.False(t, ok)
	assert.Equal(t, 1, refs.Len())

	var none *References
	_, ok = none.Resolve("x")
	assert.False(t, ok)
}

func TestReferencesDoubleSpaceIsAKnownMismatch(t *testing.T) {
	refs := NewReferences()
	refs.Add("joao silva", "city-1")

	_, ok := refs.Resolve("João Silva")
	assert.True(t, ok)

	// internal whitespace is not collapsed by NormalizeName
	_, ok = refs.Resolve("João  Silva")
	assert.False(t, ok)
}

func TestMatchSummary(t *testing.T) {
	refs := NewReferences()
	refs.Add("Joinville", "c1")
	refs.Add("Blumenau", "c2")

	records := []model.CandidateRecord{
		rec(2, map[model.Field]any{model.FieldName: "Ana", model.FieldCity: "JOINVILLE"}),
		rec(3, map[model.Field]any{model.FieldName: "Bia", model.FieldCity: "Gotham"}),
		rec(4, map[model.Field]any{model.FieldName: "Caio", model.FieldCity: "Gotham"}),
		rec(5, map[model.Field]any{model.FieldName: "Duda", model.FieldCity: "blumenau "}),
		rec(6, map[model.Field]any{model.FieldName: "Eva"}),
	}
	results, sum := Match(flowPress, records, refs)

	require.Len(t, results, 5)
	assert.True(t, results[0].Matched)
	assert.Equal(t, "c1", results[0].RefID)
	assert.Equal(t, "JOINVILLE", results[0].Key)
	assert.False(t, results[1].Matched)
	assert.Equal(t, "c2", results[3].RefID)

	assert.Equal(t, 5, sum.Total)
	assert.Equal(t, 2, sum.Matched)
	assert.Equal(t, 3, sum.Unmatched)
	assert.Equal(t, []string{"Gotham", "(vazio, linha 6)"}, sum.UnmatchedNames)
}

func TestBuildReferencesByMayor(t *testing.T) {
	mayor := "Adriano Silva"
	refs := BuildReferences(flowVotes, []model.CityRef{
		{ID: "c1", Name: "Joinville", Mayor: &mayor},
		{ID: "c2", Name: "Blumenau"},
	})
	id, ok := refs.Resolve("ADRIANO SILVA")
	require.True(t, ok)
	assert.Equal(t, "c1", id)

	_, ok = refs.Resolve("Joinville")
	assert.False(t, ok)
}
