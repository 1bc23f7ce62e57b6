package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapa-service/internal/importer/model"
	"mapa-service/internal/store"
)

func matched(id string, r model.CandidateRecord) model.MatchResult {
	return model.MatchResult{Record: r, RefID: id, Matched: true}
}

func unmatched(r model.CandidateRecord) model.MatchResult {
	return model.MatchResult{Record: r}
}

func TestPlanCities(t *testing.T) {
	batches := Plan(flowCities, []model.MatchResult{
		matched("c1", rec(2, map[model.Field]any{model.FieldID: "new-1", model.FieldName: "Joinville", model.FieldVoters: int64(10)})),
		unmatched(rec(3, map[model.Field]any{model.FieldID: "new-2", model.FieldName: "Nova Cidade"})),
	})
	require.Len(t, batches, 1)
	assert.Equal(t, store.Upsert, batches[0].Mode)
	assert.Equal(t, []map[string]any{
		{"id": "c1", "name": "Joinville", "voters": int64(10)},
		{"id": "new-2", "name": "Nova Cidade"},
	}, batches[0].Rows)
}

func TestPlanCouncilSkipsUnmatched(t *testing.T) {
	batches := Plan(flowCouncil, []model.MatchResult{
		matched("c1", rec(2, map[model.Field]any{model.FieldName: "Ana", model.FieldCity: "Joinville", model.FieldVotes: int64(5)})),
		unmatched(rec(3, map[model.Field]any{model.FieldName: "Bia", model.FieldCity: "Gotham"})),
	})
	require.Len(t, batches, 1)
	assert.Equal(t, store.Batch{Table: store.TableCouncil, Mode: store.Insert, Rows: []map[string]any{
		{"name": "Ana", "city_id": "c1", "votes": int64(5)},
	}}, batches[0])
}

func TestPlanPressKeepsUnmatchedWithoutCity(t *testing.T) {
	batches := Plan(flowPress, []model.MatchResult{
		unmatched(rec(2, map[model.Field]any{model.FieldName: "Rádio X", model.FieldCity: "Gotham"})),
	})
	require.Len(t, batches, 1)
	assert.Equal(t, []map[string]any{{"name": "Rádio X"}}, batches[0].Rows)
}

func TestPlanVotes(t *testing.T) {
	batches := Plan(flowVotes, []model.MatchResult{
		matched("c1", rec(2, map[model.Field]any{model.FieldMayor: "Adriano", model.FieldValidVotes: int64(310500)})),
		unmatched(rec(3, map[model.Field]any{model.FieldMayor: "Fulano", model.FieldValidVotes: int64(1)})),
	})
	require.Len(t, batches, 1)
	assert.Equal(t, store.Update, batches[0].Mode)
	assert.Equal(t, []map[string]any{{"id": "c1", "valid_votes": int64(310500)}}, batches[0].Rows)
}

func TestPlanElection(t *testing.T) {
	batches := Plan(flowElection, []model.MatchResult{
		matched("c1", rec(2, map[model.Field]any{
			model.FieldCity: "Joinville", model.FieldName: "Adriano", model.FieldPosition: "Prefeito",
			model.FieldParty: "NOVO", model.FieldVotes: int64(180402), model.FieldValidVotes: int64(310500),
			model.FieldElected: "Eleito",
		})),
		matched("c1", rec(3, map[model.Field]any{
			model.FieldCity: "Joinville", model.FieldName: "Derrotado", model.FieldPosition: "PREFEITO",
			model.FieldElected: "Não eleito",
		})),
		matched("c1", rec(4, map[model.Field]any{
			model.FieldCity: "Joinville", model.FieldName: "Rejane", model.FieldPosition: "Vice-prefeito",
		})),
		matched("c1", rec(5, map[model.Field]any{
			model.FieldCity: "Joinville", model.FieldName: "Maria", model.FieldPosition: "Vereador",
			model.FieldVotes: int64(4215), model.FieldElected: "ELEITO POR QP",
		})),
		unmatched(rec(6, map[model.Field]any{model.FieldCity: "Gotham", model.FieldName: "X"})),
	})
	require.Len(t, batches, 2)

	assert.Equal(t, store.Batch{Table: store.TableCities, Mode: store.Update, Rows: []map[string]any{
		{"id": "c1", "mayor": "Adriano", "party": "NOVO", "mayor_votes": int64(180402), "valid_votes": int64(310500)},
		{"id": "c1", "vice_mayor": "Rejane"},
	}}, batches[0])
	assert.Equal(t, store.Batch{Table: store.TableCouncil, Mode: store.Insert, Rows: []map[string]any{
		{"city_id": "c1", "name": "Maria", "votes": int64(4215), "elected": "ELEITO POR QP"},
	}}, batches[1])
}

func TestPositionOf(t *testing.T) {
	assert.Equal(t, posMayor, positionOf("Prefeita"))
	assert.Equal(t, posViceMayor, positionOf("VICE-PREFEITO"))
	assert.Equal(t, posCouncil, positionOf("Vereador"))
	assert.Equal(t, posCouncil, positionOf(""))
}
