package service

import (
	"sort"
	"strings"

	"mapa-service/internal/importer/model"
)

// SuggestThreshold is the minimum similarity for a near-miss suggestion.
const SuggestThreshold = 0.8

// Suggest proposes, for each unmatched key, the closest stored name.
// Candidates come from a trigram index over the normalized reference
// names and are scored with Damerau-Levenshtein, plain and token-sorted.
func (r *References) Suggest(keys []string) []model.Suggestion {
	if r.Len() == 0 || len(keys) == 0 {
		return nil
	}
	inv := make(map[string]map[string]struct{})
	for n := range r.byName {
		for g := range trigramSet(n) {
			bucket, ok := inv[g]
			if !ok {
				bucket = make(map[string]struct{})
				inv[g] = bucket
			}
			bucket[n] = struct{}{}
		}
	}

	var out []model.Suggestion
	for _, key := range keys {
		norm := NormalizeName(key)
		if norm == "" {
			continue
		}
		seen := make(map[string]struct{})
		for g := range trigramSet(norm) {
			for n := range inv[g] {
				seen[n] = struct{}{}
			}
		}
		cands := make([]string, 0, len(seen))
		for n := range seen {
			cands = append(cands, n)
		}
		sort.Strings(cands) // deterministic tie-break

		best, bestScore := "", 0.0
		for _, c := range cands {
			if s := bestSimilarity(norm, c); s > bestScore {
				best, bestScore = c, s
			}
		}
		if best != "" && bestScore >= SuggestThreshold {
			out = append(out, model.Suggestion{Name: key, Candidate: r.display[best], Score: bestScore})
		}
	}
	return out
}

func trigramSet(s string) map[string]struct{} {
	m := make(map[string]struct{})
	if s == "" {
		return m
	}
	r := []rune(" " + s + " ")
	for i := 0; i+3 <= len(r); i++ {
		m[string(r[i:i+3])] = struct{}{}
	}
	return m
}

// similarity is the normalized Damerau-Levenshtein similarity in [0..1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	m := max(len([]rune(a)), len([]rune(b)))
	return 1 - float64(damerauLevenshtein(a, b))/float64(m)
}

func tokenSort(s string) string {
	t := strings.Fields(s)
	sort.Strings(t)
	return strings.Join(t, " ")
}

// bestSimilarity also scores the token-sorted forms, so "silva joao"
// still finds "joao silva".
func bestSimilarity(a, b string) float64 {
	return max(similarity(a, b), similarity(tokenSort(a), tokenSort(b)))
}

// damerauLevenshtein is the optimal string alignment distance over runes.
func damerauLevenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	al, bl := len(ra), len(rb)

	dp := make([][]int, al+1)
	for i := range dp {
		dp[i] = make([]int, bl+1)
		dp[i][0] = i
	}
	for j := 0; j <= bl; j++ {
		dp[0][j] = j
	}
	for i := 1; i <= al; i++ {
		for j := 1; j <= bl; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			dp[i][j] = min(dp[i-1][j]+1, dp[i][j-1]+1, dp[i-1][j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				dp[i][j] = min(dp[i][j], dp[i-2][j-2]+1)
			}
		}
	}
	return dp[al][bl]
}
