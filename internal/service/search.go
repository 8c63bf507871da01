package service

import (
	"cmp"
	"slices"
	"strings"
	"yahoomovie/internal/catalog"
	"yahoomovie/lib/textutil"

	"github.com/antzucaro/matchr"
)

// MinSearchScore is the lowest similarity a search result may have.
const MinSearchScore = 0.75

type SearchResult struct {
	catalog.MovieRow
	Score float64 `json:"score"`
}

func similarity(query, name string) float64 {
	name = textutil.NormalizeName(name)
	if name == "" {
		return 0
	}
	if strings.Contains(name, query) {
		return 1
	}
	return matchr.JaroWinkler(query, name, false)
}

// Search ranks movies by how closely their chinese or english name matches
// `query`. Names containing the query rank first, the rest are ranked by
// Jaro-Winkler similarity. At most `limit` results are returned, a limit of
// 0 returns every match.
func (s Service) Search(query string, limit int) []SearchResult {
	query = textutil.NormalizeName(query)
	if query == "" {
		return nil
	}

	var results []SearchResult
	for _, row := range s.movies.Rows(catalog.All()) {
		score := max(
			similarity(query, row.ChineseName),
			similarity(query, row.EnglishName),
		)
		if score >= MinSearchScore {
			results = append(results, SearchResult{MovieRow: row, Score: score})
		}
	}

	slices.SortStableFunc(results, func(a, b SearchResult) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
