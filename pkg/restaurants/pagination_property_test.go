package restaurants

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// For any catalog size, page and limit, the page envelope must be
// arithmetically consistent: pages is the ceiling of total/limit and the
// page holds exactly the documents remaining after the skip, capped at
// the limit.
func TestPaginationArithmeticProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("page envelope is arithmetically consistent", prop.ForAll(
		func(total, page, limit int) bool {
			docs := make([]*Restaurant, total)
			for i := range docs {
				docs[i] = &Restaurant{Name: "R"}
			}
			repo, _ := newTestRepo(t, docs...)

			result, err := repo.ListPaged(context.Background(), nil, "", int64(page), int64(limit))
			if err != nil {
				t.Logf("list failed: %v", err)
				return false
			}

			if result.Total != int64(total) {
				return false
			}
			wantPages := (int64(total) + int64(limit) - 1) / int64(limit)
			if result.Pages != wantPages {
				return false
			}

			remaining := total - (page-1)*limit
			if remaining < 0 {
				remaining = 0
			}
			wantLen := remaining
			if wantLen > limit {
				wantLen = limit
			}
			return len(result.Data) == wantLen
		},
		gen.IntRange(0, 200),
		gen.IntRange(1, 30),
		gen.IntRange(1, 25),
	))

	properties.Property("consecutive pages cover the catalog without overlap", prop.ForAll(
		func(total, limit int) bool {
			docs := make([]*Restaurant, total)
			for i := range docs {
				docs[i] = &Restaurant{Name: "R"}
			}
			repo, _ := newTestRepo(t, docs...)

			seen := map[string]bool{}
			pages := (int64(total) + int64(limit) - 1) / int64(limit)
			for p := int64(1); p <= pages; p++ {
				result, err := repo.ListPaged(context.Background(), nil, "", p, int64(limit))
				if err != nil {
					return false
				}
				for _, doc := range result.Data {
					id := doc.ID.Hex()
					if seen[id] {
						return false
					}
					seen[id] = true
				}
			}
			return len(seen) == total
		},
		gen.IntRange(0, 120),
		gen.IntRange(1, 15),
	))

	properties.TestingRun(t)
}
