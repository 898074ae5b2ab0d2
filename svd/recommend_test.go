package svd

import (
	"context"
	"testing"

	"github.com/rushteam/movierec/core"
)

func recommendCatalog() []core.CatalogEntry {
	return []core.CatalogEntry{
		{MovieID: 1, Title: "Toy Story"},
		{MovieID: 2, Title: "Jumanji"},
		{MovieID: 3, Title: "Grumpier Old Men"},
		{MovieID: 4, Title: "Waiting to Exhale"},
	}
}

func trainedModel(t *testing.T) *Model {
	t.Helper()
	cfg := smallConfig()
	cfg.TestFraction = 0.001
	m, err := Train(sampleRatings(), cfg)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	return m
}

func TestRecommend_ExcludesRatedItems(t *testing.T) {
	m := trainedModel(t)
	ratings := sampleRatings()

	recs, err := Recommend(context.Background(), m, ratings, recommendCatalog(), 1, 10)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	rated := map[int64]struct{}{1: {}, 2: {}, 3: {}}
	for _, r := range recs {
		if _, ok := rated[r.MovieID]; ok {
			t.Errorf("recommended already-rated movie %d", r.MovieID)
		}
	}
	// user 1 has only movie 4 left
	if len(recs) != 1 || recs[0].MovieID != 4 {
		t.Errorf("recs = %+v, want exactly movie 4", recs)
	}
	if lbl := recs[0].Labels["recall_source"]; lbl.Value != "svd" {
		t.Errorf("recall_source = %q, want svd", lbl.Value)
	}
}

func TestRecommend_ColdStartUser(t *testing.T) {
	m := trainedModel(t)
	ratings := sampleRatings()

	// a user with zero rating events gets a non-empty, bias-only ranking
	var first []int64
	for run := 0; run < 3; run++ {
		recs, err := Recommend(context.Background(), m, ratings, recommendCatalog(), 999, 10)
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if len(recs) != 4 {
			t.Fatalf("cold user got %d recs, want 4", len(recs))
		}
		ids := make([]int64, len(recs))
		for i, r := range recs {
			ids[i] = r.MovieID
			if lbl := r.Labels["recall_source"]; lbl.Value != "popularity" {
				t.Errorf("cold user recall_source = %q, want popularity", lbl.Value)
			}
		}
		if run == 0 {
			first = ids
			continue
		}
		for i := range ids {
			if ids[i] != first[i] {
				t.Fatalf("cold-start ranking not deterministic: %v vs %v", ids, first)
			}
		}
	}
}

func TestRecommend_OrderingAndBounds(t *testing.T) {
	m := trainedModel(t)
	ratings := sampleRatings()

	recs, err := Recommend(context.Background(), m, ratings, recommendCatalog(), 999, 2)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("topN=2 returned %d recs", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i-1].Score < recs[i].Score {
			t.Errorf("scores not descending: %v then %v", recs[i-1].Score, recs[i].Score)
		}
		if recs[i-1].Score == recs[i].Score && recs[i-1].MovieID > recs[i].MovieID {
			t.Errorf("tie not broken by ascending movie id: %d before %d",
				recs[i-1].MovieID, recs[i].MovieID)
		}
	}
}

func TestRecommend_CatalogItemOutsideVocabulary(t *testing.T) {
	m := trainedModel(t)
	catalog := append(recommendCatalog(), core.CatalogEntry{MovieID: 99, Title: "Unseen"})

	recs, err := Recommend(context.Background(), m, sampleRatings(), catalog, 999, 10)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	found := false
	for _, r := range recs {
		if r.MovieID == 99 {
			found = true
			if r.Score < m.RatingMin || r.Score > m.RatingMax {
				t.Errorf("out-of-vocabulary score %v outside rating range", r.Score)
			}
		}
	}
	if !found {
		t.Error("out-of-vocabulary catalog item silently dropped, want global-mean fallback")
	}
}
