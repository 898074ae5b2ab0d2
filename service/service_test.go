package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/dataset"
	"github.com/rushteam/movierec/pkg/dsl"
	"github.com/rushteam/movierec/store"
	"github.com/rushteam/movierec/svd"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSource() *dataset.MemorySource {
	return &dataset.MemorySource{
		Movies: []core.CatalogEntry{
			{MovieID: 1, Title: "Toy Story", Genres: []string{"Animation", "Comedy"}},
			{MovieID: 2, Title: "Jumanji", Genres: []string{"Action", "Adventure"}},
			{MovieID: 3, Title: "Grumpier Old Men", Genres: []string{"Comedy", "Romance"}},
			{MovieID: 4, Title: "Heat", Genres: []string{"Action", "Crime", "Thriller"}},
		},
		Events: []core.RatingEvent{
			{UserID: 1, MovieID: 1, Rating: 5},
			{UserID: 1, MovieID: 2, Rating: 3},
			{UserID: 2, MovieID: 1, Rating: 4},
			{UserID: 2, MovieID: 3, Rating: 5},
			{UserID: 3, MovieID: 2, Rating: 2},
			{UserID: 3, MovieID: 4, Rating: 4},
		},
	}
}

func testTrainer(src *dataset.MemorySource, s core.Store) *Trainer {
	return &Trainer{
		Catalog: src,
		Ratings: src,
		Store:   s,
		Config:  svd.Config{Factors: 4, Epochs: 10, Seed: 42, TestFraction: 0.001},
		Logger:  quietLogger(),
	}
}

func TestRecommender_UninitializedFailsTyped(t *testing.T) {
	ctx := context.Background()
	src := testSource()
	s := store.NewMemoryStore()
	defer s.Close()

	rec := NewRecommender(s, src, src, WithLogger(quietLogger()))
	if rec.Loaded() {
		t.Error("fresh recommender reports Loaded")
	}

	if _, err := rec.RecommendByTitle(ctx, "Toy Story", 2); !core.IsArtifactNotFound(err) {
		t.Errorf("RecommendByTitle before load: error = %v, want ARTIFACT_NOT_FOUND", err)
	}
	if _, err := rec.RecommendForUser(ctx, 1, 2); !core.IsArtifactNotFound(err) {
		t.Errorf("RecommendForUser before load: error = %v, want ARTIFACT_NOT_FOUND", err)
	}

	// a failed Load keeps the service uninitialized with the underlying error
	if err := rec.Load(ctx); !core.IsArtifactNotFound(err) {
		t.Errorf("Load from empty store: error = %v, want ARTIFACT_NOT_FOUND", err)
	}
	if rec.Loaded() {
		t.Error("recommender reports Loaded after failed Load")
	}
}

func TestRecommender_ServesAfterTraining(t *testing.T) {
	ctx := context.Background()
	src := testSource()
	s := store.NewMemoryStore()
	defer s.Close()

	if err := testTrainer(src, s).Run(ctx); err != nil {
		t.Fatalf("Trainer.Run() error = %v", err)
	}

	rec := NewRecommender(s, src, src, WithLogger(quietLogger()))
	if err := rec.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !rec.Loaded() {
		t.Fatal("recommender not Loaded after successful Load")
	}

	t.Run("by title", func(t *testing.T) {
		recs, err := rec.RecommendByTitle(ctx, "Toy Story", 2)
		if err != nil {
			t.Fatalf("RecommendByTitle() error = %v", err)
		}
		if len(recs) == 0 || len(recs) > 2 {
			t.Fatalf("got %d recs, want 1..2", len(recs))
		}
		for _, r := range recs {
			if r.MovieID == 1 {
				t.Error("query movie appears in its own recommendations")
			}
		}
	})

	t.Run("by title typed errors", func(t *testing.T) {
		if _, err := rec.RecommendByTitle(ctx, "Nonexistent Movie", 5); !core.IsNotFound(err) {
			t.Errorf("RecommendByTitle(missing) error = %v, want NOT_FOUND", err)
		}
	})

	t.Run("for user excludes rated", func(t *testing.T) {
		recs, err := rec.RecommendForUser(ctx, 1, 10)
		if err != nil {
			t.Fatalf("RecommendForUser() error = %v", err)
		}
		for _, r := range recs {
			if r.MovieID == 1 || r.MovieID == 2 {
				t.Errorf("recommended already-rated movie %d", r.MovieID)
			}
		}
	})

	t.Run("cold start user", func(t *testing.T) {
		recs, err := rec.RecommendForUser(ctx, 999, 10)
		if err != nil {
			t.Fatalf("RecommendForUser(cold) error = %v", err)
		}
		if len(recs) != 4 {
			t.Errorf("cold user got %d recs, want full catalog 4", len(recs))
		}
	})
}

func TestRecommender_FilterApplied(t *testing.T) {
	ctx := context.Background()
	src := testSource()
	s := store.NewMemoryStore()
	defer s.Close()

	if err := testTrainer(src, s).Run(ctx); err != nil {
		t.Fatalf("Trainer.Run() error = %v", err)
	}

	// content scores live in [0,1]; a threshold above 1 filters everything out
	filter, err := dsl.NewFilter(`rec.score > 1.5`)
	if err != nil {
		t.Fatalf("NewFilter() error = %v", err)
	}
	rec := NewRecommender(s, src, src, WithFilter(filter), WithLogger(quietLogger()))
	if err := rec.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	recs, err := rec.RecommendByTitle(ctx, "Toy Story", 3)
	if err != nil {
		t.Fatalf("RecommendByTitle() error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("filter kept %d content recs with score > 1.5", len(recs))
	}
}

func TestRecommender_ReloadSwapsSnapshot(t *testing.T) {
	ctx := context.Background()
	src := testSource()
	s := store.NewMemoryStore()
	defer s.Close()

	if err := testTrainer(src, s).Run(ctx); err != nil {
		t.Fatalf("Trainer.Run() error = %v", err)
	}
	rec := NewRecommender(s, src, src, WithLogger(quietLogger()))
	if err := rec.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, err := rec.RecommendByTitle(ctx, "Sunset Blvd.", 3); !core.IsNotFound(err) {
		t.Fatalf("unexpected error before retrain: %v", err)
	}

	// next generation: catalog grows, retrain, reload
	src.Movies = append(src.Movies, core.CatalogEntry{
		MovieID: 5, Title: "Sunset Blvd.", Genres: []string{"Drama", "Film-Noir", "Romance"},
	})
	if err := testTrainer(src, s).Run(ctx); err != nil {
		t.Fatalf("Trainer.Run() retrain error = %v", err)
	}
	if err := rec.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	recs, err := rec.RecommendByTitle(ctx, "Sunset Blvd.", 3)
	if err != nil {
		t.Fatalf("RecommendByTitle() after reload error = %v", err)
	}
	if len(recs) == 0 {
		t.Error("new snapshot not visible after Reload")
	}
}

func TestTrainer_EmptyRatingsWritesNothing(t *testing.T) {
	ctx := context.Background()
	src := testSource()
	src.Events = nil
	s := store.NewMemoryStore()
	defer s.Close()

	tr := testTrainer(src, s)
	err := tr.TrainCollaborative(ctx)
	if !core.IsEmptyDataset(err) {
		t.Fatalf("TrainCollaborative(empty) error = %v, want EMPTY_DATASET", err)
	}
	// no artifact must be written on failure
	if _, err := s.Get(ctx, DefaultSVDKey); !core.IsStoreNotFound(err) {
		t.Errorf("artifact written despite training failure: %v", err)
	}
}
