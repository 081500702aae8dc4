package phrase_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/interlinear-backend/internal/adapter/postgres"
	"github.com/heartmarshall/interlinear-backend/internal/adapter/postgres/phrase"
	"github.com/heartmarshall/interlinear-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

func newRepo(t *testing.T) (*phrase.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return phrase.New(pool), pool
}

func wordIDs(words []domain.Word) []string {
	ids := make([]string, len(words))
	for i, w := range words {
		ids[i] = w.ID
	}
	return ids
}

// ---------------------------------------------------------------------------
// Create / UncoveredWords
// ---------------------------------------------------------------------------

func TestRepo_Create_AndUncoveredWords(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	lang := testhelper.SeedLanguage(t, pool)
	_, words := testhelper.SeedVerse(t, pool, "lf-a", "lf-b", "lf-c")
	ids := wordIDs(words)

	uncovered, err := repo.UncoveredWords(ctx, lang.ID, ids)
	if err != nil {
		t.Fatalf("UncoveredWords: %v", err)
	}
	if !slices.Equal(uncovered, ids) {
		t.Fatalf("UncoveredWords = %v, want %v", uncovered, ids)
	}

	userID := uuid.New()
	p, err := repo.Create(ctx, lang.ID, ids[:2], &userID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("Create: expected non-zero id")
	}
	if p.CreatedBy == nil || *p.CreatedBy != userID {
		t.Errorf("CreatedBy = %v, want %s", p.CreatedBy, userID)
	}

	uncovered, err = repo.UncoveredWords(ctx, lang.ID, ids)
	if err != nil {
		t.Fatalf("UncoveredWords: %v", err)
	}
	if !slices.Equal(uncovered, ids[2:]) {
		t.Errorf("UncoveredWords after create = %v, want %v", uncovered, ids[2:])
	}

	// Coverage is per language.
	other := testhelper.SeedLanguage(t, pool)
	uncovered, err = repo.UncoveredWords(ctx, other.ID, ids)
	if err != nil {
		t.Fatalf("UncoveredWords other language: %v", err)
	}
	if len(uncovered) != len(ids) {
		t.Errorf("UncoveredWords other language = %v, want all words", uncovered)
	}
}

func TestRepo_Create_SecondActivePhraseForWord(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	lang := testhelper.SeedLanguage(t, pool)
	_, words := testhelper.SeedVerse(t, pool, "lf-a")

	if _, err := repo.Create(ctx, lang.ID, []string{words[0].ID}, nil); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	_, err := repo.Create(ctx, lang.ID, []string{words[0].ID}, nil)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("second Create: expected ErrAlreadyExists, got %v", err)
	}
}

func TestRepo_CreateSingletons(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	lang := testhelper.SeedLanguage(t, pool)
	verseID, words := testhelper.SeedVerse(t, pool, "lf-a", "lf-b")

	n, err := repo.CreateSingletons(ctx, lang.ID, wordIDs(words), nil)
	if err != nil {
		t.Fatalf("CreateSingletons: %v", err)
	}
	if n != 2 {
		t.Errorf("CreateSingletons = %d, want 2", n)
	}

	phrases, err := repo.GetActiveByVerse(ctx, lang.ID, verseID)
	if err != nil {
		t.Fatalf("GetActiveByVerse: %v", err)
	}
	if len(phrases) != 2 {
		t.Fatalf("expected 2 phrases, got %d", len(phrases))
	}
	for i, p := range phrases {
		if !slices.Equal(p.WordIDs, []string{words[i].ID}) {
			t.Errorf("phrase %d words = %v, want [%s]", i, p.WordIDs, words[i].ID)
		}
		if p.Gloss != nil {
			t.Errorf("phrase %d: expected no gloss", i)
		}
	}
}

// ---------------------------------------------------------------------------
// SoftDelete
// ---------------------------------------------------------------------------

func TestRepo_SoftDelete(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	lang := testhelper.SeedLanguage(t, pool)
	_, words := testhelper.SeedVerse(t, pool, "lf-a", "lf-b")
	p1 := testhelper.SeedPhrase(t, pool, lang.ID, words[0].ID)
	p2 := testhelper.SeedPhrase(t, pool, lang.ID, words[1].ID)
	userID := uuid.New()

	n, err := repo.SoftDelete(ctx, lang.ID, []int64{p1.ID, p2.ID}, userID)
	if err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if n != 2 {
		t.Errorf("SoftDelete = %d, want 2", n)
	}

	// Deleted phrases stay resolvable.
	got, err := repo.Get(ctx, lang.ID, p1.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.IsActive() {
		t.Error("expected phrase to be soft-deleted")
	}
	if got.DeletedBy == nil || *got.DeletedBy != userID {
		t.Errorf("DeletedBy = %v, want %s", got.DeletedBy, userID)
	}

	if _, err := repo.GetActive(ctx, lang.ID, p1.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetActive on deleted phrase: expected ErrNotFound, got %v", err)
	}

	// Words are free for a new active phrase.
	if _, err := repo.Create(ctx, lang.ID, wordIDs(words), &userID); err != nil {
		t.Fatalf("Create after SoftDelete: %v", err)
	}

	// Second delete is a no-op.
	n, err = repo.SoftDelete(ctx, lang.ID, []int64{p1.ID}, userID)
	if err != nil {
		t.Fatalf("SoftDelete again: %v", err)
	}
	if n != 0 {
		t.Errorf("SoftDelete again = %d, want 0", n)
	}
}

func TestRepo_SoftDelete_ForeignLanguage(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	lang := testhelper.SeedLanguage(t, pool)
	other := testhelper.SeedLanguage(t, pool)
	_, words := testhelper.SeedVerse(t, pool, "lf-a")
	p := testhelper.SeedPhrase(t, pool, lang.ID, words[0].ID)

	n, err := repo.SoftDelete(ctx, other.ID, []int64{p.ID}, uuid.New())
	if err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if n != 0 {
		t.Errorf("SoftDelete foreign = %d, want 0", n)
	}

	if _, err := repo.GetActive(ctx, lang.ID, p.ID); err != nil {
		t.Errorf("phrase should still be active: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

func TestRepo_GetActiveByWords(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	lang := testhelper.SeedLanguage(t, pool)
	_, words := testhelper.SeedVerse(t, pool, "lf-a", "lf-b", "lf-c")
	multi := testhelper.SeedPhrase(t, pool, lang.ID, words[0].ID, words[1].ID)
	single := testhelper.SeedPhrase(t, pool, lang.ID, words[2].ID)

	got, err := repo.GetActiveByWords(ctx, lang.ID, []string{words[1].ID, words[2].ID})
	if err != nil {
		t.Fatalf("GetActiveByWords: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 phrases, got %d", len(got))
	}
	if got[0].ID != multi.ID || !slices.Equal(got[0].WordIDs, []string{words[0].ID, words[1].ID}) {
		t.Errorf("first phrase = %+v, want id %d with both words", got[0], multi.ID)
	}
	if got[1].ID != single.ID {
		t.Errorf("second phrase id = %d, want %d", got[1].ID, single.ID)
	}
}

func TestRepo_GetActive_ForeignLanguage(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	lang := testhelper.SeedLanguage(t, pool)
	other := testhelper.SeedLanguage(t, pool)
	_, words := testhelper.SeedVerse(t, pool, "lf-a")
	p := testhelper.SeedPhrase(t, pool, lang.ID, words[0].ID)

	if _, err := repo.GetActive(ctx, other.ID, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Get(ctx, other.ID, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get: expected ErrNotFound, got %v", err)
	}
}

func TestRepo_GetActiveByVerse_WithGloss(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	lang := testhelper.SeedLanguage(t, pool)
	verseID, words := testhelper.SeedVerse(t, pool, "lf-a", "lf-b")
	p1 := testhelper.SeedPhrase(t, pool, lang.ID, words[1].ID)
	p0 := testhelper.SeedPhrase(t, pool, lang.ID, words[0].ID)
	testhelper.SeedGloss(t, pool, p1.ID, "house", domain.GlossStateApproved)

	got, err := repo.GetActiveByVerse(ctx, lang.ID, verseID)
	if err != nil {
		t.Fatalf("GetActiveByVerse: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 phrases, got %d", len(got))
	}
	// Ordered by word position, not by id.
	if got[0].ID != p0.ID || got[1].ID != p1.ID {
		t.Fatalf("order = [%d %d], want [%d %d]", got[0].ID, got[1].ID, p0.ID, p1.ID)
	}
	if got[1].Gloss == nil || got[1].Gloss.Gloss == nil || *got[1].Gloss.Gloss != "house" {
		t.Errorf("gloss = %+v, want house", got[1].Gloss)
	}
	if !got[1].Gloss.IsApproved() {
		t.Errorf("expected approved gloss, got %s", got[1].Gloss.State)
	}
}

func TestRepo_CountActive(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	lang := testhelper.SeedLanguage(t, pool)
	_, words := testhelper.SeedVerse(t, pool, "lf-a", "lf-b")
	p1 := testhelper.SeedPhrase(t, pool, lang.ID, words[0].ID)
	p2 := testhelper.SeedPhrase(t, pool, lang.ID, words[1].ID)

	if _, err := repo.SoftDelete(ctx, lang.ID, []int64{p2.ID}, uuid.New()); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	n, err := repo.CountActive(ctx, lang.ID, []int64{p1.ID, p2.ID, 0})
	if err != nil {
		t.Fatalf("CountActive: %v", err)
	}
	if n != 1 {
		t.Errorf("CountActive = %d, want 1", n)
	}
}

// ---------------------------------------------------------------------------
// LockWords
// ---------------------------------------------------------------------------

func TestRepo_LockWords_InsideTx(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	txm := postgres.NewTxManager(pool, testhelper.Logger(), testhelper.TxConfig())

	lang := testhelper.SeedLanguage(t, pool)
	_, words := testhelper.SeedVerse(t, pool, "lf-a", "lf-b")

	err := txm.RunInTx(context.Background(), func(ctx context.Context) error {
		// Duplicates and unsorted input are fine.
		return repo.LockWords(ctx, lang.ID, []string{words[1].ID, words[0].ID, words[1].ID})
	})
	if err != nil {
		t.Fatalf("LockWords: %v", err)
	}
}
