package partition

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type mockWordCatalog struct {
	GetWordsForVerseFunc func(ctx context.Context, verseID string) ([]domain.Word, error)
}

func (m *mockWordCatalog) GetWordsForVerse(ctx context.Context, verseID string) ([]domain.Word, error) {
	if m.GetWordsForVerseFunc != nil {
		return m.GetWordsForVerseFunc(ctx, verseID)
	}
	return nil, nil
}

type mockPhraseRepo struct {
	UncoveredWordsFunc   func(ctx context.Context, languageID uuid.UUID, wordIDs []string) ([]string, error)
	GetActiveByWordsFunc func(ctx context.Context, languageID uuid.UUID, wordIDs []string) ([]domain.Phrase, error)
	GetActiveByVerseFunc func(ctx context.Context, languageID uuid.UUID, verseID string) ([]domain.Phrase, error)
	CountActiveFunc      func(ctx context.Context, languageID uuid.UUID, ids []int64) (int, error)
	CreateFunc           func(ctx context.Context, languageID uuid.UUID, wordIDs []string, createdBy *uuid.UUID) (*domain.Phrase, error)
	CreateSingletonsFunc func(ctx context.Context, languageID uuid.UUID, wordIDs []string, createdBy *uuid.UUID) (int, error)
	SoftDeleteFunc       func(ctx context.Context, languageID uuid.UUID, ids []int64, deletedBy uuid.UUID) (int, error)
	LockWordsFunc        func(ctx context.Context, languageID uuid.UUID, wordIDs []string) error
}

func (m *mockPhraseRepo) UncoveredWords(ctx context.Context, languageID uuid.UUID, wordIDs []string) ([]string, error) {
	if m.UncoveredWordsFunc != nil {
		return m.UncoveredWordsFunc(ctx, languageID, wordIDs)
	}
	return []string{}, nil
}

func (m *mockPhraseRepo) GetActiveByWords(ctx context.Context, languageID uuid.UUID, wordIDs []string) ([]domain.Phrase, error) {
	if m.GetActiveByWordsFunc != nil {
		return m.GetActiveByWordsFunc(ctx, languageID, wordIDs)
	}
	return []domain.Phrase{}, nil
}

func (m *mockPhraseRepo) GetActiveByVerse(ctx context.Context, languageID uuid.UUID, verseID string) ([]domain.Phrase, error) {
	if m.GetActiveByVerseFunc != nil {
		return m.GetActiveByVerseFunc(ctx, languageID, verseID)
	}
	return []domain.Phrase{}, nil
}

func (m *mockPhraseRepo) CountActive(ctx context.Context, languageID uuid.UUID, ids []int64) (int, error) {
	if m.CountActiveFunc != nil {
		return m.CountActiveFunc(ctx, languageID, ids)
	}
	return 0, nil
}

func (m *mockPhraseRepo) Create(ctx context.Context, languageID uuid.UUID, wordIDs []string, createdBy *uuid.UUID) (*domain.Phrase, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, languageID, wordIDs, createdBy)
	}
	return &domain.Phrase{ID: 1, LanguageID: languageID, WordIDs: wordIDs, CreatedBy: createdBy}, nil
}

func (m *mockPhraseRepo) CreateSingletons(ctx context.Context, languageID uuid.UUID, wordIDs []string, createdBy *uuid.UUID) (int, error) {
	if m.CreateSingletonsFunc != nil {
		return m.CreateSingletonsFunc(ctx, languageID, wordIDs, createdBy)
	}
	return len(wordIDs), nil
}

func (m *mockPhraseRepo) SoftDelete(ctx context.Context, languageID uuid.UUID, ids []int64, deletedBy uuid.UUID) (int, error) {
	if m.SoftDeleteFunc != nil {
		return m.SoftDeleteFunc(ctx, languageID, ids, deletedBy)
	}
	return len(ids), nil
}

func (m *mockPhraseRepo) LockWords(ctx context.Context, languageID uuid.UUID, wordIDs []string) error {
	if m.LockWordsFunc != nil {
		return m.LockWordsFunc(ctx, languageID, wordIDs)
	}
	return nil
}

type mockTxManager struct {
	RunInTxFunc  func(ctx context.Context, fn func(context.Context) error) error
	mu           sync.Mutex
	serializable int
	plain        int
}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.plain++
	m.mu.Unlock()
	if m.RunInTxFunc != nil {
		return m.RunInTxFunc(ctx, fn)
	}
	return fn(ctx)
}

func (m *mockTxManager) RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.serializable++
	m.mu.Unlock()
	if m.RunInTxFunc != nil {
		return m.RunInTxFunc(ctx, fn)
	}
	return fn(ctx)
}
