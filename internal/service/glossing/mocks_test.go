package glossing

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type mockPhraseRepo struct {
	GetActiveFunc func(ctx context.Context, languageID uuid.UUID, id int64) (*domain.Phrase, error)
	GetFunc       func(ctx context.Context, languageID uuid.UUID, id int64) (*domain.Phrase, error)
}

func (m *mockPhraseRepo) GetActive(ctx context.Context, languageID uuid.UUID, id int64) (*domain.Phrase, error) {
	if m.GetActiveFunc != nil {
		return m.GetActiveFunc(ctx, languageID, id)
	}
	return &domain.Phrase{ID: id, LanguageID: languageID, WordIDs: []string{"w"}}, nil
}

func (m *mockPhraseRepo) Get(ctx context.Context, languageID uuid.UUID, id int64) (*domain.Phrase, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, languageID, id)
	}
	return &domain.Phrase{ID: id, LanguageID: languageID, WordIDs: []string{"w"}}, nil
}

type mockPhraseValidator struct {
	ExistsForLanguageFunc func(ctx context.Context, languageID uuid.UUID, phraseIDs []int64) (bool, error)
}

func (m *mockPhraseValidator) ExistsForLanguage(ctx context.Context, languageID uuid.UUID, phraseIDs []int64) (bool, error) {
	if m.ExistsForLanguageFunc != nil {
		return m.ExistsForLanguageFunc(ctx, languageID, phraseIDs)
	}
	return true, nil
}

// mockGlossRepo keeps glosses and history in memory unless a func field
// overrides a method.
type mockGlossRepo struct {
	FindForUpdateFunc func(ctx context.Context, languageID uuid.UUID, phraseIDs []int64) (map[int64]domain.Gloss, error)
	UpsertFunc        func(ctx context.Context, g domain.Gloss) (bool, error)
	UpsertManyFunc    func(ctx context.Context, glosses []domain.Gloss) (int, error)
	AppendHistoryFunc func(ctx context.Context, entries ...domain.GlossHistoryEntry) error
	HistoryFunc       func(ctx context.Context, phraseID int64) ([]domain.GlossHistoryEntry, error)

	mu      sync.Mutex
	store   map[int64]domain.Gloss
	history []domain.GlossHistoryEntry
}

func newMockGlossRepo() *mockGlossRepo {
	return &mockGlossRepo{store: make(map[int64]domain.Gloss)}
}

func (m *mockGlossRepo) FindForUpdate(ctx context.Context, languageID uuid.UUID, phraseIDs []int64) (map[int64]domain.Gloss, error) {
	if m.FindForUpdateFunc != nil {
		return m.FindForUpdateFunc(ctx, languageID, phraseIDs)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]domain.Gloss)
	for _, id := range phraseIDs {
		if g, ok := m.store[id]; ok {
			out[id] = g
		}
	}
	return out, nil
}

func (m *mockGlossRepo) Upsert(ctx context.Context, g domain.Gloss) (bool, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, g)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upsertLocked(g), nil
}

func (m *mockGlossRepo) UpsertMany(ctx context.Context, glosses []domain.Gloss) (int, error) {
	if m.UpsertManyFunc != nil {
		return m.UpsertManyFunc(ctx, glosses)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, g := range glosses {
		if m.upsertLocked(g) {
			n++
		}
	}
	return n, nil
}

func (m *mockGlossRepo) upsertLocked(g domain.Gloss) bool {
	if prev, ok := m.store[g.PhraseID]; ok && prev.SameValue(&g) {
		return false
	}
	m.store[g.PhraseID] = g
	return true
}

func (m *mockGlossRepo) AppendHistory(ctx context.Context, entries ...domain.GlossHistoryEntry) error {
	if m.AppendHistoryFunc != nil {
		return m.AppendHistoryFunc(ctx, entries...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		e.ID = int64(len(m.history) + 1)
		m.history = append(m.history, e)
	}
	return nil
}

func (m *mockGlossRepo) History(ctx context.Context, phraseID int64) ([]domain.GlossHistoryEntry, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, phraseID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.GlossHistoryEntry
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].PhraseID == phraseID {
			out = append(out, m.history[i])
		}
	}
	return out, nil
}

func (m *mockGlossRepo) historyFor(phraseID int64) []domain.GlossHistoryEntry {
	out, _ := m.History(context.Background(), phraseID)
	return out
}

type mockPublisher struct {
	PublishManyFunc func(ctx context.Context, events []domain.TrackingEvent) error

	mu    sync.Mutex
	calls [][]domain.TrackingEvent
}

func (m *mockPublisher) PublishMany(ctx context.Context, events []domain.TrackingEvent) error {
	m.mu.Lock()
	m.calls = append(m.calls, events)
	m.mu.Unlock()
	if m.PublishManyFunc != nil {
		return m.PublishManyFunc(ctx, events)
	}
	return nil
}

func (m *mockPublisher) events() []domain.TrackingEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TrackingEvent
	for _, c := range m.calls {
		out = append(out, c...)
	}
	return out
}

type mockTxManager struct {
	RunInTxFunc func(ctx context.Context, fn func(context.Context) error) error
}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunInTxFunc != nil {
		return m.RunInTxFunc(ctx, fn)
	}
	return fn(ctx)
}
