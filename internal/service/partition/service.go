// Package partition owns the grouping of a verse's words into phrases: every
// word of a language's working set belongs to at most one active phrase.
package partition

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/interlinear-backend/internal/config"
	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type wordCatalog interface {
	GetWordsForVerse(ctx context.Context, verseID string) ([]domain.Word, error)
}

type phraseRepo interface {
	UncoveredWords(ctx context.Context, languageID uuid.UUID, wordIDs []string) ([]string, error)
	GetActiveByWords(ctx context.Context, languageID uuid.UUID, wordIDs []string) ([]domain.Phrase, error)
	GetActiveByVerse(ctx context.Context, languageID uuid.UUID, verseID string) ([]domain.Phrase, error)
	CountActive(ctx context.Context, languageID uuid.UUID, ids []int64) (int, error)
	Create(ctx context.Context, languageID uuid.UUID, wordIDs []string, createdBy *uuid.UUID) (*domain.Phrase, error)
	CreateSingletons(ctx context.Context, languageID uuid.UUID, wordIDs []string, createdBy *uuid.UUID) (int, error)
	SoftDelete(ctx context.Context, languageID uuid.UUID, ids []int64, deletedBy uuid.UUID) (int, error)
	LockWords(ctx context.Context, languageID uuid.UUID, wordIDs []string) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements phrase partitioning.
type Service struct {
	log      *slog.Logger
	catalog  wordCatalog
	phrases  phraseRepo
	tx       txManager
	cfg      config.PartitionConfig
	inflight singleflight.Group
}

// NewService creates a new partition service.
func NewService(
	logger *slog.Logger,
	catalog wordCatalog,
	phrases phraseRepo,
	tx txManager,
	cfg config.PartitionConfig,
) *Service {
	return &Service{
		log:     logger.With("service", "partition"),
		catalog: catalog,
		phrases: phrases,
		tx:      tx,
		cfg:     cfg,
	}
}
