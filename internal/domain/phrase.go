package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Language is a target language of the translation project.
type Language struct {
	ID   uuid.UUID
	Code string
	Name string
}

// Word is an atomic source-text token. Words are owned by the external
// catalog and never written by this service.
type Word struct {
	ID            string
	VerseID       string
	LexicalFormID string
}

// Phrase groups one or more words of a language into a translation unit.
// WordIDs is fixed at creation; regrouping creates a new phrase and
// soft-deletes the old one, so ids stay resolvable for history.
type Phrase struct {
	ID         int64
	LanguageID uuid.UUID
	WordIDs    []string
	CreatedAt  time.Time
	CreatedBy  *uuid.UUID
	DeletedAt  *time.Time
	DeletedBy  *uuid.UUID

	Gloss *Gloss
}

// IsActive returns true if the phrase has not been soft-deleted.
func (p *Phrase) IsActive() bool {
	return p.DeletedAt == nil
}

// IsMultiWord returns true if the phrase links more than one word.
func (p *Phrase) IsMultiWord() bool {
	return len(p.WordIDs) > 1
}

// Covers returns true if wordID is one of the phrase's words.
func (p *Phrase) Covers(wordID string) bool {
	return slices.Contains(p.WordIDs, wordID)
}
