package domain

import (
	"time"

	"github.com/google/uuid"
)

// Gloss is the current candidate translation of a phrase.
type Gloss struct {
	PhraseID  int64
	Gloss     *string
	State     GlossState
	Source    GlossSource
	UpdatedAt time.Time
	UpdatedBy *uuid.UUID
}

// IsApproved returns true if the gloss is in the APPROVED state.
func (g *Gloss) IsApproved() bool {
	return g != nil && g.State == GlossStateApproved
}

// SameValue reports whether the text and state of g and other are equal.
// A nil gloss compares as the initial state: no text, UNAPPROVED. Text is
// compared in normalized form, so stored rows that predate normalization
// (imports) equal the same text written back.
func (g *Gloss) SameValue(other *Gloss) bool {
	a, b := g.valueOrInitial(), other.valueOrInitial()
	return a.State == b.State && equalText(a.Gloss, b.Gloss)
}

// IsUnapproved returns true for a missing gloss or an UNAPPROVED one.
func (g *Gloss) IsUnapproved() bool {
	return g == nil || g.State == GlossStateUnapproved
}

func (g *Gloss) valueOrInitial() Gloss {
	if g == nil {
		return Gloss{State: GlossStateUnapproved}
	}
	return *g
}

func equalText(a, b *string) bool {
	na, nb := normalizedText(a), normalizedText(b)
	if na == nil || nb == nil {
		return na == nil && nb == nil
	}
	return *na == *nb
}

func normalizedText(s *string) *string {
	if s == nil {
		return nil
	}
	return NormalizeGloss(*s)
}

// GlossHistoryEntry is an append-only record of a gloss value that was
// overwritten. Gloss, State, Source and Updated* describe the pre-image;
// RecordedAt/RecordedBy describe the overwrite. For the first write on a
// phrase the pre-image is the initial state (no text, UNAPPROVED, no source).
type GlossHistoryEntry struct {
	ID         int64
	PhraseID   int64
	Gloss      *string
	State      GlossState
	Source     *GlossSource
	UpdatedAt  *time.Time
	UpdatedBy  *uuid.UUID
	RecordedAt time.Time
	RecordedBy uuid.UUID
}

// NewHistoryEntry builds the history record for overwriting prev.
// prev may be nil when the phrase had no gloss yet.
func NewHistoryEntry(phraseID int64, prev *Gloss, recordedAt time.Time, recordedBy uuid.UUID) GlossHistoryEntry {
	entry := GlossHistoryEntry{
		PhraseID:   phraseID,
		State:      GlossStateUnapproved,
		RecordedAt: recordedAt,
		RecordedBy: recordedBy,
	}
	if prev != nil {
		src := prev.Source
		updatedAt := prev.UpdatedAt
		entry.Gloss = prev.Gloss
		entry.State = prev.State
		entry.Source = &src
		entry.UpdatedAt = &updatedAt
		entry.UpdatedBy = prev.UpdatedBy
	}
	return entry
}

// GlossCount is how many active phrases carry an approved gloss text for
// words of one lexical form.
type GlossCount struct {
	LexicalFormID string
	Gloss         string
	Count         int
}
