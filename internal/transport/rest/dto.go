package rest

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

type linkWordsRequest struct {
	WordIDs []string `json:"wordIds"`
}

type updateGlossRequest struct {
	Gloss  *string `json:"gloss"`
	State  *string `json:"state"`
	Method *string `json:"method"`
}

type approveAllRequest struct {
	Phrases []approvePhraseRequest `json:"phrases"`
}

type approvePhraseRequest struct {
	PhraseID int64   `json:"phraseId"`
	Gloss    string  `json:"gloss"`
	Method   *string `json:"method"`
}

// ---------------------------------------------------------------------------
// Responses
// ---------------------------------------------------------------------------

type phraseResponse struct {
	ID        int64          `json:"id"`
	WordIDs   []string       `json:"wordIds"`
	CreatedAt time.Time      `json:"createdAt"`
	Gloss     *glossResponse `json:"gloss"`
}

type glossResponse struct {
	Gloss     *string    `json:"gloss"`
	State     string     `json:"state"`
	Source    string     `json:"source"`
	UpdatedAt time.Time  `json:"updatedAt"`
	UpdatedBy *uuid.UUID `json:"updatedBy,omitempty"`
}

type historyEntryResponse struct {
	ID         int64      `json:"id"`
	Gloss      *string    `json:"gloss"`
	State      string     `json:"state"`
	Source     *string    `json:"source"`
	UpdatedAt  *time.Time `json:"updatedAt"`
	UpdatedBy  *uuid.UUID `json:"updatedBy,omitempty"`
	RecordedAt time.Time  `json:"recordedAt"`
	RecordedBy uuid.UUID  `json:"recordedBy"`
}

func toPhraseResponse(p domain.Phrase, _ int) phraseResponse {
	resp := phraseResponse{
		ID:        p.ID,
		WordIDs:   p.WordIDs,
		CreatedAt: p.CreatedAt,
	}
	if p.Gloss != nil {
		resp.Gloss = &glossResponse{
			Gloss:     p.Gloss.Gloss,
			State:     p.Gloss.State.String(),
			Source:    p.Gloss.Source.String(),
			UpdatedAt: p.Gloss.UpdatedAt,
			UpdatedBy: p.Gloss.UpdatedBy,
		}
	}
	return resp
}

func toHistoryResponse(e domain.GlossHistoryEntry, _ int) historyEntryResponse {
	resp := historyEntryResponse{
		ID:         e.ID,
		Gloss:      e.Gloss,
		State:      e.State.String(),
		UpdatedAt:  e.UpdatedAt,
		UpdatedBy:  e.UpdatedBy,
		RecordedAt: e.RecordedAt,
		RecordedBy: e.RecordedBy,
	}
	if e.Source != nil {
		resp.Source = lo.ToPtr(e.Source.String())
	}
	return resp
}

func toApprovalMethod(s *string) *domain.ApprovalMethod {
	if s == nil {
		return nil
	}
	return lo.ToPtr(domain.ApprovalMethod(*s))
}

func toGlossState(s *string) *domain.GlossState {
	if s == nil {
		return nil
	}
	return lo.ToPtr(domain.GlossState(*s))
}
