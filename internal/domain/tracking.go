package domain

import (
	"time"

	"github.com/google/uuid"
)

// TrackingEvent is an analytics fact handed to the tracking publisher.
// It is never persisted by this service.
type TrackingEvent struct {
	ID         uuid.UUID         `json:"id"`
	Type       TrackingEventType `json:"type"`
	LanguageID uuid.UUID         `json:"languageId"`
	UserID     uuid.UUID         `json:"userId"`
	PhraseID   int64             `json:"phraseId"`
	Method     ApprovalMethod    `json:"method"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// NewApprovedGlossEvent builds an approved_gloss event.
func NewApprovedGlossEvent(languageID, userID uuid.UUID, phraseID int64, method ApprovalMethod, at time.Time) TrackingEvent {
	return TrackingEvent{
		ID:         uuid.New(),
		Type:       TrackingEventApprovedGloss,
		LanguageID: languageID,
		UserID:     userID,
		PhraseID:   phraseID,
		Method:     method,
		CreatedAt:  at,
	}
}

// ShouldTrackApproval decides whether a gloss transition emits an
// approved_gloss event: only a move from unapproved (or no gloss) into
// APPROVED, and only when the caller told us how the gloss was chosen.
func ShouldTrackApproval(wasUnapproved bool, next GlossState, method *ApprovalMethod) bool {
	return wasUnapproved && next == GlossStateApproved && method != nil
}
