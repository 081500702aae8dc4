package glossing

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

// MaxGlossLength bounds the gloss text in bytes.
const MaxGlossLength = 1000

// ---------------------------------------------------------------------------
// UpdateGlossInput
// ---------------------------------------------------------------------------

// UpdateGlossInput holds the parameters for editing one phrase's gloss.
// A nil Gloss or State keeps the current value. ApprovalMethod, when set,
// tells analytics how the translator arrived at an approval.
type UpdateGlossInput struct {
	PhraseID       int64
	LanguageID     uuid.UUID
	Gloss          *string
	State          *domain.GlossState
	UserID         uuid.UUID
	ApprovalMethod *domain.ApprovalMethod
}

// Validate checks all fields and collects all errors.
func (i UpdateGlossInput) Validate() error {
	var errs []domain.FieldError

	if i.PhraseID <= 0 {
		errs = append(errs, domain.FieldError{Field: "phrase_id", Message: "required"})
	}
	if i.LanguageID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "language_id", Message: "required"})
	}
	if i.UserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	if i.Gloss != nil && len(*i.Gloss) > MaxGlossLength {
		errs = append(errs, domain.FieldError{Field: "gloss", Message: fmt.Sprintf("too long (max %d)", MaxGlossLength)})
	}
	if i.State != nil && !i.State.IsValid() {
		errs = append(errs, domain.FieldError{Field: "state", Message: "invalid value"})
	}
	if i.ApprovalMethod != nil && !i.ApprovalMethod.IsValid() {
		errs = append(errs, domain.FieldError{Field: "approval_method", Message: "invalid value"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ---------------------------------------------------------------------------
// ApproveAllInput
// ---------------------------------------------------------------------------

// ApprovePhrase is one item of a bulk approval. An empty Gloss keeps the
// phrase's current text.
type ApprovePhrase struct {
	PhraseID       int64
	Gloss          string
	ApprovalMethod *domain.ApprovalMethod
}

// ApproveAllInput holds the parameters for approving many phrases at once.
type ApproveAllInput struct {
	LanguageID uuid.UUID
	Phrases    []ApprovePhrase
	UserID     uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i ApproveAllInput) Validate() error {
	var errs []domain.FieldError

	if i.LanguageID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "language_id", Message: "required"})
	}
	if i.UserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}

	seen := make(map[int64]struct{}, len(i.Phrases))
	for idx, p := range i.Phrases {
		field := fmt.Sprintf("phrases[%d]", idx)
		if p.PhraseID <= 0 {
			errs = append(errs, domain.FieldError{Field: field + ".phrase_id", Message: "required"})
		} else if _, dup := seen[p.PhraseID]; dup {
			errs = append(errs, domain.FieldError{Field: field + ".phrase_id", Message: "duplicate"})
		}
		seen[p.PhraseID] = struct{}{}

		if len(p.Gloss) > MaxGlossLength {
			errs = append(errs, domain.FieldError{Field: field + ".gloss", Message: fmt.Sprintf("too long (max %d)", MaxGlossLength)})
		}
		if p.ApprovalMethod != nil && !p.ApprovalMethod.IsValid() {
			errs = append(errs, domain.FieldError{Field: field + ".approval_method", Message: "invalid value"})
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
