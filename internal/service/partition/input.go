package partition

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

// LinkWordsInput holds the parameters for linking words into one phrase.
type LinkWordsInput struct {
	LanguageID uuid.UUID
	WordIDs    []string
	UserID     uuid.UUID
}

// Validate checks all fields and collects all errors. maxWords <= 0 disables
// the size limit.
func (i LinkWordsInput) Validate(maxWords int) error {
	var errs []domain.FieldError

	if i.LanguageID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "language_id", Message: "required"})
	}

	if i.UserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}

	if len(i.WordIDs) == 0 {
		errs = append(errs, domain.FieldError{Field: "word_ids", Message: "required"})
	}

	if maxWords > 0 && len(i.WordIDs) > maxWords {
		errs = append(errs, domain.FieldError{
			Field:   "word_ids",
			Message: fmt.Sprintf("too many (max %d)", maxWords),
		})
	}

	for idx, id := range i.WordIDs {
		if strings.TrimSpace(id) == "" {
			errs = append(errs, domain.FieldError{
				Field:   fmt.Sprintf("word_ids[%d]", idx),
				Message: "required",
			})
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
