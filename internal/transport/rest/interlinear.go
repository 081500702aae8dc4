package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/heartmarshall/interlinear-backend/internal/domain"
	"github.com/heartmarshall/interlinear-backend/internal/service/glossing"
	"github.com/heartmarshall/interlinear-backend/pkg/ctxutil"
)

type languageDirectory interface {
	GetByCode(ctx context.Context, code string) (*domain.Language, error)
}

type partitionService interface {
	PhrasesForVerse(ctx context.Context, languageID uuid.UUID, verseID string) ([]domain.Phrase, error)
	LinkWords(ctx context.Context, languageID uuid.UUID, wordIDs []string, userID uuid.UUID) error
	Unlink(ctx context.Context, languageID uuid.UUID, phraseID int64, userID uuid.UUID) error
}

type glossingService interface {
	UpdateGloss(ctx context.Context, input glossing.UpdateGlossInput) error
	ApproveAll(ctx context.Context, input glossing.ApproveAllInput) error
	History(ctx context.Context, languageID uuid.UUID, phraseID int64) ([]domain.GlossHistoryEntry, error)
}

type suggestionService interface {
	SuggestionsForVerse(ctx context.Context, languageID uuid.UUID, verseID string) (map[string][]string, error)
}

// InterlinearHandler serves the translation endpoints under /languages/{code}.
type InterlinearHandler struct {
	languages   languageDirectory
	partition   partitionService
	glossing    glossingService
	suggestions suggestionService
	log         *slog.Logger
}

// NewInterlinearHandler creates an InterlinearHandler.
func NewInterlinearHandler(
	languages languageDirectory,
	partition partitionService,
	glossing glossingService,
	suggestions suggestionService,
	logger *slog.Logger,
) *InterlinearHandler {
	return &InterlinearHandler{
		languages:   languages,
		partition:   partition,
		glossing:    glossing,
		suggestions: suggestions,
		log:         logger.With("handler", "interlinear"),
	}
}

// Register mounts the handler's routes on mux.
func (h *InterlinearHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /languages/{code}/verses/{verseID}/phrases", h.PhrasesForVerse)
	mux.HandleFunc("GET /languages/{code}/verses/{verseID}/suggestions", h.Suggestions)
	mux.HandleFunc("POST /languages/{code}/phrases", h.LinkWords)
	mux.HandleFunc("DELETE /languages/{code}/phrases/{phraseID}", h.Unlink)
	mux.HandleFunc("PATCH /languages/{code}/phrases/{phraseID}/gloss", h.UpdateGloss)
	mux.HandleFunc("GET /languages/{code}/phrases/{phraseID}/history", h.History)
	mux.HandleFunc("POST /languages/{code}/glosses/approve", h.ApproveAll)
}

// PhrasesForVerse handles GET /languages/{code}/verses/{verseID}/phrases.
func (h *InterlinearHandler) PhrasesForVerse(w http.ResponseWriter, r *http.Request) {
	lang, ok := h.language(w, r)
	if !ok {
		return
	}

	phrases, err := h.partition.PhrasesForVerse(r.Context(), lang.ID, r.PathValue("verseID"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"phrases": lo.Map(phrases, toPhraseResponse)})
}

// Suggestions handles GET /languages/{code}/verses/{verseID}/suggestions.
func (h *InterlinearHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	lang, ok := h.language(w, r)
	if !ok {
		return
	}

	suggestions, err := h.suggestions.SuggestionsForVerse(r.Context(), lang.ID, r.PathValue("verseID"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

// LinkWords handles POST /languages/{code}/phrases.
func (h *InterlinearHandler) LinkWords(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	lang, ok := h.language(w, r)
	if !ok {
		return
	}

	var req linkWordsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.partition.LinkWords(r.Context(), lang.ID, req.WordIDs, userID); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unlink handles DELETE /languages/{code}/phrases/{phraseID}.
func (h *InterlinearHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	lang, ok := h.language(w, r)
	if !ok {
		return
	}
	phraseID, ok := phraseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.partition.Unlink(r.Context(), lang.ID, phraseID, userID); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateGloss handles PATCH /languages/{code}/phrases/{phraseID}/gloss.
func (h *InterlinearHandler) UpdateGloss(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	lang, ok := h.language(w, r)
	if !ok {
		return
	}
	phraseID, ok := phraseIDParam(w, r)
	if !ok {
		return
	}

	var req updateGlossRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.glossing.UpdateGloss(r.Context(), glossing.UpdateGlossInput{
		PhraseID:       phraseID,
		LanguageID:     lang.ID,
		Gloss:          req.Gloss,
		State:          toGlossState(req.State),
		UserID:         userID,
		ApprovalMethod: toApprovalMethod(req.Method),
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ApproveAll handles POST /languages/{code}/glosses/approve.
func (h *InterlinearHandler) ApproveAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	lang, ok := h.language(w, r)
	if !ok {
		return
	}

	var req approveAllRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.glossing.ApproveAll(r.Context(), glossing.ApproveAllInput{
		LanguageID: lang.ID,
		UserID:     userID,
		Phrases: lo.Map(req.Phrases, func(p approvePhraseRequest, _ int) glossing.ApprovePhrase {
			return glossing.ApprovePhrase{
				PhraseID:       p.PhraseID,
				Gloss:          p.Gloss,
				ApprovalMethod: toApprovalMethod(p.Method),
			}
		}),
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// History handles GET /languages/{code}/phrases/{phraseID}/history.
func (h *InterlinearHandler) History(w http.ResponseWriter, r *http.Request) {
	lang, ok := h.language(w, r)
	if !ok {
		return
	}
	phraseID, ok := phraseIDParam(w, r)
	if !ok {
		return
	}

	entries, err := h.glossing.History(r.Context(), lang.ID, phraseID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"history": lo.Map(entries, toHistoryResponse)})
}

func (h *InterlinearHandler) language(w http.ResponseWriter, r *http.Request) (*domain.Language, bool) {
	lang, err := h.languages.GetByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		handleError(h.log, w, r, err)
		return nil, false
	}
	return lang, true
}

func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

func phraseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("phraseID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid phrase id")
		return 0, false
	}
	return id, true
}
