package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedLanguage creates a language with a unique code.
func SeedLanguage(t *testing.T, pool *pgxpool.Pool) domain.Language {
	t.Helper()

	suffix := uniqueSuffix()
	lang := domain.Language{
		ID:   uuid.New(),
		Code: "l-" + suffix,
		Name: "Language " + suffix,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO languages (id, code, name) VALUES ($1, $2, $3)`,
		lang.ID, lang.Code, lang.Name,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedLanguage: %v", err)
	}

	return lang
}

// SeedVerse creates a verse with one word per given lexical form, in order.
// Lexical form ids are used verbatim, so callers can share forms across verses.
func SeedVerse(t *testing.T, pool *pgxpool.Pool, lexicalForms ...string) (string, []domain.Word) {
	t.Helper()
	ctx := context.Background()

	verseID := "v-" + uniqueSuffix()
	words := make([]domain.Word, 0, len(lexicalForms))

	for i, form := range lexicalForms {
		w := domain.Word{
			ID:            verseID + "-w" + uuid.New().String()[:4],
			VerseID:       verseID,
			LexicalFormID: form,
		}
		_, err := pool.Exec(ctx,
			`INSERT INTO words (id, verse_id, lexical_form_id, position) VALUES ($1, $2, $3, $4)`,
			w.ID, w.VerseID, w.LexicalFormID, i,
		)
		if err != nil {
			t.Fatalf("testhelper: SeedVerse insert word: %v", err)
		}
		words = append(words, w)
	}

	return verseID, words
}

// SeedPhrase creates an active phrase covering wordIDs in the language.
func SeedPhrase(t *testing.T, pool *pgxpool.Pool, languageID uuid.UUID, wordIDs ...string) domain.Phrase {
	t.Helper()
	ctx := context.Background()

	p := domain.Phrase{
		LanguageID: languageID,
		WordIDs:    wordIDs,
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO phrases (language_id) VALUES ($1) RETURNING id, created_at`,
		languageID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedPhrase insert phrase: %v", err)
	}

	for _, wid := range wordIDs {
		_, err := pool.Exec(ctx,
			`INSERT INTO phrase_words (phrase_id, word_id, language_id) VALUES ($1, $2, $3)`,
			p.ID, wid, languageID,
		)
		if err != nil {
			t.Fatalf("testhelper: SeedPhrase insert phrase_word: %v", err)
		}
	}

	return p
}

// SeedGloss writes the current gloss of a phrase.
func SeedGloss(t *testing.T, pool *pgxpool.Pool, phraseID int64, text string, state domain.GlossState) domain.Gloss {
	t.Helper()

	g := domain.Gloss{
		PhraseID:  phraseID,
		Gloss:     &text,
		State:     state,
		Source:    domain.GlossSourceUser,
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO glosses (phrase_id, gloss, state, source, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		g.PhraseID, g.Gloss, string(g.State), string(g.Source), g.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedGloss: %v", err)
	}

	return g
}
