//go:build e2e

package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/interlinear-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/interlinear-backend/internal/app"
	"github.com/heartmarshall/interlinear-backend/internal/config"
	"github.com/heartmarshall/interlinear-backend/internal/domain"
	"github.com/heartmarshall/interlinear-backend/internal/transport/middleware"
	"github.com/heartmarshall/interlinear-backend/internal/transport/rest"
)

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.TrackingEvent
}

func (p *recordingPublisher) PublishMany(_ context.Context, events []domain.TrackingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) Events() []domain.TrackingEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.TrackingEvent(nil), p.events...)
}

type testServer struct {
	t      *testing.T
	url    string
	events *recordingPublisher
	a      *app.App
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))

	cfg := &config.Config{
		Tx: testhelper.TxConfig(),
		Partition: config.PartitionConfig{
			MaxWordsPerPhrase: 32,
			ReconcileWorkers:  2,
			ReconcileAttempts: 3,
		},
		CORS: config.CORSConfig{AllowedOrigins: "*", AllowedMethods: "GET,POST,PATCH,DELETE"},
	}

	events := &recordingPublisher{}
	a := app.Wire(cfg, logger, pool, events)

	limiter := middleware.NewRateLimiter(time.Minute)
	t.Cleanup(limiter.Stop)

	handler := app.NewRouter(logger, cfg,
		rest.NewHealthHandler("e2e", rest.HealthComponent{Name: "database", Pinger: pool}),
		rest.NewInterlinearHandler(a.Languages, a.Partition, a.Glossing, a.Suggestions, logger),
		limiter,
	)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{t: t, url: srv.URL, events: events, a: a}
}

// do sends a JSON request as user (uuid.Nil for anonymous) and decodes the
// response body into out when out is non-nil.
func (s *testServer) do(method, path string, user uuid.UUID, body, out any) int {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.url+path, reader)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if user != uuid.Nil {
		req.Header.Set(middleware.UserHeader, user.String())
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type phrasesBody struct {
	Phrases []struct {
		ID      int64    `json:"id"`
		WordIDs []string `json:"wordIds"`
		Gloss   *struct {
			Gloss *string `json:"gloss"`
			State string  `json:"state"`
		} `json:"gloss"`
	} `json:"phrases"`
}

func (s *testServer) phrases(code, verseID string) phrasesBody {
	s.t.Helper()
	var body phrasesBody
	status := s.do(http.MethodGet, fmt.Sprintf("/languages/%s/verses/%s/phrases", code, verseID), uuid.Nil, nil, &body)
	require.Equal(s.t, http.StatusOK, status)
	return body
}

func TestE2E_TranslatorFlow(t *testing.T) {
	srv := setupTestServer(t)
	pool := srv.a.Pool

	lang := testhelper.SeedLanguage(t, pool)
	form := "f-" + uuid.New().String()[:8]
	verseID, words := testhelper.SeedVerse(t, pool, form, form+"-b", form+"-c")
	translator := uuid.New()

	// First read partitions the verse into single-word phrases.
	body := srv.phrases(lang.Code, verseID)
	require.Len(t, body.Phrases, 3)
	for i, p := range body.Phrases {
		assert.Equal(t, []string{words[i].ID}, p.WordIDs)
		assert.Nil(t, p.Gloss)
	}

	// Link the first two words.
	status := srv.do(http.MethodPost, "/languages/"+lang.Code+"/phrases", translator,
		map[string]any{"wordIds": []string{words[0].ID, words[1].ID}}, nil)
	require.Equal(t, http.StatusNoContent, status)

	body = srv.phrases(lang.Code, verseID)
	require.Len(t, body.Phrases, 2)
	linked := body.Phrases[0]
	assert.Equal(t, []string{words[0].ID, words[1].ID}, linked.WordIDs)
	assert.Equal(t, []string{words[2].ID}, body.Phrases[1].WordIDs)

	// Linking an already linked word conflicts.
	status = srv.do(http.MethodPost, "/languages/"+lang.Code+"/phrases", translator,
		map[string]any{"wordIds": []string{words[1].ID, words[2].ID}}, nil)
	assert.Equal(t, http.StatusConflict, status)

	// Approve a gloss with a method: one tracking event.
	status = srv.do(http.MethodPatch, fmt.Sprintf("/languages/%s/phrases/%d/gloss", lang.Code, linked.ID), translator,
		map[string]any{"gloss": "in the beginning", "state": "APPROVED", "method": "USER_INPUT"}, nil)
	require.Equal(t, http.StatusNoContent, status)

	events := srv.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, linked.ID, events[0].PhraseID)
	assert.Equal(t, translator, events[0].UserID)
	assert.Equal(t, lang.ID, events[0].LanguageID)
	assert.Equal(t, domain.ApprovalMethodUserInput, events[0].Method)

	// Approving the same text again is a no-op.
	status = srv.do(http.MethodPatch, fmt.Sprintf("/languages/%s/phrases/%d/gloss", lang.Code, linked.ID), translator,
		map[string]any{"gloss": "in the beginning", "state": "APPROVED", "method": "USER_INPUT"}, nil)
	require.Equal(t, http.StatusNoContent, status)
	assert.Len(t, srv.events.Events(), 1)

	body = srv.phrases(lang.Code, verseID)
	require.NotNil(t, body.Phrases[0].Gloss)
	assert.Equal(t, "APPROVED", body.Phrases[0].Gloss.State)
	assert.Equal(t, "in the beginning", *body.Phrases[0].Gloss.Gloss)

	// History holds the state before the only real change.
	var history struct {
		History []struct {
			Gloss *string `json:"gloss"`
			State string  `json:"state"`
		} `json:"history"`
	}
	status = srv.do(http.MethodGet, fmt.Sprintf("/languages/%s/phrases/%d/history", lang.Code, linked.ID), uuid.Nil, nil, &history)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, history.History, 1)
	assert.Nil(t, history.History[0].Gloss)
	assert.Equal(t, "UNAPPROVED", history.History[0].State)

	// Suggestions come from approved glosses of every form in the verse.
	var suggestions struct {
		Suggestions map[string][]string `json:"suggestions"`
	}
	status = srv.do(http.MethodGet, fmt.Sprintf("/languages/%s/verses/%s/suggestions", lang.Code, verseID), uuid.Nil, nil, &suggestions)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string][]string{
		form:        {"in the beginning"},
		form + "-b": {"in the beginning"},
	}, suggestions.Suggestions)

	// Unlinking returns the words to single-word phrases on the next read.
	status = srv.do(http.MethodDelete, fmt.Sprintf("/languages/%s/phrases/%d", lang.Code, linked.ID), translator, nil, nil)
	require.Equal(t, http.StatusNoContent, status)

	body = srv.phrases(lang.Code, verseID)
	require.Len(t, body.Phrases, 3)
	for i, p := range body.Phrases {
		assert.Equal(t, []string{words[i].ID}, p.WordIDs)
	}
}

func TestE2E_ApproveAllBatch(t *testing.T) {
	srv := setupTestServer(t)
	pool := srv.a.Pool

	lang := testhelper.SeedLanguage(t, pool)
	verseID, _ := testhelper.SeedVerse(t, pool, "a-"+uuid.New().String()[:8], "b-"+uuid.New().String()[:8])
	translator := uuid.New()

	body := srv.phrases(lang.Code, verseID)
	require.Len(t, body.Phrases, 2)

	status := srv.do(http.MethodPost, "/languages/"+lang.Code+"/glosses/approve", translator,
		map[string]any{"phrases": []map[string]any{
			{"phraseId": body.Phrases[0].ID, "gloss": "light", "method": "MACHINE_SUGGESTION"},
			{"phraseId": body.Phrases[1].ID, "gloss": "darkness"},
		}}, nil)
	require.Equal(t, http.StatusNoContent, status)

	// Only the entry with a method is tracked.
	events := srv.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, body.Phrases[0].ID, events[0].PhraseID)
	assert.Equal(t, domain.ApprovalMethodMachineSuggestion, events[0].Method)

	body = srv.phrases(lang.Code, verseID)
	for _, p := range body.Phrases {
		require.NotNil(t, p.Gloss)
		assert.Equal(t, "APPROVED", p.Gloss.State)
	}
}

func TestE2E_WritesRequireUser(t *testing.T) {
	srv := setupTestServer(t)
	lang := testhelper.SeedLanguage(t, srv.a.Pool)

	status := srv.do(http.MethodPost, "/languages/"+lang.Code+"/phrases", uuid.Nil,
		map[string]any{"wordIds": []string{"x", "y"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestE2E_UnknownLanguage(t *testing.T) {
	srv := setupTestServer(t)

	status := srv.do(http.MethodGet, "/languages/zz-missing/verses/v1/phrases", uuid.Nil, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
