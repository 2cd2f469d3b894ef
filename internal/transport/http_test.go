package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-dragonstage/internal/playback"
)

func newHandler(f *playback.Fact) http.Handler {
	mux := http.NewServeMux()
	New(f).Routes(mux)
	return WithCORS(mux)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDeckLoadedThenMaster(t *testing.T) {
	f := playback.NewFact()
	h := newHandler(f)

	rec := do(t, h, http.MethodPost, "/deckLoaded/A", `{"value":"Biggie","elapsed":12.5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	_, ok := f.Current()
	assert.False(t, ok, "no master yet")

	rec = do(t, h, http.MethodPost, "/masterDeck", `{"deck":"a"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	cur, ok := f.Current()
	require.True(t, ok)
	assert.Equal(t, "Biggie", cur.Track)
	assert.Equal(t, 12.5, cur.Elapsed)
}

func TestUpdateDeckSeeksOrLoads(t *testing.T) {
	f := playback.NewFact()
	h := newHandler(f)
	require.NoError(t, f.Load(playback.DeckB, "Amberina", 0))

	rec := do(t, h, http.MethodPost, "/updateDeck/B", `{"elapsed":41.6}`)
	require.Equal(t, http.StatusOK, rec.Code)
	ds, _ := f.Deck(playback.DeckB)
	assert.Equal(t, "Amberina", ds.Track)
	assert.Equal(t, 41.6, ds.Elapsed)

	rec = do(t, h, http.MethodPost, "/updateDeck/B", `{"value":"Noot","elapsed":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	ds, _ = f.Deck(playback.DeckB)
	assert.Equal(t, "Noot", ds.Track)
	assert.Equal(t, 3.0, ds.Elapsed)
}

func TestRejectsBadInput(t *testing.T) {
	f := playback.NewFact()
	h := newHandler(f)

	cases := []struct {
		name, method, path, body string
		code                     int
	}{
		{"unknown deck", http.MethodPost, "/deckLoaded/C", `{"value":"x"}`, http.StatusNotFound},
		{"negative elapsed", http.MethodPost, "/updateDeck/A", `{"elapsed":-1}`, http.StatusBadRequest},
		{"broken json", http.MethodPost, "/deckLoaded/A", `{"value":`, http.StatusBadRequest},
		{"unknown master", http.MethodPost, "/masterDeck", `{"deck":"Z"}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.code, rec.Code)
			var r reply
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
			assert.False(t, r.Success)
			assert.NotEmpty(t, r.Error)
		})
	}

	ds, _ := f.Deck(playback.DeckA)
	assert.Equal(t, playback.NoTrack, ds.Track, "rejected pushes leave the fact alone")
}

func TestStateAndPing(t *testing.T) {
	f := playback.NewFact()
	h := newHandler(f)
	require.NoError(t, f.Load(playback.DeckA, "Biggie", 20))
	require.NoError(t, f.SetMaster(playback.DeckA))

	rec := do(t, h, http.MethodGet, "/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var s playback.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, playback.DeckA, s.Master)
	assert.Equal(t, "Biggie", s.Decks[playback.DeckA].Track)
	assert.Equal(t, playback.NoTrack, s.Decks[playback.DeckB].Track)

	rec = do(t, h, http.MethodGet, "/deckLoaded/B", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodDelete, "/state", "").Code)
}

func TestCORSPreflight(t *testing.T) {
	rec := do(t, newHandler(playback.NewFact()), http.MethodOptions, "/masterDeck", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
