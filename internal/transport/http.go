package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-dragonstage/internal/playback"
)

const maxBody = 64 << 10

// Server accepts playback pushes from the DJ software and keeps the fact current.
type Server struct {
	fact *playback.Fact
}

func New(f *playback.Fact) *Server { return &Server{fact: f} }

// Routes mounts the push endpoints and the state view.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /deckLoaded/{deck}", s.deckLoaded)
	mux.HandleFunc("GET /deckLoaded/{deck}", s.ping)
	mux.HandleFunc("POST /updateDeck/{deck}", s.updateDeck)
	mux.HandleFunc("POST /masterDeck", s.masterDeck)
	mux.HandleFunc("GET /state", s.state)
}

type deckLoadedReq struct {
	Value   string   `json:"value"`
	Elapsed *float64 `json:"elapsed"`
}

type updateDeckReq struct {
	Value   *string `json:"value"`
	Elapsed float64 `json:"elapsed"`
}

type masterDeckReq struct {
	Deck string `json:"deck"`
}

type reply struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) deckLoaded(w http.ResponseWriter, r *http.Request) {
	d, ok := deck(w, r)
	if !ok {
		return
	}
	var req deckLoadedReq
	if !decode(w, r, &req) {
		return
	}
	elapsed := 0.0
	if req.Elapsed != nil {
		elapsed = *req.Elapsed
	}
	if err := s.fact.Load(d, req.Value, elapsed); err != nil {
		fail(w, err)
		return
	}
	log.Info().Str("deck", string(d)).Str("track", req.Value).Float64("elapsed", elapsed).Msg("deck loaded")
	ok200(w)
}

func (s *Server) updateDeck(w http.ResponseWriter, r *http.Request) {
	d, ok := deck(w, r)
	if !ok {
		return
	}
	var req updateDeckReq
	if !decode(w, r, &req) {
		return
	}
	var err error
	if req.Value != nil {
		err = s.fact.Load(d, *req.Value, req.Elapsed)
	} else {
		err = s.fact.Seek(d, req.Elapsed)
	}
	if err != nil {
		fail(w, err)
		return
	}
	log.Debug().Str("deck", string(d)).Float64("elapsed", req.Elapsed).Msg("deck update")
	ok200(w)
}

func (s *Server) masterDeck(w http.ResponseWriter, r *http.Request) {
	var req masterDeckReq
	if !decode(w, r, &req) {
		return
	}
	d, err := playback.ParseDeck(req.Deck)
	if err == nil {
		err = s.fact.SetMaster(d)
	}
	if err != nil {
		fail(w, err)
		return
	}
	log.Info().Str("deck", string(d)).Msg("master deck")
	ok200(w)
}

func (s *Server) state(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.fact.State())
}

func (s *Server) ping(w http.ResponseWriter, r *http.Request) {
	if _, ok := deck(w, r); ok {
		ok200(w)
	}
}

func deck(w http.ResponseWriter, r *http.Request) (playback.Deck, bool) {
	d, err := playback.ParseDeck(r.PathValue("deck"))
	if err != nil {
		fail(w, err)
		return "", false
	}
	return d, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, reply{Error: fmt.Sprintf("bad body: %v", err)})
		return false
	}
	return true
}

func fail(w http.ResponseWriter, err error) {
	code := http.StatusBadRequest
	if errors.Is(err, playback.ErrUnknownDeck) {
		code = http.StatusNotFound
	}
	log.Warn().Err(err).Int("status", code).Msg("playback push rejected")
	writeJSON(w, code, reply{Error: err.Error()})
}

func ok200(w http.ResponseWriter) { writeJSON(w, http.StatusOK, reply{Success: true}) }

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WithCORS lets browser-based controllers call the API from any origin.
func WithCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		h.ServeHTTP(w, r)
	})
}
