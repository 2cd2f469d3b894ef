package playback

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

// NoTrack is what a deck reports before anything was loaded on it.
const NoTrack = "N/A"

var (
	ErrUnknownDeck     = errors.New("unknown deck")
	ErrNegativeElapsed = errors.New("elapsed must be a finite, non-negative number of seconds")
)

type Deck string

const (
	DeckA Deck = "A"
	DeckB Deck = "B"
)

// ParseDeck accepts "A"/"B" in any case.
func ParseDeck(s string) (Deck, error) {
	switch Deck(strings.ToUpper(strings.TrimSpace(s))) {
	case DeckA:
		return DeckA, nil
	case DeckB:
		return DeckB, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownDeck)
}

// DeckState is what one deck is playing and how far in.
type DeckState struct {
	Track   string    `json:"track"`
	Elapsed float64   `json:"elapsed"`
	Updated time.Time `json:"updated"`
}

// Current is the master deck's view handed to the engine.
type Current struct {
	Deck    Deck
	Track   string
	Elapsed float64
}

// Fact is written by the push transport and read by the engine on every tick.
type Fact struct {
	mu     sync.RWMutex
	decks  map[Deck]*DeckState
	master Deck
	now    func() time.Time
}

func NewFact() *Fact {
	return &Fact{
		decks: map[Deck]*DeckState{
			DeckA: {Track: NoTrack},
			DeckB: {Track: NoTrack},
		},
		now: time.Now,
	}
}

// Load records that deck d is playing track at elapsed seconds. Both fields change together.
func (f *Fact) Load(d Deck, track string, elapsed float64) error {
	if err := checkElapsed(elapsed); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ds, ok := f.decks[d]
	if !ok {
		return fmt.Errorf("load %q: %w", d, ErrUnknownDeck)
	}
	if track == "" {
		track = NoTrack
	}
	ds.Track, ds.Elapsed, ds.Updated = track, elapsed, f.now()
	return nil
}

// Seek updates only the elapsed time of deck d.
func (f *Fact) Seek(d Deck, elapsed float64) error {
	if err := checkElapsed(elapsed); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ds, ok := f.decks[d]
	if !ok {
		return fmt.Errorf("seek %q: %w", d, ErrUnknownDeck)
	}
	ds.Elapsed, ds.Updated = elapsed, f.now()
	return nil
}

func (f *Fact) SetMaster(d Deck) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.decks[d]; !ok {
		return fmt.Errorf("master %q: %w", d, ErrUnknownDeck)
	}
	f.master = d
	return nil
}

func (f *Fact) Master() Deck {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.master
}

func (f *Fact) Deck(d Deck) (DeckState, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ds, ok := f.decks[d]
	if !ok {
		return DeckState{}, false
	}
	return *ds, true
}

// Current reports the master deck. ok is false until a master deck was chosen.
func (f *Fact) Current() (Current, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ds, ok := f.decks[f.master]
	if !ok {
		return Current{Track: NoTrack}, false
	}
	return Current{Deck: f.master, Track: ds.Track, Elapsed: ds.Elapsed}, true
}

// State is the JSON view served by the transport.
type State struct {
	Master Deck               `json:"master"`
	Decks  map[Deck]DeckState `json:"decks"`
}

func (f *Fact) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	s := State{Master: f.master, Decks: make(map[Deck]DeckState, len(f.decks))}
	for d, ds := range f.decks {
		s.Decks[d] = *ds
	}
	return s
}

func checkElapsed(v float64) error {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%v: %w", v, ErrNegativeElapsed)
	}
	return nil
}
