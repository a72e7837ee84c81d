// Package deck persists the learner's vocabulary flashcards. The deck
// is a single JSON file loaded at startup and rewritten on every
// mutation; conversations are short and decks are small, so the whole
// file approach keeps recovery trivial.
package deck

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Card is one vocabulary flashcard.
type Card struct {
	ID          string    `json:"id"`
	Language    string    `json:"language"`
	Word        string    `json:"word"`
	Translation string    `json:"translation"`
	IPA         string    `json:"ipa,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	AddedAt     time.Time `json:"added_at"`
}

// Store is a file-backed card collection. Safe for concurrent use.
type Store struct {
	path string

	mu    sync.Mutex
	cards []Card
}

// Open loads the deck at path, creating an empty one when the file
// does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read deck: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.cards); err != nil {
		return nil, fmt.Errorf("parse deck %s: %w", path, err)
	}
	return s, nil
}

// Add appends a card and persists the deck. The card's ID and AddedAt
// are assigned here.
func (s *Store) Add(card Card) (Card, error) {
	if strings.TrimSpace(card.Word) == "" {
		return Card{}, fmt.Errorf("card word must not be empty")
	}
	card.ID = uuid.NewString()
	card.AddedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards = append(s.cards, card)
	if err := s.save(); err != nil {
		s.cards = s.cards[:len(s.cards)-1]
		return Card{}, err
	}
	return card, nil
}

// Remove deletes a card by ID and persists the deck.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, card := range s.cards {
		if card.ID == id {
			s.cards = append(s.cards[:i], s.cards[i+1:]...)
			return s.save()
		}
	}
	return fmt.Errorf("no card with id %s", id)
}

// Cards returns the cards sorted newest first.
func (s *Store) Cards() []Card {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Card, len(s.cards))
	copy(out, s.cards)
	sort.Slice(out, func(i, j int) bool {
		return out[i].AddedAt.After(out[j].AddedAt)
	})
	return out
}

// ForLanguage returns the cards for one language, newest first.
func (s *Store) ForLanguage(language string) []Card {
	var out []Card
	for _, card := range s.Cards() {
		if strings.EqualFold(card.Language, language) {
			out = append(out, card)
		}
	}
	return out
}

// save writes the deck to disk. Callers hold s.mu.
func (s *Store) save() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create deck directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(s.cards, "", "  ")
	if err != nil {
		return fmt.Errorf("encode deck: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write deck: %w", err)
	}
	return nil
}
