package knol

import (
	"testing"

	"github.com/conorfennell/knolstudy/internal/domain"
)

func TestNormalize(t *testing.T) {
	card := domain.Card{
		Front: "  What is HTMX? \r\n",
		Back:  "A library for AJAX.",
	}
	expected := "what is htmx?\na library for ajax."
	normalized := Normalize(card)

	if normalized != expected {
		t.Errorf("Expected normalized string to be '%s', but got '%s'", expected, normalized)
	}
}

func TestHash(t *testing.T) {
	t.Run("generates correct hash", func(t *testing.T) {
		card := domain.Card{
			Front: "Q",
			Back:  "A",
		}
		// Hash for "q\na"
		expectedHash := "27d2d5c8276a1f606af38834a9294ae5d3bfc6c5097c03e3fdd6e8c5c37e2ba7"
		hash := Hash(card)

		if hash != expectedHash {
			t.Errorf("Expected hash '%s', but got '%s'", expectedHash, hash)
		}
	})

	t.Run("normalization produces same hash", func(t *testing.T) {
		card1 := domain.Card{
			Front: "  what is go? ",
			Back:  "A programming language.",
		}
		card2 := domain.Card{
			Front: "What Is Go?",
			Back:  "A programming language.",
		}
		if Hash(card1) != Hash(card2) {
			t.Error("Expected hashes to be the same after normalization, but they were different.")
		}
	})

	t.Run("scheduling state is ignored", func(t *testing.T) {
		card1 := domain.Card{Front: "Test", Back: "x"}
		card2 := domain.Card{Front: "Test", Back: "x", Interval: 20, ReviewCount: 8, Tags: []string{"t"}}
		if Hash(card1) != Hash(card2) {
			t.Error("Expected hashes to ignore scheduling state")
		}
	})

	t.Run("different cards have different hashes", func(t *testing.T) {
		card1 := domain.Card{Front: "ab", Back: "c"}
		card2 := domain.Card{Front: "a", Back: "bc"}
		if Hash(card1) == Hash(card2) {
			t.Error("Expected hashes for different cards to be different")
		}
	})
}

func TestIndex(t *testing.T) {
	cards := []domain.Card{
		{ID: "1", Front: "Q", Back: "A"},
		{ID: "2", Front: "q ", Back: "a"},
		{ID: "3", Front: "Other", Back: "A"},
	}
	idx := Index(cards)
	if len(idx) != 2 {
		t.Fatalf("Expected 2 distinct hashes, but got %d", len(idx))
	}
	if idx[Hash(cards[1])] != "1" {
		t.Errorf("Expected the first card to own a duplicated hash, but got %s", idx[Hash(cards[1])])
	}
}
