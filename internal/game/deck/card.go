// Package deck models the standard 52-card deck, 5-card draws, and the
// poker-hand classifier that anchors every action resolution in Fifth Street.
package deck

import "fmt"

// Suit is one of the four card suits.
// The zero value is Clubs.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// NumSuits is the number of suits in a standard deck.
const NumSuits = 4

// String returns the lowercase suit name.
func (s Suit) String() string {
	switch s {
	case Clubs:
		return "clubs"
	case Diamonds:
		return "diamonds"
	case Hearts:
		return "hearts"
	case Spades:
		return "spades"
	default:
		return fmt.Sprintf("suit(%d)", uint8(s))
	}
}

// Symbol returns the single-rune suit symbol used in audit strings.
func (s Suit) Symbol() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// Card rank bounds. Jack=11, Queen=12, King=13, Ace=14.
const (
	MinRank = 2
	MaxRank = 14
)

// Card is an immutable card value. Cards are generated per draw, never
// persisted individually.
type Card struct {
	Rank int  // 2..14, where 11=Jack, 12=Queen, 13=King, 14=Ace
	Suit Suit // Clubs, Diamonds, Hearts, or Spades
}

// Valid reports whether the card lies in the standard 52-card domain.
func (c Card) Valid() bool {
	return c.Rank >= MinRank && c.Rank <= MaxRank && c.Suit < NumSuits
}

// String returns a short audit form such as "A♠" or "10♦".
func (c Card) String() string {
	return rankLabel(c.Rank) + c.Suit.Symbol()
}

func rankLabel(rank int) string {
	switch rank {
	case 11:
		return "J"
	case 12:
		return "Q"
	case 13:
		return "K"
	case 14:
		return "A"
	default:
		return fmt.Sprintf("%d", rank)
	}
}

// HandSize is the number of cards in every drawn hand.
const HandSize = 5

// DeckSize is the number of cards in a complete deck.
const DeckSize = 52

// Hand is an ordered set of exactly 5 distinct cards drawn without
// replacement from a fresh deck. Hands are never reused across resolutions.
//
// Invariant: no two cards share both rank and suit.
type Hand [HandSize]Card

// Validate checks the hand invariant: every card in the 52-card domain and
// no duplicate (rank, suit) pair.
//
// Postcondition: Returns nil iff the hand is a legal 5-card draw.
func (h Hand) Validate() error {
	seen := make(map[Card]bool, HandSize)
	for i, c := range h {
		if !c.Valid() {
			return fmt.Errorf("deck: card %d (%v) outside the 52-card domain", i, c)
		}
		if seen[c] {
			return fmt.Errorf("deck: duplicate card %v in hand", c)
		}
		seen[c] = true
	}
	return nil
}

// String returns the audit form of the hand, e.g. "A♠ K♠ 7♣ 3♥ 3♦".
func (h Hand) String() string {
	out := ""
	for i, c := range h {
		if i > 0 {
			out += " "
		}
		out += c.String()
	}
	return out
}

// RankSum returns the sum of all five card ranks.
func (h Hand) RankSum() int {
	sum := 0
	for _, c := range h {
		sum += c.Rank
	}
	return sum
}

// SuitRankSum returns the sum of ranks of cards matching the given suit.
func (h Hand) SuitRankSum(s Suit) int {
	sum := 0
	for _, c := range h {
		if c.Suit == s {
			sum += c.Rank
		}
	}
	return sum
}
