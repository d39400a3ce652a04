package deck

import (
	"fmt"
	"sort"
)

// HandRank classifies a 5-card hand into one of the ten standard poker
// ranks. The enumeration is closed; every scoring switch over HandRank is
// exhaustive so an unhandled rank cannot silently mis-score.
type HandRank int

const (
	HighCard HandRank = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// Multiplier returns the fixed score multiplier for the hand rank.
//
// Postcondition: Returns one of 1.0, 1.2, 1.4, 1.6, 1.8, 2.0, 2.5, 3.0,
// 4.0, 5.0. Panics on a value outside the closed enumeration.
func (r HandRank) Multiplier() float64 {
	switch r {
	case HighCard:
		return 1.0
	case Pair:
		return 1.2
	case TwoPair:
		return 1.4
	case ThreeOfAKind:
		return 1.6
	case Straight:
		return 1.8
	case Flush:
		return 2.0
	case FullHouse:
		return 2.5
	case FourOfAKind:
		return 3.0
	case StraightFlush:
		return 4.0
	case RoyalFlush:
		return 5.0
	default:
		panic(fmt.Sprintf("deck: Multiplier called on invalid HandRank %d", int(r)))
	}
}

// String returns the conventional rank name.
func (r HandRank) String() string {
	switch r {
	case HighCard:
		return "high card"
	case Pair:
		return "pair"
	case TwoPair:
		return "two pair"
	case ThreeOfAKind:
		return "three of a kind"
	case Straight:
		return "straight"
	case Flush:
		return "flush"
	case FullHouse:
		return "full house"
	case FourOfAKind:
		return "four of a kind"
	case StraightFlush:
		return "straight flush"
	case RoyalFlush:
		return "royal flush"
	default:
		return fmt.Sprintf("handrank(%d)", int(r))
	}
}

// Classify deterministically assigns a HandRank to the hand using standard
// poker precedence. The Ace completes both the low straight (A-2-3-4-5) and
// the high straight (10-J-Q-K-A); a royal flush is a straight flush whose
// high card is the Ace.
//
// The system never compares one hand to another, only a score to a scalar
// difficulty, so kicker tie-breaks are irrelevant.
//
// Precondition: h must pass Validate().
// Postcondition: Returns exactly one of the ten HandRank values.
func Classify(h Hand) HandRank {
	counts := make(map[int]int, HandSize)
	flush := true
	for i, c := range h {
		counts[c.Rank]++
		if i > 0 && c.Suit != h[0].Suit {
			flush = false
		}
	}

	straight, aceHigh := isStraight(h)

	switch {
	case flush && straight && aceHigh:
		return RoyalFlush
	case flush && straight:
		return StraightFlush
	case hasCount(counts, 4):
		return FourOfAKind
	case hasCount(counts, 3) && hasCount(counts, 2):
		return FullHouse
	case flush:
		return Flush
	case straight:
		return Straight
	case hasCount(counts, 3):
		return ThreeOfAKind
	case pairCount(counts) == 2:
		return TwoPair
	case pairCount(counts) == 1:
		return Pair
	default:
		return HighCard
	}
}

// isStraight reports whether the five ranks are sequential, and whether the
// straight is Ace-high. The wheel (A-2-3-4-5) counts as a straight but is
// not Ace-high.
func isStraight(h Hand) (straight, aceHigh bool) {
	ranks := make([]int, HandSize)
	for i, c := range h {
		ranks[i] = c.Rank
	}
	sort.Ints(ranks)

	// Paired ranks can never form a straight.
	for i := 1; i < HandSize; i++ {
		if ranks[i] == ranks[i-1] {
			return false, false
		}
	}

	if ranks[HandSize-1]-ranks[0] == HandSize-1 {
		return true, ranks[HandSize-1] == MaxRank
	}

	// Wheel: 2,3,4,5,A once sorted.
	if ranks[0] == 2 && ranks[1] == 3 && ranks[2] == 4 && ranks[3] == 5 && ranks[4] == MaxRank {
		return true, false
	}
	return false, false
}

func hasCount(counts map[int]int, n int) bool {
	for _, c := range counts {
		if c == n {
			return true
		}
	}
	return false
}

func pairCount(counts map[int]int) int {
	pairs := 0
	for _, c := range counts {
		if c == 2 {
			pairs++
		}
	}
	return pairs
}

// BaseScore computes the hand's base numeric score: the sum of all five
// card ranks scaled by the hand rank's multiplier. Pure and fully
// deterministic given the hand.
//
// Postcondition: BaseScore(h) == float64(h.RankSum()) * Classify(h).Multiplier().
func BaseScore(h Hand) float64 {
	return float64(h.RankSum()) * Classify(h).Multiplier()
}
