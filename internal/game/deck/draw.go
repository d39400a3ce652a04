package deck

// cardAt maps a deck index in [0, 52) to a Card. Indexes map to suits in
// order (clubs, diamonds, hearts, spades) with ranks 2-14 within each suit.
func cardAt(index int) Card {
	return Card{
		Rank: MinRank + index%13,
		Suit: Suit(index / 13),
	}
}

// Draw produces a uniformly random 5-card hand from a complete, unbiased
// 52-card deck with no replacement. A fresh deck is assembled for every
// call; partial deck state is never exposed.
//
// Precondition: src must be non-nil.
// Postcondition: The returned hand passes Validate().
func Draw(src Source) Hand {
	var indexes [DeckSize]int
	for i := range indexes {
		indexes[i] = i
	}

	// Partial Fisher-Yates: only the first HandSize positions are needed.
	var hand Hand
	for i := 0; i < HandSize; i++ {
		j := i + src.Intn(DeckSize-i)
		indexes[i], indexes[j] = indexes[j], indexes[i]
		hand[i] = cardAt(indexes[i])
	}
	return hand
}
