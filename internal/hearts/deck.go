package hearts

import (
	"fmt"
	"math/rand"
	"time"
)

const (
	NumPlayers     = 4
	CardsPerPlayer = 13
	DeckSize       = 52
	TotalPoints    = 26
)

type Deck struct {
	cards []Card
	rng   *rand.Rand
}

func NewDeck() *Deck {
	deck := &Deck{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	deck.Reset()
	return deck
}

func (d *Deck) Reset() {
	d.cards = make([]Card, 0, DeckSize)
	for _, suit := range AllSuits {
		for _, rank := range AllRanks {
			d.cards = append(d.cards, Card{Rank: rank, Suit: suit})
		}
	}
}

func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Deal splits the deck into four hands of thirteen, dealt one card at
// a time in seat order.
func (d *Deck) Deal() ([][]Card, error) {
	if len(d.cards) < NumPlayers*CardsPerPlayer {
		return nil, fmt.Errorf("not enough cards in deck: have %d, need %d", len(d.cards), NumPlayers*CardsPerPlayer)
	}

	hands := make([][]Card, NumPlayers)
	for i := range hands {
		hands[i] = make([]Card, 0, CardsPerPlayer)
	}
	for i := 0; i < CardsPerPlayer; i++ {
		for j := 0; j < NumPlayers; j++ {
			card := d.cards[0]
			d.cards = d.cards[1:]
			hands[j] = append(hands[j], card)
		}
	}
	return hands, nil
}

func (d *Deck) CardsRemaining() int {
	return len(d.cards)
}
