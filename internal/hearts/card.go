package hearts

import (
	"fmt"
	"strings"
)

type Suit string
type Rank string

const (
	Hearts   Suit = "Hearts"
	Diamonds Suit = "Diamonds"
	Clubs    Suit = "Clubs"
	Spades   Suit = "Spades"
)

const (
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
	Ace   Rank = "A"
)

// Suits in deck order with their wire glyphs.
var suitGlyphs = map[Suit]string{
	Hearts:   "♥",
	Diamonds: "♦",
	Clubs:    "♣",
	Spades:   "♠",
}

var glyphSuits = map[string]Suit{
	"♥": Hearts,
	"♦": Diamonds,
	"♣": Clubs,
	"♠": Spades,
}

// AllSuits and AllRanks fix the deck iteration order.
var AllSuits = []Suit{Hearts, Diamonds, Clubs, Spades}
var AllRanks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

// ErrMalformedCard is returned by Parse for unrecognized card codes.
var ErrMalformedCard = fmt.Errorf("malformed card")

type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

// TwoOfClubs must lead the first trick of every round.
var TwoOfClubs = Card{Rank: Two, Suit: Clubs}

// QueenOfSpades carries 13 points and breaks hearts.
var QueenOfSpades = Card{Rank: Queen, Suit: Spades}

// String renders the wire form: rank glyph followed by suit glyph,
// e.g. "2♣", "10♦", "Q♠". Round-trips with Parse.
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, suitGlyphs[c.Suit])
}

// Parse decodes a wire-form card code.
func Parse(s string) (Card, error) {
	for glyph, suit := range glyphSuits {
		if strings.HasSuffix(s, glyph) {
			rank := Rank(strings.TrimSuffix(s, glyph))
			if rank.Value() == 0 {
				return Card{}, fmt.Errorf("%w: bad rank in %q", ErrMalformedCard, s)
			}
			return Card{Rank: rank, Suit: suit}, nil
		}
	}
	return Card{}, fmt.Errorf("%w: bad suit in %q", ErrMalformedCard, s)
}

// Value returns the rank ordering value, 2..14.
func (r Rank) Value() int {
	switch r {
	case Two:
		return 2
	case Three:
		return 3
	case Four:
		return 4
	case Five:
		return 5
	case Six:
		return 6
	case Seven:
		return 7
	case Eight:
		return 8
	case Nine:
		return 9
	case Ten:
		return 10
	case Jack:
		return 11
	case Queen:
		return 12
	case King:
		return 13
	case Ace:
		return 14
	}
	return 0
}

// Value returns the card's rank ordering value.
func (c Card) Value() int {
	return c.Rank.Value()
}

// Points returns the Hearts penalty value of the card: each heart is
// worth 1, the queen of spades 13, everything else 0. A full deck
// carries 26 points.
func (c Card) Points() int {
	if c.Suit == Hearts {
		return 1
	}
	if c == QueenOfSpades {
		return 13
	}
	return 0
}

// Less orders cards by suit (deck order) then rank, used to keep
// hands sorted for the clients.
func (c Card) Less(other Card) bool {
	if c.Suit != other.Suit {
		return suitOrder(c.Suit) < suitOrder(other.Suit)
	}
	return c.Value() < other.Value()
}

func suitOrder(s Suit) int {
	for i, suit := range AllSuits {
		if suit == s {
			return i
		}
	}
	return len(AllSuits)
}
