// Package openings provides opening-name lookup for review annotations,
// from a small built-in book rather than external data files.
package openings

import (
	"strings"

	"github.com/freeeve/pgn/v3"
)

// line is one opening: a space-separated SAN sequence and its name.
type line struct {
	moves string
	name  string
}

// The book covers the mainlines a casual analysis tool actually encounters.
var book = []line{
	{"e4", "King's Pawn Opening"},
	{"d4", "Queen's Pawn Opening"},
	{"c4", "English Opening"},
	{"Nf3", "Réti Opening"},
	{"e4 e5", "Open Game"},
	{"e4 c5", "Sicilian Defense"},
	{"e4 e6", "French Defense"},
	{"e4 c6", "Caro-Kann Defense"},
	{"e4 d5", "Scandinavian Defense"},
	{"e4 d6", "Pirc Defense"},
	{"e4 Nf6", "Alekhine's Defense"},
	{"e4 e5 Nf3", "King's Knight Opening"},
	{"e4 e5 Nf3 Nc6", "King's Knight Opening"},
	{"e4 e5 Nf3 Nc6 Bb5", "Ruy Lopez"},
	{"e4 e5 Nf3 Nc6 Bb5 a6", "Ruy Lopez: Morphy Defense"},
	{"e4 e5 Nf3 Nc6 Bc4", "Italian Game"},
	{"e4 e5 Nf3 Nc6 Bc4 Bc5", "Italian Game: Giuoco Piano"},
	{"e4 e5 Nf3 Nc6 Bc4 Nf6", "Italian Game: Two Knights Defense"},
	{"e4 e5 Nf3 Nc6 d4", "Scotch Game"},
	{"e4 e5 Nf3 Nf6", "Petrov's Defense"},
	{"e4 e5 f4", "King's Gambit"},
	{"e4 c5 Nf3", "Sicilian Defense"},
	{"e4 c5 Nf3 d6", "Sicilian Defense"},
	{"e4 c5 Nf3 d6 d4 cxd4 Nxd4 Nf6 Nc3 a6", "Sicilian Defense: Najdorf Variation"},
	{"e4 c5 Nf3 Nc6", "Sicilian Defense: Old Sicilian"},
	{"e4 c5 Nf3 e6", "Sicilian Defense: French Variation"},
	{"e4 e6 d4 d5", "French Defense"},
	{"e4 c6 d4 d5", "Caro-Kann Defense"},
	{"d4 d5", "Closed Game"},
	{"d4 d5 c4", "Queen's Gambit"},
	{"d4 d5 c4 dxc4", "Queen's Gambit Accepted"},
	{"d4 d5 c4 e6", "Queen's Gambit Declined"},
	{"d4 d5 c4 c6", "Slav Defense"},
	{"d4 Nf6", "Indian Defense"},
	{"d4 Nf6 c4 e6", "Indian Defense"},
	{"d4 Nf6 c4 e6 Nc3 Bb4", "Nimzo-Indian Defense"},
	{"d4 Nf6 c4 g6", "King's Indian Defense"},
	{"d4 Nf6 c4 g6 Nc3 d5", "Grünfeld Defense"},
	{"d4 f5", "Dutch Defense"},
	{"c4 e5", "English Opening: Reversed Sicilian"},
	{"c4 Nf6", "English Opening: Anglo-Indian Defense"},
}

// Book maps packed positions to opening names.
type Book struct {
	byPosition map[pgn.PackedPosition]string
}

// NewBook builds the built-in book by replaying each line. Lines that fail
// to replay are skipped.
func NewBook() *Book {
	b := &Book{byPosition: make(map[pgn.PackedPosition]string)}
	for _, l := range book {
		pos := pgn.NewStartingPosition()
		if err := applySANLine(pos, l.moves); err != nil {
			continue
		}
		b.byPosition[pos.Pack()] = l.name
	}
	return b
}

// Lookup returns the opening name for a position, if the book knows it.
func (b *Book) Lookup(packed pgn.PackedPosition) (string, bool) {
	name, ok := b.byPosition[packed]
	return name, ok
}

// Count returns the number of distinct book positions.
func (b *Book) Count() int {
	return len(b.byPosition)
}

func applySANLine(pos *pgn.GameState, moves string) error {
	for _, san := range strings.Fields(moves) {
		san = strings.TrimSuffix(san, "+")
		san = strings.TrimSuffix(san, "#")
		mv, err := pgn.ParseSAN(pos, san)
		if err != nil {
			return err
		}
		if err := pgn.ApplyMove(pos, mv); err != nil {
			return err
		}
	}
	return nil
}
