package review

import "github.com/freeeve/pgn/v3"

// moveToSAN renders a move in standard algebraic notation against the
// position it is played from, with disambiguation and check suffixes.
func moveToSAN(pos *pgn.GameState, mv pgn.Mv) string {
	if mv.Flags == 4 { // castling
		if mv.To > mv.From {
			return "O-O"
		}
		return "O-O-O"
	}

	const files = "abcdefgh"
	const ranks = "12345678"

	fromFile := int(mv.From) % 8
	fromRank := int(mv.From) / 8
	toFile := int(mv.To) % 8
	toRank := int(mv.To) / 8

	piece := pos.PieceAt(mv.From)
	isPawn := piece == 'P' || piece == 'p'
	isCapture := pos.PieceAt(mv.To) != 0 || (isPawn && mv.Flags == 2)

	var san string
	if isPawn {
		if isCapture {
			san = string(files[fromFile]) + "x" + string(files[toFile]) + string(ranks[toRank])
		} else {
			san = string(files[toFile]) + string(ranks[toRank])
		}
		switch mv.Promo {
		case pgn.PromoQueen:
			san += "=Q"
		case pgn.PromoRook:
			san += "=R"
		case pgn.PromoBishop:
			san += "=B"
		case pgn.PromoKnight:
			san += "=N"
		}
	} else {
		pieceChar := piece
		if piece >= 'a' && piece <= 'z' {
			pieceChar = piece - 32
		}
		san = string(pieceChar)

		// Another piece of the same type reaching the same square forces
		// a disambiguating file, rank, or both.
		disambig := ""
		for _, other := range pgn.GenerateLegalMoves(pos) {
			if other.To != mv.To || other.From == mv.From {
				continue
			}
			otherPiece := pos.PieceAt(other.From)
			if otherPiece >= 'a' && otherPiece <= 'z' {
				otherPiece -= 32
			}
			if otherPiece != pieceChar {
				continue
			}
			otherFile := int(other.From) % 8
			otherRank := int(other.From) / 8
			if fromFile != otherFile {
				disambig = string(files[fromFile])
			} else if fromRank != otherRank {
				disambig = string(ranks[fromRank])
			} else {
				disambig = string(files[fromFile]) + string(ranks[fromRank])
			}
			break
		}
		san += disambig

		if isCapture {
			san += "x"
		}
		san += string(files[toFile]) + string(ranks[toRank])
	}

	if next := pos.Pack().Unpack(); next != nil {
		_ = pgn.ApplyMove(next, mv)
		if next.IsInCheck() {
			if len(pgn.GenerateLegalMoves(next)) == 0 {
				san += "#"
			} else {
				san += "+"
			}
		}
	}

	return san
}
