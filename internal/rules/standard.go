// Package rules holds movement-shape rules for the board. A rule set only
// decides whether a piece can reach a square; the board itself forbids
// landing on a piece of the mover's own color.
package rules

import (
	"math/big"

	"github.com/benbeisheim/infinichess-backend/internal/model"
)

var (
	one   = big.NewInt(1)
	four  = big.NewInt(4)
	zero  = big.NewInt(0)
	seven = big.NewInt(7)
)

// Standard moves pieces the way orthodox chess does, on a board without edges.
// Black pawns advance toward higher ranks, white pawns toward lower ones.
type Standard struct{}

func NewStandard() Standard {
	return Standard{}
}

func (s Standard) CanMove(b *model.Board, id model.PieceID, to model.Position) bool {
	piece := b.Piece(id)
	from := piece.Position
	dr := new(big.Int).Sub(to.Rank, from.Rank)
	df := new(big.Int).Sub(to.File, from.File)

	switch piece.Type {
	case model.Pawn:
		return s.pawn(b, piece, to, dr, df)
	case model.Knight:
		return (isAbs(dr, 1) && isAbs(df, 2)) || (isAbs(dr, 2) && isAbs(df, 1))
	case model.Bishop:
		return diagonal(dr, df) && b.ClearPath(from, to)
	case model.Rook:
		return straight(dr, df) && b.ClearPath(from, to)
	case model.Queen:
		return (diagonal(dr, df) || straight(dr, df)) && b.ClearPath(from, to)
	case model.King:
		if dr.CmpAbs(one) <= 0 && df.CmpAbs(one) <= 0 {
			return true
		}
		return s.castle(b, piece, dr, df)
	}
	return false
}

func (s Standard) pawn(b *model.Board, piece model.Piece, to model.Position, dr, df *big.Int) bool {
	forward, startRank := int64(1), int64(model.BlackPawnRank)
	if piece.Color == model.White {
		forward, startRank = -1, model.WhitePawnRank
	}

	switch {
	case df.Sign() == 0 && dr.Cmp(big.NewInt(forward)) == 0:
		_, occupied := b.PieceAt(to)
		return !occupied
	case df.Sign() == 0 && dr.Cmp(big.NewInt(2*forward)) == 0:
		if piece.Position.Rank.Cmp(big.NewInt(startRank)) != 0 || b.HasMoved(piece.ID) {
			return false
		}
		_, occupied := b.PieceAt(to)
		return !occupied && b.ClearPath(piece.Position, to)
	case isAbs(df, 1) && dr.Cmp(big.NewInt(forward)) == 0:
		if _, occupied := b.PieceAt(to); occupied {
			return true
		}
		return s.enPassant(b, piece, to)
	}
	return false
}

// enPassant only allows taking a pawn that advanced two ranks on the previous ply.
func (s Standard) enPassant(b *model.Board, piece model.Piece, to model.Position) bool {
	victim, ok := b.PieceAt(model.Position{Rank: piece.Position.Rank, File: to.File})
	if !ok {
		return false
	}
	v := b.Piece(victim)
	if v.Type != model.Pawn || v.Color == piece.Color {
		return false
	}
	last, ok := b.LastPly()
	if !ok || last.Piece != victim {
		return false
	}
	advance := new(big.Int).Sub(last.To.Rank, last.From.Rank)
	return isAbs(advance, 2) && last.From.File.Cmp(last.To.File) == 0
}

// castle allows the king to move two files toward an unmoved rook of its own
// color on file 0 or 7 when every square between them is empty.
func (s Standard) castle(b *model.Board, king model.Piece, dr, df *big.Int) bool {
	if dr.Sign() != 0 || !isAbs(df, 2) || king.Position.File.Cmp(four) != 0 || b.HasMoved(king.ID) {
		return false
	}
	rookFile := seven
	if df.Sign() < 0 {
		rookFile = zero
	}
	rookPos := model.Position{Rank: king.Position.Rank, File: rookFile}
	rookID, ok := b.PieceAt(rookPos)
	if !ok {
		return false
	}
	rook := b.Piece(rookID)
	if rook.Type != model.Rook || rook.Color != king.Color || b.HasMoved(rookID) {
		return false
	}
	return b.ClearPath(king.Position, rookPos)
}

func isAbs(n *big.Int, v int64) bool {
	return n.CmpAbs(big.NewInt(v)) == 0
}

func diagonal(dr, df *big.Int) bool {
	return dr.Sign() != 0 && dr.CmpAbs(df) == 0
}

func straight(dr, df *big.Int) bool {
	return (dr.Sign() == 0) != (df.Sign() == 0)
}
