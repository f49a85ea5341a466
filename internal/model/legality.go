package model

import "math/big"

// Rules answers whether a piece can reach a square, ignoring whether the
// square holds a piece of its own color. Implementations run while the board
// is locked and must not block.
type Rules interface {
	CanMove(b *Board, id PieceID, to Position) bool
}

// RulesFunc adapts an ordinary function to Rules.
type RulesFunc func(b *Board, id PieceID, to Position) bool

func (f RulesFunc) CanMove(b *Board, id PieceID, to Position) bool {
	return f(b, id, to)
}

// IsMoveLegal reports whether the piece on from may move to to. A move onto a
// piece of the mover's own color is never legal, whatever rules says.
func (b *Board) IsMoveLegal(rules Rules, from, to Position) bool {
	if from.Equal(to) {
		return false
	}
	id, ok := b.PieceAt(from)
	if !ok {
		return false
	}
	canMove := rules.CanMove(b, id, to)
	if other, ok := b.PieceAt(to); ok && b.piece(other).Color == b.piece(id).Color {
		return false
	}
	return canMove
}

// Window is the square region [Rank, Rank+Size) x [File, File+Size).
type Window struct {
	Rank *big.Int
	File *big.Int
	Size *big.Int
}

func NewWindow(rank, file, size int64) Window {
	return Window{Rank: big.NewInt(rank), File: big.NewInt(file), Size: big.NewInt(size)}
}

// LegalMovesInWindow lists the legal destinations from origin inside w,
// ranks outer and files inner, both ascending.
func (b *Board) LegalMovesInWindow(rules Rules, origin Position, w Window) []Position {
	moves := make([]Position, 0)
	if w.Size.Sign() <= 0 {
		return moves
	}
	one := big.NewInt(1)
	rankEnd := new(big.Int).Add(w.Rank, w.Size)
	fileEnd := new(big.Int).Add(w.File, w.Size)
	for rank := new(big.Int).Set(w.Rank); rank.Cmp(rankEnd) < 0; rank.Add(rank, one) {
		for file := new(big.Int).Set(w.File); file.Cmp(fileEnd) < 0; file.Add(file, one) {
			to := Position{Rank: rank, File: file}
			if b.IsMoveLegal(rules, origin, to) {
				moves = append(moves, to.Clone())
			}
		}
	}
	return moves
}
