package model

import (
	"fmt"
	"math/big"
)

// Default pawns are created lazily on these ranks the first time a square on
// them is looked up.
const (
	BlackPawnRank = 1
	WhitePawnRank = 6
)

var (
	blackPawnRank = big.NewInt(BlackPawnRank)
	whitePawnRank = big.NewInt(WhitePawnRank)
)

// Board is the authoritative game state. It is not safe for concurrent use;
// every method, lookups included, may mutate it.
type Board struct {
	turn       *big.Int
	pieces     []Piece
	whitePawns *PawnRank
	blackPawns *PawnRank
	history    *History
}

func NewBoard() *Board {
	return &Board{
		turn:       new(big.Int),
		pieces:     make([]Piece, 0),
		whitePawns: NewPawnRank(),
		blackPawns: NewPawnRank(),
		history:    NewHistory(),
	}
}

func (b *Board) Turn() *big.Int {
	return new(big.Int).Set(b.turn)
}

// AdvanceTurn is called once per committed move.
func (b *Board) AdvanceTurn() {
	b.turn.Add(b.turn, big.NewInt(1))
}

// SetTurn is only meant for rebuilding a board from its serialized form.
func (b *Board) SetTurn(turn *big.Int) {
	b.turn = new(big.Int).Set(turn)
}

func (b *Board) PlacePiece(t PieceType, c Color, pos Position) PieceID {
	id := PieceID(len(b.pieces))
	b.pieces = append(b.pieces, Piece{ID: id, Type: t, Color: c, Position: pos.Clone()})
	return id
}

func (b *Board) Len() int {
	return len(b.pieces)
}

// Piece returns a copy of the piece with the given identity. An identity the
// arena never handed out is a programming error.
func (b *Board) Piece(id PieceID) Piece {
	return b.piece(id).clone()
}

func (b *Board) piece(id PieceID) *Piece {
	if id < 0 || int(id) >= len(b.pieces) {
		panic(fmt.Sprintf("model: piece %d out of range [0, %d)", id, len(b.pieces)))
	}
	return &b.pieces[id]
}

// Pieces lists every piece that has not been captured, in arena order.
func (b *Board) Pieces() []Piece {
	out := make([]Piece, 0, len(b.pieces))
	for _, p := range b.pieces {
		if !p.Captured {
			out = append(out, p.clone())
		}
	}
	return out
}

func (b *Board) History() []Ply {
	return b.history.Plies()
}

func (b *Board) LastPly() (Ply, bool) {
	return b.history.Last()
}

func (b *Board) LastMoved() (PieceID, bool) {
	return b.history.LastMoved()
}

func (b *Board) HasMoved(id PieceID) bool {
	return b.history.Moved(id)
}

func (b *Board) pawnRank(c Color) *PawnRank {
	if c == White {
		return b.whitePawns
	}
	return b.blackPawns
}

// MaterializedFiles lists the files on which c's default pawn was created.
func (b *Board) MaterializedFiles(c Color) []*big.Int {
	return b.pawnRank(c).Files()
}

// MarkMaterialized records that c's default pawn on file no longer needs
// creating. Used when rebuilding a board from its serialized form.
func (b *Board) MarkMaterialized(c Color, file *big.Int) {
	b.pawnRank(c).MarkMaterialized(file)
}

func (b *Board) materialize(pos Position) {
	if pos.Rank.Cmp(blackPawnRank) == 0 && !b.blackPawns.HasMaterialized(pos.File) {
		b.blackPawns.MarkMaterialized(pos.File)
		b.PlacePiece(Pawn, Black, pos)
	}
	if pos.Rank.Cmp(whitePawnRank) == 0 && !b.whitePawns.HasMaterialized(pos.File) {
		b.whitePawns.MarkMaterialized(pos.File)
		b.PlacePiece(Pawn, White, pos)
	}
}

// PieceAt returns the piece standing on pos. Looking at a square on a pawn
// rank creates that rank's default pawn the first time the file is touched.
func (b *Board) PieceAt(pos Position) (PieceID, bool) {
	b.materialize(pos)
	for i := range b.pieces {
		p := &b.pieces[i]
		if !p.Captured && p.Position.Equal(pos) {
			return p.ID, true
		}
	}
	return 0, false
}

// ClearPath reports whether every square strictly between from and to is
// empty. from and to must share a rank, a file or a diagonal; for any other
// pair it reports false.
func (b *Board) ClearPath(from, to Position) bool {
	dr := new(big.Int).Sub(to.Rank, from.Rank)
	df := new(big.Int).Sub(to.File, from.File)
	if dr.Sign() != 0 && df.Sign() != 0 && dr.CmpAbs(df) != 0 {
		return false
	}
	stepRank, stepFile := int64(dr.Sign()), int64(df.Sign())
	for cur := from.Offset(stepRank, stepFile); !cur.Equal(to); cur = cur.Offset(stepRank, stepFile) {
		if _, ok := b.PieceAt(cur); ok {
			return false
		}
	}
	return true
}

// ApplyMove moves the piece on from to to without checking legality. It
// captures an occupant of to, captures en passant by position, and carries
// the rook along when a king moves two or more files. It reports false when
// there is nothing to move.
func (b *Board) ApplyMove(from, to Position) bool {
	id, ok := b.PieceAt(from)
	if !ok {
		return false
	}
	moverType := b.piece(id).Type
	var captured *PieceID
	var castle *CastleRookMove

	if target, ok := b.PieceAt(to); ok {
		b.piece(target).capture()
		captured = &target
	} else if moverType == Pawn {
		// en passant
		if side, ok := b.PieceAt(Position{Rank: from.Rank, File: to.File}); ok && side != id {
			b.piece(side).capture()
			captured = &side
		}
	} else if moverType == King && new(big.Int).Sub(from.File, to.File).CmpAbs(big.NewInt(2)) >= 0 {
		var rookFrom, rookTo int64
		switch {
		case to.File.Cmp(big.NewInt(2)) == 0:
			rookFrom, rookTo = 0, 3
		case to.File.Cmp(big.NewInt(6)) == 0:
			rookFrom, rookTo = 7, 5
		}
		if rookFrom != rookTo {
			src := Position{Rank: from.Rank, File: big.NewInt(rookFrom)}
			rook, ok := b.PieceAt(src)
			if !ok {
				return false
			}
			dst := Position{Rank: from.Rank, File: big.NewInt(rookTo)}
			b.piece(rook).goTo(dst)
			castle = &CastleRookMove{Rook: rook, From: src.Clone(), To: dst.Clone()}
		}
	}

	// lookups above may have grown the arena
	mover := b.piece(id)
	ply := Ply{
		Piece:          id,
		From:           from.Clone(),
		To:             to.Clone(),
		CapturedPiece:  captured,
		CastleRookMove: castle,
		Notation:       notation(*mover, to, captured != nil, castle),
	}
	mover.goTo(to)
	b.history.Append(ply)
	return true
}

// Promote rewrites the type of the piece on pos. It does not touch the turn
// counter or the history.
func (b *Board) Promote(pos Position, t PieceType) (PieceID, bool) {
	id, ok := b.PieceAt(pos)
	if !ok {
		return 0, false
	}
	b.piece(id).Type = t
	return id, true
}
