package model

import (
	"math/big"
	"testing"
)

var anything = RulesFunc(func(*Board, PieceID, Position) bool { return true })

func TestIsMoveLegalSameSquare(t *testing.T) {
	b := NewBoard()
	b.PlacePiece(Queen, White, pos(3, 3))
	for _, p := range []Position{pos(3, 3), pos(BlackPawnRank, 0), pos(-9, 12)} {
		if b.IsMoveLegal(anything, p, p) {
			t.Errorf("move %s -> %s reported legal", p, p)
		}
	}
}

func TestIsMoveLegalEmptyOrigin(t *testing.T) {
	b := NewBoard()
	called := false
	rules := RulesFunc(func(*Board, PieceID, Position) bool {
		called = true
		return true
	})
	if b.IsMoveLegal(rules, pos(3, 3), pos(4, 4)) {
		t.Error("move from empty square reported legal")
	}
	if called {
		t.Error("rules consulted without a piece")
	}
}

func TestIsMoveLegalOwnColorFilter(t *testing.T) {
	b := NewBoard()
	b.PlacePiece(Rook, White, pos(3, 0))
	b.PlacePiece(Knight, White, pos(3, 4))
	b.PlacePiece(Knight, Black, pos(3, 5))

	if b.IsMoveLegal(anything, pos(3, 0), pos(3, 4)) {
		t.Error("capture of own piece reported legal")
	}
	if !b.IsMoveLegal(anything, pos(3, 0), pos(3, 5)) {
		t.Error("capture of enemy piece reported illegal")
	}
	// the board keeps the rules' answer for empty squares
	never := RulesFunc(func(*Board, PieceID, Position) bool { return false })
	if b.IsMoveLegal(never, pos(3, 0), pos(3, 1)) {
		t.Error("rules veto ignored")
	}
}

func TestIsMoveLegalMaterializesOnly(t *testing.T) {
	b := NewBoard()
	b.PlacePiece(Rook, Black, pos(0, 9))

	b.IsMoveLegal(anything, pos(0, 9), pos(BlackPawnRank, 9))

	if b.Len() != 2 {
		t.Errorf("arena holds %d pieces, want 2", b.Len())
	}
	if len(b.History()) != 0 || b.Turn().Sign() != 0 {
		t.Error("legality check changed history or turn")
	}
}

func TestLegalMovesInWindow(t *testing.T) {
	b := NewBoard()
	b.PlacePiece(King, White, pos(3, 3))
	b.PlacePiece(Pawn, White, pos(4, 4))
	adjacent := RulesFunc(func(b *Board, id PieceID, to Position) bool {
		from := b.Piece(id).Position
		dr := new(big.Int).Sub(to.Rank, from.Rank)
		df := new(big.Int).Sub(to.File, from.File)
		return dr.CmpAbs(big.NewInt(1)) <= 0 && df.CmpAbs(big.NewInt(1)) <= 0
	})

	got := b.LegalMovesInWindow(adjacent, pos(3, 3), NewWindow(3, 3, 3))
	want := []Position{pos(3, 4), pos(4, 3)}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("move %d = %s, want %s", i, got[i], want[i])
		}
	}

	full := b.LegalMovesInWindow(adjacent, pos(3, 3), NewWindow(0, 0, 8))
	if len(full) != 7 {
		t.Errorf("got %d moves in full window, want 7", len(full))
	}
	for i := 1; i < len(full); i++ {
		if full[i-1].Compare(full[i]) >= 0 {
			t.Errorf("moves out of order: %s before %s", full[i-1], full[i])
		}
	}
}

func TestLegalMovesInWindowNonPositiveSize(t *testing.T) {
	b := NewBoard()
	b.PlacePiece(Queen, White, pos(3, 3))
	for _, size := range []int64{0, -1, -100} {
		if got := b.LegalMovesInWindow(anything, pos(3, 3), NewWindow(0, 0, size)); len(got) != 0 {
			t.Errorf("size %d returned %v", size, got)
		}
	}
}
