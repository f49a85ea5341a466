package model

import "fmt"

type CastleRookMove struct {
	Rook PieceID  `json:"rook"`
	From Position `json:"from"`
	To   Position `json:"to"`
}

// Ply is one applied move. Piece is the identity of the piece that moved.
type Ply struct {
	Piece          PieceID         `json:"piece"`
	From           Position        `json:"from"`
	To             Position        `json:"to"`
	CapturedPiece  *PieceID        `json:"capturedPiece"`
	CastleRookMove *CastleRookMove `json:"castleRookMove"`
	Notation       string          `json:"notation"`
}

// History is the append-only log of applied plies.
type History struct {
	plies []Ply
}

func NewHistory() *History {
	return &History{plies: make([]Ply, 0)}
}

func (h *History) Append(ply Ply) {
	h.plies = append(h.plies, ply)
}

func (h *History) Len() int {
	return len(h.plies)
}

// Last returns the most recent ply.
func (h *History) Last() (Ply, bool) {
	if len(h.plies) == 0 {
		return Ply{}, false
	}
	return h.plies[len(h.plies)-1], true
}

// LastMoved returns the identity of the most recently moved piece.
func (h *History) LastMoved() (PieceID, bool) {
	ply, ok := h.Last()
	return ply.Piece, ok
}

func (h *History) Moved(id PieceID) bool {
	for _, ply := range h.plies {
		if ply.Piece == id {
			return true
		}
	}
	return false
}

func (h *History) Plies() []Ply {
	out := make([]Ply, len(h.plies))
	copy(out, h.plies)
	return out
}

func notation(piece Piece, to Position, captured bool, castle *CastleRookMove) string {
	if castle != nil {
		if castle.From.File.Sign() == 0 {
			return "O-O-O"
		}
		return "O-O"
	}
	capture := ""
	if captured {
		capture = "x"
	}
	return fmt.Sprintf("%s%s%s", piece.Type.getPieceNotation(), capture, to)
}
