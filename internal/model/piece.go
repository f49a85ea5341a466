package model

type PieceType string

func (p PieceType) getPieceNotation() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return ""
	}
	return string(p)
}

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// PieceID is the index of a piece in the board arena. IDs are never reused.
type PieceID int

type Piece struct {
	ID       PieceID   `json:"id"`
	Type     PieceType `json:"type"`
	Color    Color     `json:"color"`
	Position Position  `json:"position"`
	Captured bool      `json:"captured"`
}

func (p *Piece) goTo(pos Position) {
	p.Position = pos.Clone()
}

func (p *Piece) capture() {
	p.Captured = true
}

func (p Piece) clone() Piece {
	p.Position = p.Position.Clone()
	return p
}
