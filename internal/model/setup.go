package model

var backRank = []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// StandardSetup places both back ranks: black on rank 0, white on rank 7,
// files 0 through 7. Pawns are left to lazy materialization.
func StandardSetup(b *Board) {
	for file, t := range backRank {
		b.PlacePiece(t, Black, NewPosition(0, int64(file)))
		b.PlacePiece(t, White, NewPosition(7, int64(file)))
	}
}
