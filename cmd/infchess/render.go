package main

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/benbeisheim/infinichess-backend/internal/model"
)

var pieceLetters = map[model.PieceType]string{
	model.King:   "k",
	model.Queen:  "q",
	model.Rook:   "r",
	model.Bishop: "b",
	model.Knight: "n",
	model.Pawn:   "p",
}

func pieceLetter(p model.Piece) string {
	letter, ok := pieceLetters[p.Type]
	if !ok {
		letter = "?"
	}
	if p.Color == model.White {
		return strings.ToUpper(letter)
	}
	return letter
}

// render draws the window as text, one rank per line. White pieces are
// upper case. Lookups go through the board so untouched pawn squares still
// show their default pawn.
func render(w io.Writer, b *model.Board, win model.Window) error {
	one := big.NewInt(1)
	rankEnd := new(big.Int).Add(win.Rank, win.Size)
	fileEnd := new(big.Int).Add(win.File, win.Size)

	for rank := new(big.Int).Set(win.Rank); rank.Cmp(rankEnd) < 0; rank.Add(rank, one) {
		var line strings.Builder
		for file := new(big.Int).Set(win.File); file.Cmp(fileEnd) < 0; file.Add(file, one) {
			if file.Cmp(win.File) != 0 {
				line.WriteByte(' ')
			}
			id, ok := b.PieceAt(model.Position{Rank: rank, File: file})
			if !ok {
				line.WriteByte('.')
				continue
			}
			line.WriteString(pieceLetter(b.Piece(id)))
		}
		if _, err := fmt.Fprintf(w, "%6s  %s\n", rank, line.String()); err != nil {
			return err
		}
	}
	return nil
}
