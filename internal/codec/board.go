// Package codec converts boards to and from their JSON text form. Ranks,
// files and the turn are written as JSON numbers of arbitrary length.
package codec

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/benbeisheim/infinichess-backend/internal/model"
)

type PieceDoc struct {
	ID    model.PieceID   `json:"id"`
	Type  model.PieceType `json:"type"`
	Color model.Color     `json:"color"`
	Rank  *big.Int        `json:"rank"`
	File  *big.Int        `json:"file"`

	Captured bool `json:"captured,omitempty"`
}

type MaterializedDoc struct {
	White []*big.Int `json:"white"`
	Black []*big.Int `json:"black"`
}

// BoardDoc is the serialized board: every piece still in play plus the files
// whose default pawns have already been created.
type BoardDoc struct {
	Turn         *big.Int        `json:"turn"`
	Pieces       []PieceDoc      `json:"pieces"`
	Materialized MaterializedDoc `json:"materialized"`
}

func NewPieceDoc(p model.Piece) PieceDoc {
	return PieceDoc{
		ID:    p.ID,
		Type:  p.Type,
		Color: p.Color,
		Rank:  p.Position.Rank,
		File:  p.Position.File,

		Captured: p.Captured,
	}
}

func NewBoardDoc(b *model.Board) BoardDoc {
	pieces := b.Pieces()
	doc := BoardDoc{
		Turn:   b.Turn(),
		Pieces: make([]PieceDoc, 0, len(pieces)),
		Materialized: MaterializedDoc{
			White: b.MaterializedFiles(model.White),
			Black: b.MaterializedFiles(model.Black),
		},
	}
	for _, p := range pieces {
		doc.Pieces = append(doc.Pieces, NewPieceDoc(p))
	}
	return doc
}

func Encode(b *model.Board) ([]byte, error) {
	data, err := json.Marshal(NewBoardDoc(b))
	if err != nil {
		return nil, fmt.Errorf("encode board: %w", err)
	}
	return data, nil
}

func EncodePiece(p model.Piece) ([]byte, error) {
	data, err := json.Marshal(NewPieceDoc(p))
	if err != nil {
		return nil, fmt.Errorf("encode piece %d: %w", p.ID, err)
	}
	return data, nil
}

// Decode rebuilds a board from its text form. Pieces get fresh identities in
// the order they are listed; the history is not part of the text form.
func Decode(data []byte) (*model.Board, error) {
	var doc BoardDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode board: %w", err)
	}
	return doc.Board()
}

func (doc BoardDoc) Board() (*model.Board, error) {
	b := model.NewBoard()
	if doc.Turn != nil {
		if doc.Turn.Sign() < 0 {
			return nil, fmt.Errorf("decode board: negative turn %s", doc.Turn)
		}
		b.SetTurn(doc.Turn)
	}
	for _, f := range doc.Materialized.White {
		b.MarkMaterialized(model.White, f)
	}
	for _, f := range doc.Materialized.Black {
		b.MarkMaterialized(model.Black, f)
	}
	occupied := make(map[string]int, len(doc.Pieces))
	for i, p := range doc.Pieces {
		if p.Rank == nil || p.File == nil {
			return nil, fmt.Errorf("decode board: piece %d: %w", i, model.ErrInvalidCoordinate)
		}
		if p.Color != model.White && p.Color != model.Black {
			return nil, fmt.Errorf("decode board: piece %d: unknown color %q", i, p.Color)
		}
		pos := model.Position{Rank: p.Rank, File: p.File}
		if !p.Captured {
			key := pos.String()
			if other, ok := occupied[key]; ok {
				return nil, fmt.Errorf("decode board: pieces %d and %d both on %s", other, i, key)
			}
			occupied[key] = i
		}
		// a square on a pawn rank that holds a piece has already been touched
		switch {
		case p.Rank.Cmp(big.NewInt(model.BlackPawnRank)) == 0:
			b.MarkMaterialized(model.Black, p.File)
		case p.Rank.Cmp(big.NewInt(model.WhitePawnRank)) == 0:
			b.MarkMaterialized(model.White, p.File)
		}
		b.PlacePiece(p.Type, p.Color, pos)
	}
	return b, nil
}
