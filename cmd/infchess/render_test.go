package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/benbeisheim/infinichess-backend/internal/codec"
	"github.com/benbeisheim/infinichess-backend/internal/model"
)

func TestRenderStandardWindow(t *testing.T) {
	b := model.NewBoard()
	model.StandardSetup(b)

	var buf bytes.Buffer
	if err := render(&buf, b, model.NewWindow(0, 0, 8)); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 8 {
		t.Fatalf("got %d lines", len(lines))
	}
	want := map[int]string{
		0: "r n b q k b n r",
		1: "p p p p p p p p",
		3: ". . . . . . . .",
		6: "P P P P P P P P",
		7: "R N B Q K B N R",
	}
	for i, row := range want {
		if !strings.HasSuffix(lines[i], row) {
			t.Errorf("line %d = %q, want suffix %q", i, lines[i], row)
		}
	}
}

func TestRenderDecodedBoardKeepsCapturedPawnsGone(t *testing.T) {
	b := model.NewBoard()
	model.StandardSetup(b)
	b.ApplyMove(model.NewPosition(7, 1), model.NewPosition(1, 2))

	data, err := codec.Encode(b)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := codec.Decode(data)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := render(&buf, decoded, model.NewWindow(1, 0, 4)); err != nil {
		t.Fatal(err)
	}
	first := strings.SplitN(buf.String(), "\n", 2)[0]
	if !strings.HasSuffix(first, "p p N p") {
		t.Errorf("rank 1 = %q", first)
	}
}

func TestPieceLetterUnknownType(t *testing.T) {
	if got := pieceLetter(model.Piece{Type: "archbishop", Color: model.White}); got != "?" {
		t.Errorf("got %q", got)
	}
}
