package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
)

// ErrInvalidCoordinate is returned for any rank or file that is not a base-10 integer.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Position is a square on the unbounded board. Rank and File are never mutated
// in place; every operation producing a new square allocates new values.
type Position struct {
	Rank *big.Int
	File *big.Int
}

func NewPosition(rank, file int64) Position {
	return Position{Rank: big.NewInt(rank), File: big.NewInt(file)}
}

// ParseCoordinate parses a single rank or file value.
func ParseCoordinate(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
	}
	return n, nil
}

func ParsePosition(rank, file string) (Position, error) {
	r, err := ParseCoordinate(rank)
	if err != nil {
		return Position{}, err
	}
	f, err := ParseCoordinate(file)
	if err != nil {
		return Position{}, err
	}
	return Position{Rank: r, File: f}, nil
}

// Valid reports whether both coordinates are set.
func (p Position) Valid() bool {
	return p.Rank != nil && p.File != nil
}

func (p Position) Clone() Position {
	return Position{Rank: new(big.Int).Set(p.Rank), File: new(big.Int).Set(p.File)}
}

func (p Position) Equal(o Position) bool {
	return p.Rank.Cmp(o.Rank) == 0 && p.File.Cmp(o.File) == 0
}

// Compare orders squares by rank, then by file.
func (p Position) Compare(o Position) int {
	if c := p.Rank.Cmp(o.Rank); c != 0 {
		return c
	}
	return p.File.Cmp(o.File)
}

// Offset returns the square dr ranks and df files away.
func (p Position) Offset(dr, df int64) Position {
	return Position{
		Rank: new(big.Int).Add(p.Rank, big.NewInt(dr)),
		File: new(big.Int).Add(p.File, big.NewInt(df)),
	}
}

func (p Position) String() string {
	return fmt.Sprintf("[%s, %s]", p.Rank, p.File)
}

// MarshalJSON encodes the square as a two element array of JSON numbers.
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]*big.Int{p.Rank, p.File})
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var pair [2]*big.Int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCoordinate, err)
	}
	if pair[0] == nil || pair[1] == nil {
		return ErrInvalidCoordinate
	}
	p.Rank, p.File = pair[0], pair[1]
	return nil
}
