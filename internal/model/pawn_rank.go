package model

import (
	"math/big"
	"sort"
)

// PawnRank records the files on which a color's default pawn has already been
// created. Files are unbounded and may be negative, so it is keyed by the
// decimal form of the file.
type PawnRank struct {
	files map[string]*big.Int
}

func NewPawnRank() *PawnRank {
	return &PawnRank{files: make(map[string]*big.Int)}
}

func (r *PawnRank) HasMaterialized(file *big.Int) bool {
	_, ok := r.files[file.String()]
	return ok
}

// MarkMaterialized is idempotent.
func (r *PawnRank) MarkMaterialized(file *big.Int) {
	key := file.String()
	if _, ok := r.files[key]; ok {
		return
	}
	r.files[key] = new(big.Int).Set(file)
}

// Files returns the marked files in ascending order.
func (r *PawnRank) Files() []*big.Int {
	out := make([]*big.Int, 0, len(r.files))
	for _, f := range r.files {
		out = append(out, new(big.Int).Set(f))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}

func (r *PawnRank) Len() int {
	return len(r.files)
}
