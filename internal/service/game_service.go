package service

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/benbeisheim/infinichess-backend/internal/codec"
	"github.com/benbeisheim/infinichess-backend/internal/model"
	"github.com/rs/zerolog"
)

// GameService owns the one shared board. Every call takes the same exclusive
// lock because even lookups can create pawns. Mutations close the current
// changed channel before the lock is released, waking every waiter.
type GameService struct {
	mu          sync.Mutex
	board       *model.Board
	rules       model.Rules
	changed     chan struct{}
	connections *GameConnections
	log         zerolog.Logger
}

func NewGameService(board *model.Board, rules model.Rules, log zerolog.Logger) *GameService {
	return &GameService{
		board:       board,
		rules:       rules,
		changed:     make(chan struct{}),
		connections: NewGameConnections(log),
		log:         log,
	}
}

// notify must be called with mu held.
func (gs *GameService) notify() {
	close(gs.changed)
	gs.changed = make(chan struct{})

	if gs.connections.Len() == 0 {
		return
	}
	snapshot, err := codec.Encode(gs.board)
	if err != nil {
		gs.log.Error().Err(err).Msg("failed to encode board for subscribers")
		return
	}
	gs.connections.Broadcast(snapshot)
}

// notifyIfGrown notifies when lookups since before created pawns. Callers
// defer it after taking the lock so it runs before the unlock.
func (gs *GameService) notifyIfGrown(before int) {
	if gs.board.Len() != before {
		gs.notify()
	}
}

func (gs *GameService) Turn() *big.Int {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.board.Turn()
}

func (gs *GameService) Snapshot() ([]byte, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return codec.Encode(gs.board)
}

// WaitForVersion blocks until the turn reaches version and returns the board
// at that point. It returns ctx.Err() if ctx ends first.
func (gs *GameService) WaitForVersion(ctx context.Context, version *big.Int) ([]byte, error) {
	gs.mu.Lock()
	for gs.board.Turn().Cmp(version) < 0 {
		changed := gs.changed
		gs.mu.Unlock()
		select {
		case <-changed:
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for version %s: %w", version, ctx.Err())
		}
		gs.mu.Lock()
	}
	defer gs.mu.Unlock()
	return codec.Encode(gs.board)
}

func (gs *GameService) IsMoveLegal(from, to model.Position) bool {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	defer gs.notifyIfGrown(gs.board.Len())
	return gs.board.IsMoveLegal(gs.rules, from, to)
}

func (gs *GameService) LegalMoves(from model.Position, w model.Window) []model.Position {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	defer gs.notifyIfGrown(gs.board.Len())
	return gs.board.LegalMovesInWindow(gs.rules, from, w)
}

// Move applies the move if it is legal and reports whether it did. An illegal
// move leaves the board untouched apart from pawns its lookups created.
func (gs *GameService) Move(from, to model.Position) (bool, *big.Int) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	applied := false
	if gs.board.IsMoveLegal(gs.rules, from, to) && gs.board.ApplyMove(from, to) {
		gs.board.AdvanceTurn()
		applied = true
	}
	gs.log.Debug().
		Stringer("from", from).
		Stringer("to", to).
		Bool("applied", applied).
		Stringer("turn", gs.board.Turn()).
		Msg("move")
	gs.notify()
	return applied, gs.board.Turn()
}

// Promote changes the type of the piece on pos. The turn does not advance, so
// a waiter on the next version is woken but keeps waiting.
func (gs *GameService) Promote(pos model.Position, t model.PieceType) (model.PieceID, bool) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	id, ok := gs.board.Promote(pos, t)
	gs.log.Debug().Stringer("at", pos).Str("piece", string(t)).Bool("promoted", ok).Msg("promote")
	gs.notify()
	return id, ok
}

func (gs *GameService) PieceAt(pos model.Position) (model.Piece, bool) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	defer gs.notifyIfGrown(gs.board.Len())

	id, ok := gs.board.PieceAt(pos)
	if !ok {
		return model.Piece{}, false
	}
	return gs.board.Piece(id), true
}

// Piece looks a piece up by identity, captured pieces included.
func (gs *GameService) Piece(id model.PieceID) (model.Piece, bool) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if id < 0 || int(id) >= gs.board.Len() {
		return model.Piece{}, false
	}
	return gs.board.Piece(id), true
}

func (gs *GameService) Pieces() []model.Piece {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.board.Pieces()
}

func (gs *GameService) History() []model.Ply {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.board.History()
}

// MaterializePawns touches both pawn ranks on files [file, file+width) so the
// default pawns there exist.
func (gs *GameService) MaterializePawns(file, width *big.Int) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	defer gs.notifyIfGrown(gs.board.Len())

	end := new(big.Int).Add(file, width)
	one := big.NewInt(1)
	for f := new(big.Int).Set(file); f.Cmp(end) < 0; f.Add(f, one) {
		gs.board.PieceAt(model.Position{Rank: big.NewInt(model.BlackPawnRank), File: f})
		gs.board.PieceAt(model.Position{Rank: big.NewInt(model.WhitePawnRank), File: f})
	}
}

// Subscribe registers a connection for board pushes and returns the current
// board, both under the lock so the subscriber misses no change.
func (gs *GameService) Subscribe(sub *Subscriber) ([]byte, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	snapshot, err := codec.Encode(gs.board)
	if err != nil {
		return nil, err
	}
	gs.connections.Register(sub)
	return snapshot, nil
}

func (gs *GameService) Unsubscribe(sub *Subscriber) {
	gs.connections.Unregister(sub)
}
