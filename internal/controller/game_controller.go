package controller

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/benbeisheim/infinichess-backend/internal/codec"
	"github.com/benbeisheim/infinichess-backend/internal/model"
	"github.com/benbeisheim/infinichess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// ErrBadRequest is the single error every malformed path parameter maps to.
var ErrBadRequest = fiber.NewError(fiber.StatusBadRequest, "malformed request parameter")

var errWindowTooLarge = fiber.NewError(fiber.StatusBadRequest, "window too large")

type Options struct {
	LongPollTimeout time.Duration
	MaxWindow       int64
}

type GameController struct {
	gameService *service.GameService
	longPoll    time.Duration
	maxWindow   *big.Int
	log         zerolog.Logger
}

func NewGameController(gameService *service.GameService, opts Options, log zerolog.Logger) *GameController {
	return &GameController{
		gameService: gameService,
		longPoll:    opts.LongPollTimeout,
		maxWindow:   big.NewInt(opts.MaxWindow),
		log:         log,
	}
}

// Register mounts the board routes on r.
func (gc *GameController) Register(r fiber.Router) {
	r.Get("/board", gc.GetBoard)
	r.Get("/board/:version", gc.GetBoardVersion)
	r.Get("/legal/:rank/:file/:wrank/:wfile/:size", gc.GetLegalMoves)
	r.Get("/move/:rank/:file/:torank/:tofile", gc.MakeMove)
	r.Get("/promote/:rank/:file/:piece", gc.Promote)
	r.Get("/square/:rank/:file", gc.GetSquare)
	r.Get("/piece/:id", gc.GetPiece)
	r.Get("/pieces", gc.GetPieces)
	r.Get("/history", gc.GetHistory)
	r.Get("/pawns/:file/:width", gc.MaterializePawns)
}

// ErrorHandler renders every error as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func coordinate(c *fiber.Ctx, name string) (*big.Int, error) {
	n, err := model.ParseCoordinate(c.Params(name))
	if err != nil {
		return nil, ErrBadRequest
	}
	return n, nil
}

func position(c *fiber.Ctx, rank, file string) (model.Position, error) {
	pos, err := model.ParsePosition(c.Params(rank), c.Params(file))
	if err != nil {
		return model.Position{}, ErrBadRequest
	}
	return pos, nil
}

func sendBoard(c *fiber.Ctx, data []byte) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(data)
}

func (gc *GameController) GetBoard(c *fiber.Ctx) error {
	data, err := gc.gameService.Snapshot()
	if err != nil {
		return err
	}
	return sendBoard(c, data)
}

// GetBoardVersion holds the request until the turn reaches :version. When the
// long-poll timeout passes first it answers with the current board and the
// client polls again.
func (gc *GameController) GetBoardVersion(c *fiber.Ctx) error {
	version, err := coordinate(c, "version")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), gc.longPoll)
	defer cancel()

	data, err := gc.gameService.WaitForVersion(ctx, version)
	if errors.Is(err, context.DeadlineExceeded) {
		gc.log.Debug().Stringer("version", version).Msg("long poll timed out")
		data, err = gc.gameService.Snapshot()
	}
	if err != nil {
		return err
	}
	return sendBoard(c, data)
}

func (gc *GameController) GetLegalMoves(c *fiber.Ctx) error {
	from, err := position(c, "rank", "file")
	if err != nil {
		return err
	}
	corner, err := position(c, "wrank", "wfile")
	if err != nil {
		return err
	}
	size, err := coordinate(c, "size")
	if err != nil {
		return err
	}
	if size.Cmp(gc.maxWindow) > 0 {
		return errWindowTooLarge
	}

	moves := gc.gameService.LegalMoves(from, model.Window{Rank: corner.Rank, File: corner.File, Size: size})
	return c.JSON(moves)
}

// MakeMove applies the move when it is legal. An illegal move is not an
// error; the response just reports applied=false.
func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	from, err := position(c, "rank", "file")
	if err != nil {
		return err
	}
	to, err := position(c, "torank", "tofile")
	if err != nil {
		return err
	}

	applied, turn := gc.gameService.Move(from, to)
	return c.JSON(fiber.Map{
		"applied": applied,
		"turn":    turn,
	})
}

func (gc *GameController) Promote(c *fiber.Ctx) error {
	at, err := position(c, "rank", "file")
	if err != nil {
		return err
	}

	id, ok := gc.gameService.Promote(at, model.PieceType(c.Params("piece")))
	if !ok {
		return c.JSON(fiber.Map{"promoted": false})
	}
	return c.JSON(fiber.Map{
		"promoted": true,
		"id":       id,
	})
}

// GetSquare answers null for an empty square.
func (gc *GameController) GetSquare(c *fiber.Ctx) error {
	at, err := position(c, "rank", "file")
	if err != nil {
		return err
	}

	piece, ok := gc.gameService.PieceAt(at)
	if !ok {
		return c.JSON(nil)
	}
	return c.JSON(codec.NewPieceDoc(piece))
}

func (gc *GameController) GetPiece(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return ErrBadRequest
	}

	piece, ok := gc.gameService.Piece(model.PieceID(id))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "piece not found")
	}
	return c.JSON(codec.NewPieceDoc(piece))
}

func (gc *GameController) GetPieces(c *fiber.Ctx) error {
	pieces := gc.gameService.Pieces()
	docs := make([]codec.PieceDoc, 0, len(pieces))
	for _, p := range pieces {
		docs = append(docs, codec.NewPieceDoc(p))
	}
	return c.JSON(docs)
}

func (gc *GameController) GetHistory(c *fiber.Ctx) error {
	return c.JSON(gc.gameService.History())
}

func (gc *GameController) MaterializePawns(c *fiber.Ctx) error {
	file, err := coordinate(c, "file")
	if err != nil {
		return err
	}
	width, err := coordinate(c, "width")
	if err != nil {
		return err
	}
	if width.Cmp(gc.maxWindow) > 0 {
		return errWindowTooLarge
	}

	gc.gameService.MaterializePawns(file, width)
	return gc.GetBoard(c)
}
