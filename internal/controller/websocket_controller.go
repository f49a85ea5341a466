package controller

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/benbeisheim/infinichess-backend/internal/middleware"
	"github.com/benbeisheim/infinichess-backend/internal/service"
	"github.com/benbeisheim/infinichess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
)

const replyBuffer = 8

var (
	errMissingSquare = errors.New("payload is missing a square")
	errMissingPiece  = errors.New("payload is missing a piece type")
)

type WebSocketController struct {
	gameService *service.GameService
	log         zerolog.Logger
}

func NewWebSocketController(gameService *service.GameService, log zerolog.Logger) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
		log:         log,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	clientID, _ := c.Locals(middleware.ClientIDKey).(string)
	log := wsc.log.With().Str("client", clientID).Logger()

	sub := service.NewSubscriber(clientID)
	snapshot, err := wsc.gameService.Subscribe(sub)
	if err != nil {
		log.Error().Err(err).Msg("failed to subscribe")
		c.Close()
		return
	}

	// only the writer goroutine touches the connection for writing
	replies := make(chan ws.Message, replyBuffer)
	done := make(chan struct{})
	go func() {
		defer close(done)
		wsc.writeLoop(c, sub, replies, snapshot, log)
	}()

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Msg("read error")
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Warn().Err(err).Msg("parse error")
			wsc.reply(replies, errorMessage(err), log)
			continue
		}

		reply, err := wsc.handleMessage(msg)
		if err != nil {
			log.Warn().Err(err).Str("type", string(msg.Type)).Msg("handle error")
			reply = errorMessage(err)
		}
		wsc.reply(replies, reply, log)
	}

	// Clean up when connection closes
	wsc.gameService.Unsubscribe(sub)
	<-done
}

func (wsc *WebSocketController) writeLoop(c *websocket.Conn, sub *service.Subscriber, replies <-chan ws.Message, snapshot []byte, log zerolog.Logger) {
	if err := c.WriteJSON(ws.NewMessage(ws.MessageTypeBoard, snapshot)); err != nil {
		log.Warn().Err(err).Msg("failed to send board")
		c.Close()
		return
	}
	for {
		var msg ws.Message
		select {
		case board, ok := <-sub.Send:
			if !ok {
				// unregistered, possibly for falling behind
				c.Close()
				return
			}
			msg = ws.NewMessage(ws.MessageTypeBoard, board)
		case msg = <-replies:
		}
		if err := c.WriteJSON(msg); err != nil {
			log.Warn().Err(err).Msg("failed to write message")
			c.Close()
			return
		}
	}
}

func (wsc *WebSocketController) reply(replies chan<- ws.Message, msg ws.Message, log zerolog.Logger) {
	select {
	case replies <- msg:
	default:
		log.Warn().Str("type", string(msg.Type)).Msg("reply dropped")
	}
}

// Handle different types of incoming messages
func (wsc *WebSocketController) handleMessage(msg ws.Message) (ws.Message, error) {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move ws.MovePayload
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return ws.Message{}, err
		}
		if !move.From.Valid() || !move.To.Valid() {
			return ws.Message{}, errMissingSquare
		}
		applied, turn := wsc.gameService.Move(move.From, move.To)
		return resultMessage(map[string]any{"applied": applied, "turn": turn})

	case ws.MessageTypePromote:
		var promote ws.PromotePayload
		if err := json.Unmarshal(msg.Payload, &promote); err != nil {
			return ws.Message{}, err
		}
		if !promote.At.Valid() {
			return ws.Message{}, errMissingSquare
		}
		if promote.Piece == "" {
			return ws.Message{}, errMissingPiece
		}
		id, ok := wsc.gameService.Promote(promote.At, promote.Piece)
		if !ok {
			return resultMessage(map[string]any{"promoted": false})
		}
		return resultMessage(map[string]any{"promoted": true, "id": id})

	default:
		return ws.Message{}, fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func resultMessage(v any) (ws.Message, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return ws.Message{}, err
	}
	return ws.NewMessage(ws.MessageTypeResult, payload), nil
}

func errorMessage(err error) ws.Message {
	payload, _ := json.Marshal(ws.ErrorPayload{Error: err.Error()})
	return ws.NewMessage(ws.MessageTypeError, payload)
}
