package ws

import (
	"encoding/json"

	"github.com/benbeisheim/infinichess-backend/internal/model"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	MessageTypeMove    MessageType = "move"
	MessageTypePromote MessageType = "promote"
	MessageTypeBoard   MessageType = "board"
	MessageTypeResult  MessageType = "result"
	MessageTypeError   MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type MovePayload struct {
	From model.Position `json:"from"`
	To   model.Position `json:"to"`
}

type PromotePayload struct {
	At    model.Position  `json:"at"`
	Piece model.PieceType `json:"piece"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// NewMessage wraps an already encoded payload.
func NewMessage(t MessageType, payload []byte) Message {
	return Message{Type: t, Payload: json.RawMessage(payload)}
}
