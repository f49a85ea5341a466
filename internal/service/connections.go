package service

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// sendBuffer is how many board pushes a slow subscriber may fall behind
// before it is disconnected.
const sendBuffer = 16

// Subscriber is one websocket connection waiting for board pushes. Its writer
// drains Send; the channel is closed when the subscriber is unregistered.
type Subscriber struct {
	ID       string
	ClientID string
	Send     chan []byte
}

func NewSubscriber(clientID string) *Subscriber {
	return &Subscriber{
		ID:       uuid.NewString(),
		ClientID: clientID,
		Send:     make(chan []byte, sendBuffer),
	}
}

// GameConnections is the set of subscribers to the shared board.
type GameConnections struct {
	mu          sync.RWMutex
	connections map[string]*Subscriber // subscriber ID -> subscriber
	log         zerolog.Logger
}

func NewGameConnections(log zerolog.Logger) *GameConnections {
	return &GameConnections{
		connections: make(map[string]*Subscriber),
		log:         log,
	}
}

func (gc *GameConnections) Register(sub *Subscriber) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.connections[sub.ID] = sub
	gc.log.Info().Str("subscriber", sub.ID).Str("client", sub.ClientID).Msg("subscribed")
}

// Unregister removes sub and closes its Send channel. Safe to call twice.
func (gc *GameConnections) Unregister(sub *Subscriber) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if current, ok := gc.connections[sub.ID]; ok && current == sub {
		delete(gc.connections, sub.ID)
		close(sub.Send)
		gc.log.Info().Str("subscriber", sub.ID).Str("client", sub.ClientID).Msg("unsubscribed")
	}
}

func (gc *GameConnections) Len() int {
	gc.mu.RLock()
	defer gc.mu.RUnlock()
	return len(gc.connections)
}

// Broadcast hands msg to every subscriber without blocking. A subscriber whose
// buffer is full is unregistered so its connection closes instead of going
// stale; the client reconnects and gets the current board.
func (gc *GameConnections) Broadcast(msg []byte) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	for id, sub := range gc.connections {
		select {
		case sub.Send <- msg:
		default:
			delete(gc.connections, id)
			close(sub.Send)
			gc.log.Warn().Str("subscriber", id).Str("client", sub.ClientID).Msg("subscriber too slow, disconnected")
		}
	}
}
