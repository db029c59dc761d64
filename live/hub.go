// Package live pushes score and state updates to dashboard clients over
// websockets. Clients join the room of the cup they are watching; every
// score entry and phase transition is broadcast to that room.
package live

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Message types sent to dashboard clients.
const (
	TypeMatchUpdated     = "MATCH_UPDATED"
	TypeStandingsUpdated = "STANDINGS_UPDATED"
	TypeCupStateChanged  = "CUP_STATE_CHANGED"
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// CupRoom names the broadcast room for one cup.
func CupRoom(cupID int) string {
	return fmt.Sprintf("cup-%d", cupID)
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.Room]; ok {
				if _, exists := clients[client]; exists {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.Room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRoom delivers a message to every client in the room. Clients
// whose send buffer is full are skipped rather than blocking the caller.
func (h *Hub) BroadcastToRoom(room string, message Message) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("live: failed to marshal message for room %s: %v", room, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		client.trySend(messageBytes)
	}
}
