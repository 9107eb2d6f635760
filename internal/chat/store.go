package chat

import (
	"log"
	"time"
)

// Store maps conversation ids to conversation records. It is the only
// authoritative state in the process and lives purely in memory; nothing
// survives a restart. Callers are expected to serialize access (the Relay
// holds one mutex around every event).
type Store struct {
	conversations map[string]*Conversation
	order         []string
}

func NewStore() *Store {
	return &Store{conversations: make(map[string]*Conversation)}
}

// Create registers a conversation for connID. A second create for the same
// id overwrites the record, matching the observed source behavior; the
// warning is the only trace of the dropped log.
func (s *Store) Create(connID, name, email string, now time.Time) *Conversation {
	if prev, ok := s.conversations[connID]; ok {
		log.Printf("conversation %s re-created, dropping %d prior messages", connID, len(prev.Messages))
	} else {
		s.order = append(s.order, connID)
	}
	conv := &Conversation{
		ID:          connID,
		ClientName:  name,
		ClientEmail: email,
		Messages:    []Message{},
		Status:      StatusActive,
		CreatedAt:   now,
	}
	s.conversations[connID] = conv
	return conv
}

func (s *Store) Get(connID string) (*Conversation, bool) {
	conv, ok := s.conversations[connID]
	return conv, ok
}

// Append adds msg to the conversation's log. If no conversation exists for
// connID the message is dropped and Append reports false; the caller treats
// that as a routine no-route outcome, not an error.
func (s *Store) Append(connID string, msg Message) bool {
	conv, ok := s.conversations[connID]
	if !ok {
		return false
	}
	conv.Messages = append(conv.Messages, msg)
	return true
}

func (s *Store) SetStatus(connID string, status Status) bool {
	conv, ok := s.conversations[connID]
	if !ok {
		return false
	}
	conv.Status = status
	return true
}

// All returns snapshots of every conversation in insertion order.
func (s *Store) All() []Conversation {
	out := make([]Conversation, 0, len(s.order))
	for _, id := range s.order {
		if conv, ok := s.conversations[id]; ok {
			out = append(out, conv.snapshot())
		}
	}
	return out
}

func (s *Store) Len() int {
	return len(s.conversations)
}
