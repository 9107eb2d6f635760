package chat

import (
	"fmt"
	"time"
)

// Status is a conversation's lifecycle state. A conversation starts active
// and may transition to inactive after its client disconnects; it never
// reverts automatically.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// InactivityPolicy selects what happens to a conversation when its client
// disconnects.
type InactivityPolicy string

const (
	// PolicyImmediate marks the conversation inactive at once.
	PolicyImmediate InactivityPolicy = "immediate"
	// PolicyDeferred schedules a check after a grace period and marks the
	// conversation inactive only if it stayed idle the whole time.
	PolicyDeferred InactivityPolicy = "deferred"
	// PolicyNone leaves the status untouched.
	PolicyNone InactivityPolicy = "none"
)

func ParseInactivityPolicy(s string) (InactivityPolicy, error) {
	switch InactivityPolicy(s) {
	case PolicyImmediate, PolicyDeferred, PolicyNone:
		return InactivityPolicy(s), nil
	}
	return "", fmt.Errorf("unknown inactivity policy %q", s)
}

// Message is one entry in a conversation's log. Messages are append-only:
// never mutated or removed once stored.
type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the record for one client session. Its id is the
// originating client's connection id, so a reconnecting client starts a
// fresh conversation.
type Conversation struct {
	ID          string    `json:"id"`
	ClientName  string    `json:"clientName"`
	ClientEmail string    `json:"clientEmail"`
	Messages    []Message `json:"messages"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// snapshot returns a copy safe to hand to another party after the relay
// lock is released; the message slice is copied, not shared.
func (c *Conversation) snapshot() Conversation {
	out := *c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}
