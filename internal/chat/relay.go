package chat

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Sender delivers one outbound event to a single connection. Delivery is
// fire-and-forget: no acknowledgement, no error, at most once.
type Sender interface {
	Send(event string, data any)
}

// DefaultWelcomeMessage seeds new conversations when no custom text is
// configured.
const DefaultWelcomeMessage = "Hello! Thanks for reaching out. I'll get back to you as soon as possible. How can I help you today?"

// Options configures a Relay.
type Options struct {
	// WelcomeMessage is the text of the seeded admin message every new
	// conversation starts with.
	WelcomeMessage string
	// InactivityPolicy selects the disconnect lifecycle behavior.
	InactivityPolicy InactivityPolicy
	// GracePeriod is the idle window for PolicyDeferred.
	GracePeriod time.Duration
	// AdminToken, when non-empty, must match the token carried by an
	// admin-join event; mismatches are dropped silently. Empty preserves
	// the unauthenticated claim behavior.
	AdminToken string
}

// Relay is the event-handling core: it owns the conversation store and the
// admin registry, dispatches inbound events, and fans results out to the
// right connections. One mutex serializes every event end to end, so each
// handler runs to completion before the next starts.
type Relay struct {
	mu       sync.Mutex
	opts     Options
	store    *Store
	registry *Registry
	conns    map[string]Sender

	lastMsgID int64

	// Overridable in tests.
	now      func() time.Time
	schedule func(d time.Duration, f func())
}

func NewRelay(opts Options) *Relay {
	if opts.WelcomeMessage == "" {
		opts.WelcomeMessage = DefaultWelcomeMessage
	}
	if opts.InactivityPolicy == "" {
		opts.InactivityPolicy = PolicyDeferred
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = 5 * time.Minute
	}
	return &Relay{
		opts:     opts,
		store:    NewStore(),
		registry: NewRegistry(),
		conns:    make(map[string]Sender),
		now:      time.Now,
		schedule: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// Connect registers a live connection under its server-assigned id.
func (r *Relay) Connect(connID string, s Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[connID] = s
	log.Printf("user connected: %s", connID)
}

// Disconnect removes the connection and applies the lifecycle rules: the
// admin slot is cleared when the departing connection still holds it, and a
// client's conversation goes through the configured inactivity policy.
func (r *Relay) Disconnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, connID)
	log.Printf("user disconnected: %s", connID)

	if r.registry.ClearAdmin(connID) {
		log.Printf("admin disconnected: %s", connID)
		return
	}
	if _, ok := r.store.Get(connID); !ok {
		return
	}
	switch r.opts.InactivityPolicy {
	case PolicyImmediate:
		r.markInactiveLocked(connID)
	case PolicyDeferred:
		r.schedule(r.opts.GracePeriod, func() { r.expireIfIdle(connID) })
	case PolicyNone:
	}
}

// Dispatch decodes one inbound envelope and routes it to its handler.
// Undecodable payloads and unknown events are logged and dropped; nothing
// here can take the process down.
func (r *Relay) Dispatch(connID string, env Envelope) {
	switch env.Event {
	case EventAdminJoin:
		var d AdminJoinData
		if len(env.Data) > 0 && json.Unmarshal(env.Data, &d) != nil {
			log.Printf("bad admin-join payload from %s", connID)
			return
		}
		r.AdminJoin(connID, d)
	case EventClientJoin:
		var d ClientJoinData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			log.Printf("bad client-join payload from %s: %v", connID, err)
			return
		}
		r.ClientJoin(connID, d)
	case EventSendMessage:
		var d SendMessageData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			log.Printf("bad send-message payload from %s: %v", connID, err)
			return
		}
		r.SendMessage(connID, d)
	case EventTypingStart:
		var d TypingData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return
		}
		r.Typing(connID, d, true)
	case EventTypingStop:
		var d TypingData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return
		}
		r.Typing(connID, d, false)
	default:
		log.Printf("unknown event %q from %s", env.Event, connID)
	}
}

// AdminJoin makes connID the admin and replies with the full conversation
// snapshot. Every later update is a delta; this is the only full-state
// transfer.
func (r *Relay) AdminJoin(connID string, d AdminJoinData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.opts.AdminToken != "" && d.Token != r.opts.AdminToken {
		log.Printf("admin-join with bad token from %s", connID)
		return
	}
	r.registry.SetAdmin(connID)
	log.Printf("admin connected: %s", connID)
	r.send(connID, EventConversationsList, r.store.All())
}

// ClientJoin opens a conversation for the client, seeds the welcome
// message, and tells the current admin about the new conversation. The
// welcome is part of the record the admin receives, so only the client gets
// it as a separate message event.
func (r *Relay) ClientJoin(connID string, d ClientJoinData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv := r.store.Create(connID, d.Name, d.Email, r.now())

	welcome := r.newMessage(r.opts.WelcomeMessage, SenderAdmin)
	r.store.Append(connID, welcome)

	if adminID, ok := r.registry.CurrentAdmin(); ok {
		r.send(adminID, EventNewConversation, conv.snapshot())
	}
	r.send(connID, EventMessage, MessageDelivery{Message: welcome})
}

// SendMessage appends the message to the resolved conversation and fans it
// out. An admin addresses any conversation through the payload's
// conversationId; a client can only ever post to its own. Unresolvable
// targets and empty text are dropped without a reply.
func (r *Relay) SendMessage(connID string, d SendMessageData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.Text == "" {
		return
	}

	targetID := connID
	if d.Sender == SenderAdmin {
		targetID = d.ConversationID
	}
	conv, ok := r.store.Get(targetID)
	if !ok {
		return
	}

	msg := r.newMessage(d.Text, d.Sender)
	r.store.Append(targetID, msg)

	if d.Sender == SenderAdmin {
		r.send(targetID, EventMessage, MessageDelivery{Message: msg})
		r.send(connID, EventMessage, MessageDelivery{Message: msg, ConversationID: targetID})
		return
	}
	if adminID, ok := r.registry.CurrentAdmin(); ok {
		r.send(adminID, EventMessage, MessageDelivery{
			Message:        msg,
			ConversationID: targetID,
			ClientName:     conv.ClientName,
		})
	}
	r.send(connID, EventMessage, MessageDelivery{Message: msg})
}

// Typing relays a typing indicator; nothing is stored and repeated starts
// are relayed as-is, never coalesced.
func (r *Relay) Typing(connID string, d TypingData, isTyping bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.Sender == SenderClient {
		if adminID, ok := r.registry.CurrentAdmin(); ok {
			r.send(adminID, EventUserTyping, TypingNotice{ConversationID: connID, IsTyping: isTyping})
		}
		return
	}
	r.send(d.ConversationID, EventUserTyping, TypingNotice{IsTyping: isTyping})
}

// expireIfIdle is the deferred-policy check, run when the grace timer
// fires. There is no timer cancellation; state is re-checked here instead,
// so a conversation that saw traffic during the grace window stays active.
func (r *Relay) expireIfIdle(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.store.Get(connID)
	if !ok {
		return
	}
	cutoff := r.now().Add(-r.opts.GracePeriod)
	for _, m := range conv.Messages {
		if m.Timestamp.After(cutoff) {
			return
		}
	}
	r.markInactiveLocked(connID)
}

func (r *Relay) markInactiveLocked(connID string) {
	if !r.store.SetStatus(connID, StatusInactive) {
		return
	}
	if adminID, ok := r.registry.CurrentAdmin(); ok {
		if conv, ok := r.store.Get(connID); ok {
			r.send(adminID, EventConversationUpdated, conv.snapshot())
		}
	}
}

// newMessage stamps a fresh message. Ids derive from the wall clock in
// milliseconds and are bumped to stay strictly increasing when two messages
// land in the same millisecond.
func (r *Relay) newMessage(text, sender string) Message {
	now := r.now()
	id := now.UnixMilli()
	if id <= r.lastMsgID {
		id = r.lastMsgID + 1
	}
	r.lastMsgID = id
	return Message{ID: id, Text: text, Sender: sender, Timestamp: now}
}

// send delivers to one connection if it is still registered; a missing
// connection is a no-op.
func (r *Relay) send(connID, event string, data any) {
	if s, ok := r.conns[connID]; ok {
		s.Send(event, data)
	}
}
