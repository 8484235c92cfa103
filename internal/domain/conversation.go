package domain

import (
	"fmt"
	"strings"
	"sync"
)

// NoMessagesMarker is returned when a role filter matches nothing.
const NoMessagesMarker = "No messages found."

// Message is a single conversation turn. Role values are caller-supplied
// strings, not a closed enum.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is an append-only ordered message history.
//
// The serving boundary shares one conversation across requests, so all
// access goes through an internal mutex. There is no automatic size bound;
// unbounded growth is a known gap.
type Conversation struct {
	mu      sync.Mutex
	history []Message
}

// NewConversation creates a conversation, optionally seeded with an
// initial history.
func NewConversation(initial ...Message) *Conversation {
	c := &Conversation{}
	c.history = append(c.history, initial...)
	return c
}

// AddMessage appends a message to the history.
func (c *Conversation) AddMessage(role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, Message{Role: role, Content: content})
}

// History returns a copy of the full message sequence in insertion order.
func (c *Conversation) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.history))
	copy(out, c.history)
	return out
}

// FormattedHistory renders the history as newline-joined "role: content"
// lines.
func (c *Conversation) FormattedHistory() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := make([]string, 0, len(c.history))
	for _, msg := range c.history {
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
	}
	return strings.Join(lines, "\n")
}

// LastNMessagesByRole filters the history by role and renders the last n
// matches as "role: content" lines. Returns NoMessagesMarker when nothing
// matches.
func (c *Conversation) LastNMessagesByRole(role string, n int) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var filtered []Message
	for _, msg := range c.history {
		if msg.Role == role {
			filtered = append(filtered, msg)
		}
	}
	if len(filtered) == 0 || n <= 0 {
		return NoMessagesMarker
	}
	if n < len(filtered) {
		filtered = filtered[len(filtered)-n:]
	}

	lines := make([]string, 0, len(filtered))
	for _, msg := range filtered {
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
	}
	return strings.Join(lines, "\n")
}

// Clear drops the full history.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = nil
}

// Len returns the number of messages in the history.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.history)
}
