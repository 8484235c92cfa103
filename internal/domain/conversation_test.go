package domain

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversation_FormattedHistory_PreservesInsertionOrder(t *testing.T) {
	conv := NewConversation()
	conv.AddMessage("User", "hello")
	conv.AddMessage("Assistant", "hi there")
	conv.AddMessage("User", "what is pgvector?")

	expected := "User: hello\nAssistant: hi there\nUser: what is pgvector?"
	assert.Equal(t, expected, conv.FormattedHistory())
}

func TestConversation_History_ReturnsCopy(t *testing.T) {
	conv := NewConversation()
	conv.AddMessage("User", "hello")

	history := conv.History()
	history[0].Content = "mutated"

	assert.Equal(t, "hello", conv.History()[0].Content)
}

func TestConversation_LastNMessagesByRole(t *testing.T) {
	conv := NewConversation()
	conv.AddMessage("User", "first")
	conv.AddMessage("Assistant", "answer one")
	conv.AddMessage("User", "second")
	conv.AddMessage("Assistant", "answer two")
	conv.AddMessage("User", "third")

	assert.Equal(t, "User: third", conv.LastNMessagesByRole("User", 1))
	assert.Equal(t, "User: second\nUser: third", conv.LastNMessagesByRole("User", 2))
	assert.Equal(t, "User: first\nUser: second\nUser: third", conv.LastNMessagesByRole("User", 10))
}

func TestConversation_LastNMessagesByRole_NoMatches(t *testing.T) {
	conv := NewConversation()
	conv.AddMessage("User", "hello")

	assert.Equal(t, NoMessagesMarker, conv.LastNMessagesByRole("System", 3))
}

func TestConversation_Clear(t *testing.T) {
	conv := NewConversation(Message{Role: "User", Content: "seed"})
	assert.Equal(t, 1, conv.Len())

	conv.Clear()

	assert.Equal(t, 0, conv.Len())
	assert.Equal(t, "", conv.FormattedHistory())
}

func TestConversation_ConcurrentAppend(t *testing.T) {
	conv := NewConversation()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conv.AddMessage("User", fmt.Sprintf("message %d", i))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, conv.Len())
}
