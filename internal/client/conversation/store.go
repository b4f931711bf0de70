// Package conversation implements the client-side store of chat threads.
package conversation

import (
	"fmt"
	"time"

	"github.com/atinyakov/cyberchat/internal/models"
	"github.com/google/uuid"
)

const (
	// DefaultTitle is the title of a conversation without user messages.
	DefaultTitle = "New Conversation"
	// TitleLength is the number of characters of the first user message kept
	// as the conversation title.
	TitleLength = 50
)

// Store is an ordered, most-recent-first collection of conversations whose
// message logs only grow. It is not safe for concurrent use.
type Store struct {
	conversations []models.Conversation
	now           func() time.Time
	newID         func() string
}

// NewStore builds a store from previously persisted conversations, keeping
// their order.
func NewStore(conversations ...models.Conversation) *Store {
	s := &Store{
		conversations: make([]models.Conversation, 0, len(conversations)),
		now:           func() time.Time { return time.Now().UTC() },
		newID:         uuid.NewString,
	}
	for _, c := range conversations {
		s.conversations = append(s.conversations, copyConversation(c))
	}
	return s
}

// Create inserts an empty conversation at the front and returns its id.
func (s *Store) Create() string {
	now := s.now()
	c := models.Conversation{
		ID:        s.newID(),
		Title:     DefaultTitle,
		Messages:  []models.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.conversations = append([]models.Conversation{c}, s.conversations...)
	return c.ID
}

// AppendMessage adds a message to the conversation id. The first message, when
// written by the user, also becomes the title.
func (s *Store) AppendMessage(id string, role models.Role, content string) (models.Message, error) {
	i := s.index(id)
	if i < 0 {
		return models.Message{}, fmt.Errorf("%w: conversation %s", models.ErrNotFound, id)
	}
	c := &s.conversations[i]

	now := s.now()
	if now.Before(c.UpdatedAt) {
		now = c.UpdatedAt
	}
	msg := models.Message{
		ID:        s.newID(),
		Role:      role,
		Content:   content,
		Timestamp: now,
	}
	if len(c.Messages) == 0 && role == models.RoleUser {
		c.Title = Title(content)
	}
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = now
	return msg, nil
}

// Delete removes the conversation id. Absent ids are ignored.
func (s *Store) Delete(id string) {
	if i := s.index(id); i >= 0 {
		s.conversations = append(s.conversations[:i], s.conversations[i+1:]...)
	}
}

// Get returns a copy of the conversation id, or nil.
func (s *Store) Get(id string) *models.Conversation {
	if i := s.index(id); i >= 0 {
		c := copyConversation(s.conversations[i])
		return &c
	}
	return nil
}

// List returns a copy of all conversations, most recent first.
func (s *Store) List() []models.Conversation {
	out := make([]models.Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		out = append(out, copyConversation(c))
	}
	return out
}

// Transcript returns the role/content/timestamp view of conversation id that
// is sent to the completion endpoint.
func (s *Store) Transcript(id string) ([]models.TranscriptMessage, error) {
	i := s.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: conversation %s", models.ErrNotFound, id)
	}
	msgs := s.conversations[i].Messages
	out := make([]models.TranscriptMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, models.TranscriptMessage{
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.Timestamp.Format(time.RFC3339Nano),
		})
	}
	return out, nil
}

// Len returns the number of conversations.
func (s *Store) Len() int { return len(s.conversations) }

// Clone returns an independent deep copy of the store.
func (s *Store) Clone() *Store {
	c := NewStore(s.conversations...)
	c.now = s.now
	c.newID = s.newID
	return c
}

func (s *Store) index(id string) int {
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			return i
		}
	}
	return -1
}

// Title truncates content to TitleLength characters.
func Title(content string) string {
	r := []rune(content)
	if len(r) <= TitleLength {
		return content
	}
	return string(r[:TitleLength])
}

func copyConversation(c models.Conversation) models.Conversation {
	if c.Messages != nil {
		c.Messages = append(make([]models.Message, 0, len(c.Messages)), c.Messages...)
	}
	return c
}
