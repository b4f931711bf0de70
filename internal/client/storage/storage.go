// Package storage persists the client state in named slots, mirroring the
// browser local-storage layout of the chat application.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atinyakov/cyberchat/internal/models"
)

// Slot names of the persisted layout.
const (
	SlotAPIKeys            = "apiKeys"
	SlotConversations      = "conversations"
	SlotActiveConversation = "activeConversation"
	SlotSelectedModel      = "selectedModel"
	SlotDarkMode           = "darkMode"
)

// Slots lists every slot in the order they are written.
var Slots = []string{
	SlotAPIKeys,
	SlotConversations,
	SlotActiveConversation,
	SlotSelectedModel,
	SlotDarkMode,
}

// ErrUnknownKind is returned by Open for an unsupported backend.
var ErrUnknownKind = errors.New("unknown storage kind")

// Snapshot is the full persisted client state. Nil pointers mean the slot is
// absent.
type Snapshot struct {
	APIKeys            []models.Credential
	Conversations      []models.Conversation
	ActiveConversation *string
	SelectedModel      *string
	DarkMode           *bool
}

// Store is a durable key/value store of slots.
type Store interface {
	// Load reads every slot. A store that was never written yields an empty
	// snapshot.
	Load() (*Snapshot, error)
	// Save replaces the stored slots with s in one write.
	Save(s *Snapshot) error
	// Close releases the underlying resources.
	Close() error
}

// Kind selects a Store implementation.
type Kind string

const (
	// KindJSON stores all slots in one JSON document.
	KindJSON Kind = "json"
	// KindBolt stores each slot as a key of a bbolt bucket.
	KindBolt Kind = "bolt"
)

// Open returns the store of the given kind at path.
func Open(kind Kind, path string) (Store, error) {
	switch kind {
	case KindJSON, "":
		return NewFileStore(path), nil
	case KindBolt:
		return OpenBolt(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// encodeSlots renders s as slot name -> JSON value. Absent slots are omitted.
func encodeSlots(s *Snapshot) (map[string]json.RawMessage, error) {
	if s == nil {
		s = &Snapshot{}
	}
	keys := s.APIKeys
	if keys == nil {
		keys = []models.Credential{}
	}
	convs := s.Conversations
	if convs == nil {
		convs = []models.Conversation{}
	}

	values := map[string]any{
		SlotAPIKeys:       keys,
		SlotConversations: convs,
	}
	if s.ActiveConversation != nil {
		values[SlotActiveConversation] = *s.ActiveConversation
	}
	if s.SelectedModel != nil {
		values[SlotSelectedModel] = *s.SelectedModel
	}
	if s.DarkMode != nil {
		values[SlotDarkMode] = *s.DarkMode
	}

	out := make(map[string]json.RawMessage, len(values))
	for slot, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", slot, err)
		}
		out[slot] = b
	}
	return out, nil
}

// decodeSlots is the inverse of encodeSlots.
func decodeSlots(raw map[string]json.RawMessage) (*Snapshot, error) {
	s := &Snapshot{
		APIKeys:       []models.Credential{},
		Conversations: []models.Conversation{},
	}
	if v, ok := raw[SlotAPIKeys]; ok {
		if err := json.Unmarshal(v, &s.APIKeys); err != nil {
			return nil, fmt.Errorf("decode %s: %w", SlotAPIKeys, err)
		}
	}
	if v, ok := raw[SlotConversations]; ok {
		if err := json.Unmarshal(v, &s.Conversations); err != nil {
			return nil, fmt.Errorf("decode %s: %w", SlotConversations, err)
		}
	}
	if v, ok := raw[SlotActiveConversation]; ok {
		var id string
		if err := json.Unmarshal(v, &id); err != nil {
			return nil, fmt.Errorf("decode %s: %w", SlotActiveConversation, err)
		}
		s.ActiveConversation = &id
	}
	if v, ok := raw[SlotSelectedModel]; ok {
		var model string
		if err := json.Unmarshal(v, &model); err != nil {
			return nil, fmt.Errorf("decode %s: %w", SlotSelectedModel, err)
		}
		s.SelectedModel = &model
	}
	if v, ok := raw[SlotDarkMode]; ok {
		var dark bool
		if err := json.Unmarshal(v, &dark); err != nil {
			return nil, fmt.Errorf("decode %s: %w", SlotDarkMode, err)
		}
		s.DarkMode = &dark
	}
	if s.APIKeys == nil {
		s.APIKeys = []models.Credential{}
	}
	if s.Conversations == nil {
		s.Conversations = []models.Conversation{}
	}
	return s, nil
}
