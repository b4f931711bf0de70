package app

import (
	"fmt"

	"github.com/atinyakov/cyberchat/internal/models"
)

// NewConversation creates an empty conversation and makes it active.
func (a *App) NewConversation() (string, error) {
	var id string
	err := a.update(func(s *state) error {
		id = s.convs.Create()
		s.activeConversation = id
		return nil
	})
	if err != nil {
		return "", a.failWith(err, "Conversation not created", err.Error())
	}
	a.notify("New conversation created", "Start chatting about cybersecurity!")
	return id, nil
}

// SelectConversation makes id the active conversation.
func (a *App) SelectConversation(id string) error {
	err := a.update(func(s *state) error {
		if s.convs.Get(id) == nil {
			return fmt.Errorf("%w: conversation %s", models.ErrNotFound, id)
		}
		s.activeConversation = id
		return nil
	})
	if err != nil {
		return a.failWith(err, "Conversation not found", "The conversation no longer exists.")
	}
	return nil
}

// DeleteConversation removes the conversation id. Deleting the active
// conversation leaves none active.
func (a *App) DeleteConversation(id string) error {
	err := a.update(func(s *state) error {
		s.convs.Delete(id)
		if s.activeConversation == id {
			s.activeConversation = ""
		}
		return nil
	})
	if err != nil {
		return a.failWith(err, "Conversation not deleted", err.Error())
	}
	a.notify("Conversation deleted", "The conversation has been removed.")
	return nil
}

// Conversations returns every conversation, most recent first.
func (a *App) Conversations() []models.Conversation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.st.convs.List()
}

// Conversation returns the conversation id, or nil.
func (a *App) Conversation(id string) *models.Conversation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.st.convs.Get(id)
}

// ActiveConversation returns the active conversation, or nil.
func (a *App) ActiveConversation() *models.Conversation {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.st.activeConversation == "" {
		return nil
	}
	return a.st.convs.Get(a.st.activeConversation)
}

// SetDarkMode stores the theme preference.
func (a *App) SetDarkMode(on bool) error {
	err := a.update(func(s *state) error {
		s.darkMode = on
		return nil
	})
	if err != nil {
		return a.failWith(err, "Theme not saved", err.Error())
	}
	return nil
}

// DarkMode returns the theme preference.
func (a *App) DarkMode() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.st.darkMode
}
