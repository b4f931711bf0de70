package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/cyberchat/internal/client/api"
	"github.com/atinyakov/cyberchat/internal/models"
	"go.uber.org/zap"
)

// SendMessage appends text as a user message to the active conversation,
// creating one when none is active, and asks the backend for a reply. The
// reply is appended and returned. On a backend failure the user message stays
// and no assistant message is added.
func (a *App) SendMessage(ctx context.Context, text string) (string, error) {
	// The stored message, and so the conversation title, is the trimmed text;
	// leading whitespace never reaches the title.
	text = strings.TrimSpace(text)
	if text == "" {
		return "", a.fail("Empty message", "Please type a message first.",
			fmt.Errorf("%w: message is empty", models.ErrValidation))
	}

	a.mu.Lock()
	cred := a.st.keys.Active()
	model := a.st.selectedModel
	a.mu.Unlock()

	switch {
	case cred == nil:
		return "", a.fail("No API key configured", "Please add an API key in settings first.", ErrNoActiveKey)
	case model == "":
		return "", a.fail("No model selected", "Please select a model first.", ErrNoModel)
	case !cred.Supports(model):
		return "", a.fail("Model not supported",
			fmt.Sprintf("%s is not available for the active %s key.", model, cred.Provider),
			fmt.Errorf("%w: model %q is not available for %s", models.ErrValidation, model, cred.Provider))
	}
	if a.backend == nil {
		return "", a.fail("Connection Error", "No backend is configured.",
			&api.CompletionError{Kind: api.KindConnection, Message: "no backend configured"})
	}

	convID, transcript, err := a.appendUserMessage(text)
	if err != nil {
		if errors.Is(err, ErrRequestInFlight) {
			return "", a.fail("Please wait", "The previous message is still being answered.", err)
		}
		return "", a.failWith(err, "Message not sent", err.Error())
	}
	defer a.release(convID)

	reply, err := a.backend.Complete(ctx, transcript, *cred, model, convID)
	if err != nil {
		a.log.Warn("completion failed",
			zap.String("conversation", convID),
			zap.String("provider", string(cred.Provider)),
			zap.String("model", model),
			zap.Error(err),
		)
		return "", a.completionFailure(err)
	}

	err = a.update(func(s *state) error {
		_, err := s.convs.AppendMessage(convID, models.RoleAssistant, reply)
		return err
	})
	if err != nil {
		return "", a.failWith(err, "Conversation not found", "The conversation was deleted before the reply arrived.")
	}

	a.notify("Response received", "AI has responded to your message.")
	return reply, nil
}

// appendUserMessage creates the conversation if needed, appends the user
// message and reserves the conversation for one outstanding request, all in
// one transaction.
func (a *App) appendUserMessage(text string) (string, []models.TranscriptMessage, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var (
		convID     string
		transcript []models.TranscriptMessage
	)
	err := a.updateLocked(func(s *state) error {
		id := s.activeConversation
		if id == "" || s.convs.Get(id) == nil {
			id = s.convs.Create()
			s.activeConversation = id
		}
		if a.inflight[id] {
			return ErrRequestInFlight
		}
		if _, err := s.convs.AppendMessage(id, models.RoleUser, text); err != nil {
			return err
		}
		var err error
		transcript, err = s.convs.Transcript(id)
		convID = id
		return err
	})
	if err != nil {
		return "", nil, err
	}
	a.inflight[convID] = true
	return convID, transcript, nil
}

func (a *App) release(convID string) {
	a.mu.Lock()
	delete(a.inflight, convID)
	a.mu.Unlock()
}

// completionFailure turns a backend error into exactly one notice that tells
// a key problem apart from a network problem.
func (a *App) completionFailure(err error) error {
	var ce *api.CompletionError
	if !errors.As(err, &ce) {
		return a.fail("Error", err.Error(), err)
	}
	switch ce.Kind {
	case api.KindTimeout:
		return a.fail("Request timed out", "The AI provider did not answer in time. Please try again.", err)
	case api.KindConnection:
		return a.fail("Connection Error", "Cannot connect to server. Please check your internet connection.", err)
	default:
		return a.fail("Error", ce.Message+". Please check your API key and selected model.", err)
	}
}
