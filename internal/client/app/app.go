// Package app is the application state container of the chat client. It owns
// the key registry, the conversation store and the selection state, and
// writes every change through to the persistent store.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/atinyakov/cyberchat/internal/client/conversation"
	"github.com/atinyakov/cyberchat/internal/client/keys"
	"github.com/atinyakov/cyberchat/internal/client/storage"
	"github.com/atinyakov/cyberchat/internal/models"
	"github.com/atinyakov/cyberchat/internal/provider"
	"go.uber.org/zap"
)

// Backend is the remote side of the application: completions plus key
// detection and validation. *api.Client implements it.
type Backend interface {
	Complete(ctx context.Context, transcript []models.TranscriptMessage, cred models.Credential, model, sessionID string) (string, error)
	Detect(ctx context.Context, secret string) (provider.Classification, error)
	Validate(ctx context.Context, secret string, p models.Provider) (models.ValidateKeyResponse, error)
}

// state is everything the App persists.
type state struct {
	keys               *keys.Registry
	convs              *conversation.Store
	activeConversation string
	selectedModel      string
	darkMode           bool
}

func newState() *state {
	return &state{keys: keys.NewRegistry(), convs: conversation.NewStore()}
}

func (s *state) clone() *state {
	c := *s
	c.keys = s.keys.Clone()
	c.convs = s.convs.Clone()
	return &c
}

func (s *state) snapshot() *storage.Snapshot {
	snap := &storage.Snapshot{
		APIKeys:       s.keys.Records(),
		Conversations: s.convs.List(),
		DarkMode:      &s.darkMode,
	}
	if s.activeConversation != "" {
		id := s.activeConversation
		snap.ActiveConversation = &id
	}
	if s.selectedModel != "" {
		m := s.selectedModel
		snap.SelectedModel = &m
	}
	return snap
}

func stateFromSnapshot(snap *storage.Snapshot) *state {
	s := &state{
		keys:  keys.NewRegistry(snap.APIKeys...),
		convs: conversation.NewStore(snap.Conversations...),
	}
	if snap.ActiveConversation != nil && s.convs.Get(*snap.ActiveConversation) != nil {
		s.activeConversation = *snap.ActiveConversation
	}
	if snap.SelectedModel != nil {
		s.selectedModel = *snap.SelectedModel
	}
	if snap.DarkMode != nil {
		s.darkMode = *snap.DarkMode
	}
	return s
}

// App is the single source of truth while the client runs. It is safe for
// concurrent use.
type App struct {
	mu       sync.Mutex
	st       *state
	inflight map[string]bool

	store    storage.Store
	backend  Backend
	notifier Notifier
	log      *zap.Logger
}

// Option configures an App.
type Option func(*App)

// WithNotifier sets the receiver of user-facing notices.
func WithNotifier(n Notifier) Option {
	return func(a *App) {
		if n != nil {
			a.notifier = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// New returns an App with empty state. Call Load to restore persisted state.
func New(store storage.Store, backend Backend, opts ...Option) *App {
	a := &App{
		st:       newState(),
		inflight: make(map[string]bool),
		store:    store,
		backend:  backend,
		notifier: discardNotifier{},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load replaces the in-memory state with the persisted one.
func (a *App) Load() error {
	snap, err := a.store.Load()
	if err != nil {
		a.log.Error("failed to load state", zap.Error(err))
		return fmt.Errorf("load state: %w", err)
	}
	a.mu.Lock()
	a.st = stateFromSnapshot(snap)
	a.mu.Unlock()
	a.log.Debug("state loaded",
		zap.Int("keys", len(snap.APIKeys)),
		zap.Int("conversations", len(snap.Conversations)),
	)
	return nil
}

// Save writes the current state to the store.
func (a *App) Save() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.store.Save(a.st.snapshot()); err != nil {
		a.log.Error("failed to save state", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// update applies fn to a copy of the state, writes the copy through to the
// store and only then makes it current. If fn or the write fails nothing
// changes.
func (a *App) update(fn func(s *state) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.updateLocked(fn)
}

func (a *App) updateLocked(fn func(s *state) error) error {
	next := a.st.clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := a.store.Save(next.snapshot()); err != nil {
		a.log.Error("failed to persist state", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	a.st = next
	return nil
}

func (a *App) notify(title, description string) {
	a.notifier.Notify(Notice{Title: title, Description: description, Variant: VariantDefault})
}

// fail emits a destructive notice and returns err unchanged.
func (a *App) fail(title, description string, err error) error {
	a.notifier.Notify(Notice{Title: title, Description: description, Variant: VariantDestructive})
	return err
}

// failWith reports err with the storage notice when it is a write
// failure, and with title/description otherwise.
func (a *App) failWith(err error, title, description string) error {
	if isPersist(err) {
		return a.fail("Storage error", "Your change could not be saved: "+err.Error(), err)
	}
	return a.fail(title, description, err)
}

func isPersist(err error) bool {
	return errors.Is(err, ErrPersist)
}
