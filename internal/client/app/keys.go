package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/cyberchat/internal/models"
	"github.com/atinyakov/cyberchat/internal/provider"
	"go.uber.org/zap"
)

// AddKey stores a new API key. The provider is detected by the backend when
// it is reachable and by the local prefix rules otherwise. The first key
// becomes active.
func (a *App) AddKey(ctx context.Context, name, secret string) (string, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(secret) == "" {
		return "", a.fail("Invalid input", "Please provide both a name and an API key.",
			fmt.Errorf("%w: name and API key are required", models.ErrValidation))
	}

	c := a.classify(ctx, secret)
	if !c.Known() {
		return "", a.fail("Unknown key format", "Could not detect the API provider. Please check your key.",
			fmt.Errorf("%w: could not detect the API provider", models.ErrValidation))
	}

	var id string
	err := a.update(func(s *state) error {
		var err error
		id, err = s.keys.AddDetected(name, secret, c)
		return err
	})
	if err != nil {
		return "", a.failWith(err, "Invalid input", err.Error())
	}

	a.log.Info("api key added", zap.String("id", id), zap.String("provider", string(c.Provider)))
	a.notify("API Key added successfully",
		fmt.Sprintf("%s key with %d models detected.", strings.ToUpper(string(c.Provider)), len(c.Models)))
	return id, nil
}

// classify prefers the backend's answer and falls back to the local table.
func (a *App) classify(ctx context.Context, secret string) provider.Classification {
	local := provider.Classify(secret)
	if local.Pending || a.backend == nil {
		return local
	}
	remote, err := a.backend.Detect(ctx, strings.TrimSpace(secret))
	if err != nil {
		a.log.Warn("remote key detection failed, using local rules", zap.Error(err))
		return local
	}
	return remote
}

// RemoveKey deletes an API key. Removing the active key leaves no key active.
func (a *App) RemoveKey(id string) error {
	err := a.update(func(s *state) error {
		s.keys.Remove(id)
		return nil
	})
	if err != nil {
		return a.failWith(err, "API key not removed", err.Error())
	}
	a.notify("API Key removed", "The key has been deleted from your settings.")
	return nil
}

// SetActiveKey makes id the key used for chat. A selected model the new key
// does not offer is cleared.
func (a *App) SetActiveKey(id string) error {
	err := a.update(func(s *state) error {
		if err := s.keys.SetActive(id); err != nil {
			return err
		}
		if active := s.keys.Active(); s.selectedModel != "" && !active.Supports(s.selectedModel) {
			s.selectedModel = ""
		}
		return nil
	})
	if err != nil {
		return a.failWith(err, "API key not found", "The selected key no longer exists.")
	}
	a.notify("Active key changed", "The selected key is now active for chat.")
	return nil
}

// ValidateKey asks the backend to probe the stored key id.
func (a *App) ValidateKey(ctx context.Context, id string) (models.ValidateKeyResponse, error) {
	cred := a.Key(id)
	if cred == nil {
		return models.ValidateKeyResponse{}, a.fail("API key not found", "The selected key no longer exists.",
			fmt.Errorf("%w: api key %s", models.ErrNotFound, id))
	}
	if a.backend == nil {
		return models.ValidateKeyResponse{}, a.fail("Validation unavailable", "No backend is configured.",
			errors.New("no backend configured"))
	}

	res, err := a.backend.Validate(ctx, cred.Secret, cred.Provider)
	if err != nil {
		return res, a.completionFailure(err)
	}
	if !res.IsValid {
		desc := "The provider rejected this key."
		if res.Error != nil && *res.Error != "" {
			desc = *res.Error
		}
		a.notifier.Notify(Notice{Title: "Invalid API key", Description: desc, Variant: VariantDestructive})
		return res, nil
	}
	a.notify("API key is valid", fmt.Sprintf("%s accepted %s.", strings.ToUpper(string(cred.Provider)), cred.MaskedSecret))
	return res, nil
}

// SelectModel chooses the model used for completions. It must be offered by
// the active key.
func (a *App) SelectModel(model string) error {
	err := a.update(func(s *state) error {
		active := s.keys.Active()
		if active == nil {
			return ErrNoActiveKey
		}
		if !active.Supports(model) {
			return fmt.Errorf("%w: model %q is not available for %s", models.ErrValidation, model, active.Provider)
		}
		s.selectedModel = model
		return nil
	})
	switch {
	case errors.Is(err, ErrNoActiveKey):
		return a.fail("No API key configured", "Please add an API key in settings first.", err)
	case err != nil:
		return a.failWith(err, "Model not supported", err.Error())
	}
	return nil
}

// AvailableModels lists the models of the active key.
func (a *App) AvailableModels() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if active := a.st.keys.Active(); active != nil {
		return active.SupportedModels
	}
	return []string{}
}

// Keys returns all stored keys in insertion order.
func (a *App) Keys() []models.Credential {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.st.keys.Records()
}

// Key returns the key id, or nil.
func (a *App) Key(id string) *models.Credential {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.st.keys.Get(id)
}

// ActiveKey returns the active key, or nil.
func (a *App) ActiveKey() *models.Credential {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.st.keys.Active()
}

// SelectedModel returns the selected model id, or "".
func (a *App) SelectedModel() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.st.selectedModel
}
