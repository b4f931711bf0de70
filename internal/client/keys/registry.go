// Package keys implements the client-side registry of provider API keys.
package keys

import (
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/cyberchat/internal/models"
	"github.com/atinyakov/cyberchat/internal/provider"
	"github.com/google/uuid"
)

// Registry is an ordered collection of credentials with at most one active
// entry. It is not safe for concurrent use; the application state container
// serializes access.
type Registry struct {
	records []models.Credential
	now     func() time.Time
	newID   func() string
}

// NewRegistry builds a registry from previously persisted records.
func NewRegistry(records ...models.Credential) *Registry {
	r := &Registry{
		records: make([]models.Credential, 0, len(records)),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
	for _, rec := range records {
		r.records = append(r.records, copyCredential(rec))
	}
	return r
}

// Add classifies secret locally and stores a new credential named name.
// It returns the id of the new record.
func (r *Registry) Add(name, secret string) (string, error) {
	return r.AddDetected(name, secret, provider.Classify(secret))
}

// AddDetected stores a new credential using a classification obtained
// elsewhere, typically the backend detection endpoint. The first credential
// added to an empty registry becomes active. Surrounding whitespace of the
// secret is dropped before it is stored.
func (r *Registry) AddDetected(name, secret string, c provider.Classification) (string, error) {
	secret = strings.TrimSpace(secret)
	if strings.TrimSpace(name) == "" || secret == "" {
		return "", fmt.Errorf("%w: name and API key are required", models.ErrValidation)
	}
	if !c.Known() {
		return "", fmt.Errorf("%w: could not detect the API provider", models.ErrValidation)
	}

	supported := make([]string, len(c.Models))
	copy(supported, c.Models)

	rec := models.Credential{
		ID:              r.newID(),
		Provider:        c.Provider,
		Name:            name,
		Secret:          secret,
		MaskedSecret:    Mask(secret),
		SupportedModels: supported,
		IsActive:        len(r.records) == 0,
		CreatedAt:       r.now(),
	}
	r.records = append(r.records, rec)
	return rec.ID, nil
}

// Remove deletes the credential with the given id. Absent ids are ignored and
// no other record changes its active flag.
func (r *Registry) Remove(id string) {
	for i := range r.records {
		if r.records[i].ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return
		}
	}
}

// SetActive makes id the only active credential.
func (r *Registry) SetActive(id string) error {
	if r.index(id) < 0 {
		return fmt.Errorf("%w: api key %s", models.ErrNotFound, id)
	}
	for i := range r.records {
		r.records[i].IsActive = r.records[i].ID == id
	}
	return nil
}

// Active returns a copy of the active credential, or nil.
func (r *Registry) Active() *models.Credential {
	for _, rec := range r.records {
		if rec.IsActive {
			c := copyCredential(rec)
			return &c
		}
	}
	return nil
}

// Get returns a copy of the credential with the given id, or nil.
func (r *Registry) Get(id string) *models.Credential {
	if i := r.index(id); i >= 0 {
		c := copyCredential(r.records[i])
		return &c
	}
	return nil
}

// Records returns a copy of all credentials in insertion order.
func (r *Registry) Records() []models.Credential {
	out := make([]models.Credential, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, copyCredential(rec))
	}
	return out
}

// Len returns the number of stored credentials.
func (r *Registry) Len() int { return len(r.records) }

// Clone returns an independent deep copy of the registry.
func (r *Registry) Clone() *Registry {
	c := NewRegistry(r.records...)
	c.now = r.now
	c.newID = r.newID
	return c
}

func (r *Registry) index(id string) int {
	for i := range r.records {
		if r.records[i].ID == id {
			return i
		}
	}
	return -1
}

// Mask returns the display form of secret: the first 10 characters, an
// ellipsis and the last 4 characters.
func Mask(secret string) string {
	runes := []rune(secret)
	head, tail := runes, runes
	if len(head) > 10 {
		head = head[:10]
	}
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	return string(head) + "..." + string(tail)
}

func copyCredential(c models.Credential) models.Credential {
	if c.SupportedModels != nil {
		c.SupportedModels = append(make([]string, 0, len(c.SupportedModels)), c.SupportedModels...)
	}
	return c
}
