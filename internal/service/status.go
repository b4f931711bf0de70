package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/cyberchat/internal/models"
	"github.com/google/uuid"
)

// MaxStatusChecks bounds List.
const MaxStatusChecks = 1000

// StatusRepository defines the persistence operations needed by the
// StatusService.
type StatusRepository interface {
	// CreateStatusCheck stores a new status check.
	CreateStatusCheck(ctx context.Context, check models.StatusCheck) error
	// ListStatusChecks returns at most limit status checks, oldest first.
	ListStatusChecks(ctx context.Context, limit int) ([]models.StatusCheck, error)
}

// StatusService records client heartbeats.
type StatusService struct {
	repo StatusRepository
	now  func() time.Time
}

// NewStatusService constructs a StatusService with the provided repository.
func NewStatusService(repo StatusRepository) *StatusService {
	return &StatusService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Create stores a status check for clientName.
func (s *StatusService) Create(ctx context.Context, clientName string) (models.StatusCheck, error) {
	if strings.TrimSpace(clientName) == "" {
		return models.StatusCheck{}, fmt.Errorf("%w: client_name is required", models.ErrValidation)
	}
	check := models.StatusCheck{
		ID:         uuid.NewString(),
		ClientName: clientName,
		Timestamp:  s.now(),
	}
	if err := s.repo.CreateStatusCheck(ctx, check); err != nil {
		return models.StatusCheck{}, err
	}
	return check, nil
}

// List returns up to MaxStatusChecks status checks.
func (s *StatusService) List(ctx context.Context) ([]models.StatusCheck, error) {
	return s.repo.ListStatusChecks(ctx, MaxStatusChecks)
}
