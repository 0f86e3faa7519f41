package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/tripwizard/internal/domain"
	"github.com/pkordes/tripwizard/internal/draft"
	"github.com/pkordes/tripwizard/internal/repo"
)

// DraftService applies reducer actions to stored drafts: load, reduce, save.
type DraftService struct {
	repo repo.DraftRepo
}

// NewDraftService constructs a DraftService backed by the provided DraftRepo.
func NewDraftService(r repo.DraftRepo) *DraftService {
	return &DraftService{repo: r}
}

// ApplyResult is the draft after an action plus any advisory warnings.
type ApplyResult struct {
	Trip     domain.Trip
	Warnings []string
}

// Apply runs action against the stored draft and saves the result. When
// version is non-zero it must equal the stored version. An AutoAssignDates
// action on a trip without a start date is not an error: the draft is
// returned unchanged with a warning.
func (s *DraftService) Apply(ctx context.Context, ownerID string, id uuid.UUID, version int, action draft.Action) (ApplyResult, error) {
	current, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return ApplyResult{}, fmt.Errorf("service.DraftService.Apply: %w", err)
	}
	if version != 0 && version != current.Version {
		return ApplyResult{}, fmt.Errorf("service.DraftService.Apply: have version %d, stored %d: %w",
			version, current.Version, domain.ErrStaleDraft)
	}

	next, err := draft.Reduce(current, action)
	if errors.Is(err, draft.ErrNoStartDate) {
		return ApplyResult{Trip: current, Warnings: append(draft.Warnings(current), err.Error())}, nil
	}
	if err != nil {
		// Reduce errors already carry a user-facing message.
		return ApplyResult{}, err
	}

	saved, err := s.repo.Save(ctx, next)
	if err != nil {
		return ApplyResult{}, fmt.Errorf("service.DraftService.Apply: %w", err)
	}
	return ApplyResult{Trip: saved, Warnings: draft.Warnings(saved)}, nil
}
