package service

import (
	"context"
	"fmt"
	"time"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/models"
	"github.com/harukilab/rhythmdb/common/cache"
	"github.com/harukilab/rhythmdb/common/logger"
	"github.com/harukilab/rhythmdb/common/metrics"
)

// ModerationStore is the persistence surface of the review workflow.
// Implemented by repository.ModerationRepository.
type ModerationStore interface {
	IsAdmin(ctx context.Context, imID string) (bool, error)
	InsertPending(ctx context.Context, aliasType string, aliasTypeID int, alias, submittedBy string) (*models.PendingAlias, error)
	GetPending(ctx context.Context, pendingID int64) (*models.PendingAlias, error)
	ListPending(ctx context.Context) ([]models.PendingAlias, error)
	DeletePending(ctx context.Context, pendingID int64) error
	InsertRejected(ctx context.Context, rejected *models.RejectedAlias) error
	GetRejectedReason(ctx context.Context, pendingID int64) (*string, error)
}

// SubmitOutcome says what happened to an alias submission
type SubmitOutcome int

const (
	// OutcomePublished means the submitter was an admin and the alias went
	// live immediately
	OutcomePublished SubmitOutcome = iota
	// OutcomeQueued means the alias entered the review queue
	OutcomeQueued
)

// ReviewStates a status lookup can report. A submission that was approved
// leaves no record, so "approved" is indistinguishable from "never
// existed" and both surface as ErrNotFound.
const (
	ReviewStatePending  = "pending"
	ReviewStateRejected = "rejected"
)

// ReviewStatus is the result of a status lookup
type ReviewStatus struct {
	State  string `json:"state"`
	Reason string `json:"reason,omitempty"`
}

// ModerationService runs the alias review workflow: submissions enter
// pending, admins approve them into the live table or reject them with a
// recorded reason. There are no retries; failures surface to the caller.
type ModerationService struct {
	store   ModerationStore
	aliases AliasStore
	cache   cache.Cache
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewModerationService creates a new moderation service
func NewModerationService(store ModerationStore, aliases AliasStore, c cache.Cache, m *metrics.Metrics, log *logger.Logger) *ModerationService {
	return &ModerationService{
		store:   store,
		aliases: aliases,
		cache:   c,
		metrics: m,
		log:     log,
	}
}

// Submit routes a new alias by submitter privilege: admins publish
// immediately, everyone else is queued for review. The admin check and the
// write are separate statements; a user promoted mid-request may see
// either outcome.
func (s *ModerationService) Submit(ctx context.Context, aliasType string, aliasTypeID int, alias, imID string) (SubmitOutcome, error) {
	if !models.ValidAliasType(aliasType) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAliasType, aliasType)
	}

	admin, err := s.store.IsAdmin(ctx, imID)
	if err != nil {
		return 0, err
	}

	if !admin {
		if _, err := s.store.InsertPending(ctx, aliasType, aliasTypeID, alias, imID); err != nil {
			return 0, err
		}
		s.metrics.Moderation.WithLabelValues("queued").Inc()
		s.log.Info("alias queued for review", "alias_type", aliasType, "alias_type_id", aliasTypeID, "alias", alias, "submitted_by", imID)
		return OutcomeQueued, nil
	}

	if _, err := s.aliases.Publish(ctx, aliasType, aliasTypeID, alias); err != nil {
		return 0, err
	}
	s.invalidateAlias(ctx, aliasType, aliasTypeID, alias)
	s.metrics.Moderation.WithLabelValues("published").Inc()
	s.log.Info("alias published", "alias_type", aliasType, "alias_type_id", aliasTypeID, "alias", alias, "by", imID)
	return OutcomePublished, nil
}

// Approve publishes a pending submission and removes it from the queue.
// Approving an id that was already approved (or never existed) is
// ErrNotFound.
func (s *ModerationService) Approve(ctx context.Context, pendingID int64, imID string) error {
	if err := s.requireAdmin(ctx, imID); err != nil {
		return err
	}

	pending, err := s.store.GetPending(ctx, pendingID)
	if err != nil {
		return err
	}
	if pending == nil {
		return fmt.Errorf("pending alias %d: %w", pendingID, ErrNotFound)
	}

	if _, err := s.aliases.Publish(ctx, pending.AliasType, pending.AliasTypeID, pending.Alias); err != nil {
		return err
	}
	if err := s.store.DeletePending(ctx, pendingID); err != nil {
		return err
	}

	s.invalidateAlias(ctx, pending.AliasType, pending.AliasTypeID, pending.Alias)
	s.cache.Delete(ctx, aliasStatusKey(pendingID))
	s.metrics.Moderation.WithLabelValues("approved").Inc()
	s.log.Info("alias approved", "pending_id", pendingID, "alias", pending.Alias, "by", imID)
	return nil
}

// Reject records a rejection under the pending id and removes the
// submission from the queue
func (s *ModerationService) Reject(ctx context.Context, pendingID int64, imID, reason string) error {
	if err := s.requireAdmin(ctx, imID); err != nil {
		return err
	}

	pending, err := s.store.GetPending(ctx, pendingID)
	if err != nil {
		return err
	}
	if pending == nil {
		return fmt.Errorf("pending alias %d: %w", pendingID, ErrNotFound)
	}

	rejected := &models.RejectedAlias{
		ID:          pending.ID,
		AliasType:   pending.AliasType,
		AliasTypeID: pending.AliasTypeID,
		Alias:       pending.Alias,
		ReviewedBy:  imID,
		Reason:      reason,
		ReviewedAt:  time.Now().UTC(),
	}
	if err := s.store.InsertRejected(ctx, rejected); err != nil {
		return err
	}
	if err := s.store.DeletePending(ctx, pendingID); err != nil {
		return err
	}

	s.cache.Delete(ctx, aliasStatusKey(pendingID))
	s.metrics.Moderation.WithLabelValues("rejected").Inc()
	s.log.Info("alias rejected", "pending_id", pendingID, "alias", pending.Alias, "by", imID, "reason", reason)
	return nil
}

// Status reports where a submission stands. Approved submissions leave no
// trace, so they are ErrNotFound like unknown ids.
func (s *ModerationService) Status(ctx context.Context, pendingID int64) (*ReviewStatus, error) {
	status, err := fetchCached(ctx, s.cache, s.metrics, "alias_status", aliasStatusKey(pendingID),
		func(ctx context.Context) (*ReviewStatus, error) {
			pending, err := s.store.GetPending(ctx, pendingID)
			if err != nil {
				return nil, err
			}
			if pending != nil {
				return &ReviewStatus{State: ReviewStatePending}, nil
			}

			reason, err := s.store.GetRejectedReason(ctx, pendingID)
			if err != nil {
				return nil, err
			}
			if reason != nil {
				return &ReviewStatus{State: ReviewStateRejected, Reason: *reason}, nil
			}

			return nil, nil
		})
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, fmt.Errorf("review record %d: %w", pendingID, ErrNotFound)
	}

	return status, nil
}

// ListPending returns the review queue. Admin-only; an empty queue is
// ErrNotFound.
func (s *ModerationService) ListPending(ctx context.Context, imID string) ([]models.PendingAlias, error) {
	if err := s.requireAdmin(ctx, imID); err != nil {
		return nil, err
	}

	pending, err := s.store.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, fmt.Errorf("pending aliases: %w", ErrNotFound)
	}

	return pending, nil
}

func (s *ModerationService) requireAdmin(ctx context.Context, imID string) error {
	admin, err := s.store.IsAdmin(ctx, imID)
	if err != nil {
		return err
	}
	if !admin {
		return fmt.Errorf("user %s: %w", imID, ErrPermissionDenied)
	}
	return nil
}

func (s *ModerationService) invalidateAlias(ctx context.Context, aliasType string, aliasTypeID int, alias string) {
	s.cache.Delete(ctx,
		aliasListKey(aliasType, aliasTypeID, nil),
		aliasIDsKey(aliasType, alias, nil),
	)
}
