// backend/internal/services/escalation.go
package services

import (
	"context"
	"time"

	"github.com/answerdesk/triage/backend/internal/models"
	"github.com/answerdesk/triage/backend/internal/repository"
	"github.com/answerdesk/triage/backend/internal/validation"
	"github.com/sirupsen/logrus"
)

// EscalationService owns the open/closed lifecycle of escalations and
// keeps the parent feedback's status in sync on creation.
type EscalationService struct {
	repoManager *repository.RepositoryManager
	cache       MetricsCache
	logger      *logrus.Logger
}

func NewEscalationService(
	repoManager *repository.RepositoryManager,
	cache MetricsCache,
	logger *logrus.Logger,
) *EscalationService {
	return &EscalationService{
		repoManager: repoManager,
		cache:       cache,
		logger:      logger,
	}
}

// Create validates the request, verifies the referenced feedback exists
// and persists a new open escalation. Marking the parent feedback as
// escalated is a best-effort second write: if it fails the escalation
// stands and the error is only logged.
func (s *EscalationService) Create(ctx context.Context, req models.EscalationCreateRequest) (*models.Escalation, error) {
	draft, err := validation.EscalationCreate(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.repoManager.Feedback.GetByID(draft.FeedbackID); err != nil {
		return nil, err
	}

	escalation := &models.Escalation{
		FeedbackID:      draft.FeedbackID,
		Team:            draft.Team,
		Priority:        draft.Priority,
		Summary:         draft.Summary,
		Details:         draft.Details,
		SuggestedAction: draft.SuggestedAction,
		Status:          models.EscalationStatusOpen,
	}

	if err := s.repoManager.Escalation.Create(escalation); err != nil {
		return nil, err
	}

	sync := map[string]interface{}{"status": models.FeedbackStatusEscalated}
	if _, err := s.repoManager.Feedback.UpdateFields(draft.FeedbackID, sync); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"escalation_id": escalation.ID,
			"feedback_id":   draft.FeedbackID,
		}).Error("Failed to mark parent feedback as escalated")
	}

	s.invalidateMetrics(ctx)

	s.logger.WithFields(logrus.Fields{
		"escalation_id": escalation.ID,
		"feedback_id":   escalation.FeedbackID,
		"team":          escalation.Team,
		"priority":      escalation.Priority,
	}).Info("Escalation created")

	return escalation, nil
}

// Get returns an escalation with its parent feedback embedded.
func (s *EscalationService) Get(id string) (*models.Escalation, error) {
	return s.repoManager.Escalation.GetByIDWithFeedback(id)
}

// List returns escalations matching the filter, most urgent and
// longest-waiting first.
func (s *EscalationService) List(filter models.EscalationFilter) ([]models.Escalation, error) {
	return s.repoManager.Escalation.List(filter)
}

// Update applies a status and/or resolution-notes patch. Closing stamps
// resolved_at; reopening clears both resolved_at and resolution_notes.
// Neither direction touches the parent feedback's status.
func (s *EscalationService) Update(ctx context.Context, id string, req models.EscalationUpdateRequest) (*models.Escalation, error) {
	update, err := validation.EscalationPatch(req)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}

	if update.SetStatus {
		fields["status"] = update.Status

		switch update.Status {
		case models.EscalationStatusClosed:
			now := time.Now().UTC()
			fields["resolved_at"] = &now
		case models.EscalationStatusOpen:
			fields["resolved_at"] = nil
			fields["resolution_notes"] = nil
		}
	}

	if update.SetResolutionNotes {
		fields["resolution_notes"] = update.ResolutionNotes
	}

	escalation, err := s.repoManager.Escalation.UpdateFields(id, fields)
	if err != nil {
		return nil, err
	}

	s.invalidateMetrics(ctx)

	s.logger.WithFields(logrus.Fields{
		"escalation_id": escalation.ID,
		"status":        escalation.Status,
	}).Info("Escalation updated")

	return escalation, nil
}

// ParseEscalationFilter builds a listing filter from raw query values.
// Unrecognized values are dropped rather than rejected.
func ParseEscalationFilter(team, priority, status string) models.EscalationFilter {
	filter := models.EscalationFilter{}

	if models.ValidTeam(team) {
		filter.Team = team
	}
	if models.ValidPriority(priority) {
		filter.Priority = priority
	}
	if models.ValidEscalationStatus(status) {
		filter.Status = status
	}

	return filter
}

func (s *EscalationService) invalidateMetrics(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateMetricsCache(ctx); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate metrics cache")
	}
}
