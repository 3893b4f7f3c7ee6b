// backend/internal/services/feedback.go
package services

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/answerdesk/triage/backend/internal/models"
	"github.com/answerdesk/triage/backend/internal/repository"
	"github.com/answerdesk/triage/backend/internal/validation"
	"github.com/sirupsen/logrus"
)

// FeedbackService owns the triage-side mutations of feedback records
// (tag, pm_notes, status) and the paginated listing. Feedback content
// itself is written by the ingestion path and never changes here.
type FeedbackService struct {
	repoManager *repository.RepositoryManager
	cache       MetricsCache
	logger      *logrus.Logger
}

func NewFeedbackService(
	repoManager *repository.RepositoryManager,
	cache MetricsCache,
	logger *logrus.Logger,
) *FeedbackService {
	return &FeedbackService{
		repoManager: repoManager,
		cache:       cache,
		logger:      logger,
	}
}

// Get returns a single feedback record.
func (s *FeedbackService) Get(id string) (*models.Feedback, error) {
	return s.repoManager.Feedback.GetByID(id)
}

// List returns one page of feedback matching the filter, newest first.
func (s *FeedbackService) List(filter models.FeedbackFilter) (*models.FeedbackPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}

	items, total, err := s.repoManager.Feedback.List(filter)
	if err != nil {
		return nil, err
	}

	return &models.FeedbackPage{
		Items:      items,
		Page:       filter.Page,
		PageSize:   models.FeedbackPageSize,
		TotalCount: total,
		TotalPages: int(math.Ceil(float64(total) / float64(models.FeedbackPageSize))),
	}, nil
}

// Update applies a partial triage update. Any status value is accepted
// as an explicit override; keeping "escalated" consistent with open
// escalations is the escalation lifecycle's job.
func (s *FeedbackService) Update(ctx context.Context, id string, req models.FeedbackUpdateRequest) (*models.Feedback, error) {
	update, err := validation.FeedbackPatch(req)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if update.SetTag {
		fields["tag"] = update.Tag
	}
	if update.SetPMNotes {
		fields["pm_notes"] = update.PMNotes
	}
	if update.SetStatus {
		fields["status"] = update.Status
	}

	feedback, err := s.repoManager.Feedback.UpdateFields(id, fields)
	if err != nil {
		return nil, err
	}

	s.invalidateMetrics(ctx)

	s.logger.WithFields(logrus.Fields{
		"feedback_id": feedback.ID,
		"status":      feedback.Status,
	}).Info("Feedback updated")

	return feedback, nil
}

// ParseFeedbackFilter builds a listing filter from raw query values.
// Unrecognized rating/status values are dropped; a bad page number
// falls back to the first page.
func ParseFeedbackFilter(rating, status, search, page string) models.FeedbackFilter {
	filter := models.FeedbackFilter{Page: 1}

	switch rating {
	case "up":
		up := true
		filter.Rating = &up
	case "down":
		down := false
		filter.Rating = &down
	}

	if models.ValidFeedbackStatus(status) {
		filter.Status = status
	}

	filter.Search = strings.TrimSpace(search)

	if n, err := strconv.Atoi(page); err == nil && n > 0 {
		filter.Page = n
	}

	return filter
}

func (s *FeedbackService) invalidateMetrics(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateMetricsCache(ctx); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate metrics cache")
	}
}
