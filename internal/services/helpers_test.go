package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/answerdesk/triage/backend/internal/errs"
	"github.com/answerdesk/triage/backend/internal/models"
	"github.com/answerdesk/triage/backend/internal/repository"
	"github.com/google/uuid"
)

// In-memory repository fakes. They mirror the query semantics of the
// real implementations closely enough for service-level tests.

type fakeFeedbackRepo struct {
	items     map[string]*models.Feedback
	updateErr error
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{items: map[string]*models.Feedback{}}
}

func (r *fakeFeedbackRepo) Create(feedback *models.Feedback) error {
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}
	if feedback.Status == "" {
		feedback.Status = models.FeedbackStatusOpen
	}
	r.items[feedback.ID] = feedback
	return nil
}

func (r *fakeFeedbackRepo) GetByID(id string) (*models.Feedback, error) {
	f, ok := r.items[id]
	if !ok {
		return nil, errs.NewNotFound("feedback", id)
	}
	copied := *f
	return &copied, nil
}

func (r *fakeFeedbackRepo) UpdateFields(id string, fields map[string]interface{}) (*models.Feedback, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	f, ok := r.items[id]
	if !ok {
		return nil, errs.NewNotFound("feedback", id)
	}
	for key, value := range fields {
		switch key {
		case "status":
			f.Status = value.(string)
		case "tag":
			f.Tag = asStringPtr(value)
		case "pm_notes":
			f.PMNotes = asStringPtr(value)
		}
	}
	copied := *f
	return &copied, nil
}

func (r *fakeFeedbackRepo) List(filter models.FeedbackFilter) ([]models.Feedback, int64, error) {
	var matched []models.Feedback
	for _, f := range r.items {
		if filter.Rating != nil && f.Rating != *filter.Rating {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !matchesSearch(f, filter.Search) {
			continue
		}
		matched = append(matched, *f)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (filter.Page - 1) * models.FeedbackPageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + models.FeedbackPageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *fakeFeedbackRepo) ListSince(since time.Time) ([]models.Feedback, error) {
	var matched []models.Feedback
	for _, f := range r.items {
		if !f.CreatedAt.Before(since) {
			matched = append(matched, *f)
		}
	}
	return matched, nil
}

func matchesSearch(f *models.Feedback, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(f.Query), term) {
		return true
	}
	return f.UserComment != nil && strings.Contains(strings.ToLower(*f.UserComment), term)
}

type fakeEscalationRepo struct {
	items    map[string]*models.Escalation
	feedback *fakeFeedbackRepo
}

func newFakeEscalationRepo(feedback *fakeFeedbackRepo) *fakeEscalationRepo {
	return &fakeEscalationRepo{items: map[string]*models.Escalation{}, feedback: feedback}
}

func (r *fakeEscalationRepo) Create(escalation *models.Escalation) error {
	if escalation.ID == "" {
		escalation.ID = uuid.NewString()
	}
	if escalation.CreatedAt.IsZero() {
		escalation.CreatedAt = time.Now().UTC()
	}
	r.items[escalation.ID] = escalation
	return nil
}

func (r *fakeEscalationRepo) GetByID(id string) (*models.Escalation, error) {
	e, ok := r.items[id]
	if !ok {
		return nil, errs.NewNotFound("escalation", id)
	}
	copied := *e
	return &copied, nil
}

func (r *fakeEscalationRepo) GetByIDWithFeedback(id string) (*models.Escalation, error) {
	e, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	if parent, ok := r.feedback.items[e.FeedbackID]; ok {
		copied := *parent
		e.Feedback = &copied
	}
	return e, nil
}

func (r *fakeEscalationRepo) UpdateFields(id string, fields map[string]interface{}) (*models.Escalation, error) {
	e, ok := r.items[id]
	if !ok {
		return nil, errs.NewNotFound("escalation", id)
	}
	for key, value := range fields {
		switch key {
		case "status":
			e.Status = value.(string)
		case "resolved_at":
			if value == nil {
				e.ResolvedAt = nil
			} else {
				e.ResolvedAt = value.(*time.Time)
			}
		case "resolution_notes":
			e.ResolutionNotes = asStringPtr(value)
		}
	}
	copied := *e
	return &copied, nil
}

func (r *fakeEscalationRepo) List(filter models.EscalationFilter) ([]models.Escalation, error) {
	var matched []models.Escalation
	for _, e := range r.items {
		if filter.Team != "" && e.Team != filter.Team {
			continue
		}
		if filter.Priority != "" && e.Priority != filter.Priority {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		matched = append(matched, *e)
	}

	sort.Slice(matched, func(i, j int) bool {
		si, sj := models.PrioritySeverity(matched[i].Priority), models.PrioritySeverity(matched[j].Priority)
		if si != sj {
			return si > sj
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	return matched, nil
}

func (r *fakeEscalationRepo) ListSince(since time.Time) ([]models.Escalation, error) {
	var matched []models.Escalation
	for _, e := range r.items {
		if !e.CreatedAt.Before(since) {
			matched = append(matched, *e)
		}
	}
	return matched, nil
}

func asStringPtr(value interface{}) *string {
	if value == nil {
		return nil
	}
	if s, ok := value.(*string); ok {
		return s
	}
	str := value.(string)
	return &str
}

// fakeMetricsCache records cached reports and invalidations.
type fakeMetricsCache struct {
	reports       map[int]*models.MetricsReport
	invalidations int
}

func newFakeMetricsCache() *fakeMetricsCache {
	return &fakeMetricsCache{reports: map[int]*models.MetricsReport{}}
}

func (c *fakeMetricsCache) CacheMetricsReport(_ context.Context, rangeDays int, report *models.MetricsReport, _ time.Duration) error {
	c.reports[rangeDays] = report
	return nil
}

func (c *fakeMetricsCache) GetCachedMetricsReport(_ context.Context, rangeDays int) (*models.MetricsReport, error) {
	report, ok := c.reports[rangeDays]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return report, nil
}

func (c *fakeMetricsCache) InvalidateMetricsCache(_ context.Context) error {
	c.reports = map[int]*models.MetricsReport{}
	c.invalidations++
	return nil
}

func newTestRepos() (*fakeFeedbackRepo, *fakeEscalationRepo, *repository.RepositoryManager) {
	feedbackRepo := newFakeFeedbackRepo()
	escalationRepo := newFakeEscalationRepo(feedbackRepo)
	manager := &repository.RepositoryManager{
		Feedback:   feedbackRepo,
		Escalation: escalationRepo,
	}
	return feedbackRepo, escalationRepo, manager
}
