// backend/internal/services/metrics.go
package services

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/answerdesk/triage/backend/internal/models"
	"github.com/answerdesk/triage/backend/internal/repository"
	"github.com/sirupsen/logrus"
)

// metricsCacheTTL bounds staleness between the explicit invalidations
// that every write performs.
const metricsCacheTTL = time.Minute

// MetricsCache is the slice of the redis cache the services need.
type MetricsCache interface {
	CacheMetricsReport(ctx context.Context, rangeDays int, report *models.MetricsReport, expiration time.Duration) error
	GetCachedMetricsReport(ctx context.Context, rangeDays int) (*models.MetricsReport, error)
	InvalidateMetricsCache(ctx context.Context) error
}

// MetricsService derives windowed quality metrics from feedback and
// escalation history. Every report is recomputed from the stored
// records; the cache in front is transparent because writes invalidate.
type MetricsService struct {
	repoManager      *repository.RepositoryManager
	cache            MetricsCache
	logger           *logrus.Logger
	defaultRangeDays int
}

func NewMetricsService(
	repoManager *repository.RepositoryManager,
	cache MetricsCache,
	logger *logrus.Logger,
	defaultRangeDays int,
) *MetricsService {
	return &MetricsService{
		repoManager:      repoManager,
		cache:            cache,
		logger:           logger,
		defaultRangeDays: defaultRangeDays,
	}
}

// ParseRange interprets the raw ?range= value as a day count, falling
// back to the configured default for missing or unusable values.
func (s *MetricsService) ParseRange(raw string) int {
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return n
	}
	return s.defaultRangeDays
}

// Report computes the metrics for the trailing rangeDays window.
func (s *MetricsService) Report(ctx context.Context, rangeDays int) (*models.MetricsReport, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetCachedMetricsReport(ctx, rangeDays); err == nil {
			return cached, nil
		}
	}

	since := time.Now().UTC().AddDate(0, 0, -rangeDays)

	feedback, err := s.repoManager.Feedback.ListSince(since)
	if err != nil {
		return nil, err
	}

	escalations, err := s.repoManager.Escalation.ListSince(since)
	if err != nil {
		return nil, err
	}

	report := buildReport(rangeDays, feedback, escalations)

	if s.cache != nil {
		if err := s.cache.CacheMetricsReport(ctx, rangeDays, report, metricsCacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache metrics report")
		}
	}

	return report, nil
}

func buildReport(rangeDays int, feedback []models.Feedback, escalations []models.Escalation) *models.MetricsReport {
	report := &models.MetricsReport{
		RangeDays:   rangeDays,
		IssuesByTag: map[string]int{},
		StatusCounts: map[string]int{
			models.FeedbackStatusOpen:      0,
			models.FeedbackStatusEscalated: 0,
			models.FeedbackStatusClosed:    0,
		},
		EscalationsByTeam: map[string]int{
			models.TeamEngineering: 0,
			models.TeamEditorial:   0,
		},
		EscalationsByPriority: map[string]int{
			models.PriorityCritical: 0,
			models.PriorityHigh:     0,
			models.PriorityMedium:   0,
			models.PriorityLow:      0,
		},
	}

	report.TotalFeedback = len(feedback)
	for _, f := range feedback {
		if !f.Rating {
			report.ThumbsDown++
		}
		if f.Tag != nil {
			report.IssuesByTag[*f.Tag]++
		}
		report.StatusCounts[f.Status]++
	}

	if report.TotalFeedback > 0 {
		rate := float64(report.ThumbsDown) / float64(report.TotalFeedback) * 100
		report.ThumbsDownRate = math.Round(rate*10) / 10
	}

	var resolutionDays float64
	for _, e := range escalations {
		report.EscalationsByTeam[e.Team]++
		report.EscalationsByPriority[e.Priority]++

		if e.Status == models.EscalationStatusOpen {
			report.OpenEscalations++
		} else {
			report.ClosedEscalations++
		}

		if e.ResolvedAt != nil {
			report.ResolvedCount++
			resolutionDays += e.ResolvedAt.Sub(e.CreatedAt).Hours() / 24
		}
	}

	if report.ResolvedCount > 0 {
		report.AvgResolutionTimeDays = resolutionDays / float64(report.ResolvedCount)
	}

	return report
}
