package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/answerdesk/triage/backend/internal/errs"
	"github.com/answerdesk/triage/backend/internal/models"
	"github.com/answerdesk/triage/backend/internal/repository"
	"github.com/answerdesk/triage/backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// envelope mirrors the JSON response wrapper for decoding in tests.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type memFeedbackRepo struct {
	items map[string]*models.Feedback
}

func (r *memFeedbackRepo) Create(f *models.Feedback) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	if f.Status == "" {
		f.Status = models.FeedbackStatusOpen
	}
	r.items[f.ID] = f
	return nil
}

func (r *memFeedbackRepo) GetByID(id string) (*models.Feedback, error) {
	f, ok := r.items[id]
	if !ok {
		return nil, errs.NewNotFound("feedback", id)
	}
	copied := *f
	return &copied, nil
}

func (r *memFeedbackRepo) UpdateFields(id string, fields map[string]interface{}) (*models.Feedback, error) {
	f, ok := r.items[id]
	if !ok {
		return nil, errs.NewNotFound("feedback", id)
	}
	for key, value := range fields {
		switch key {
		case "status":
			f.Status = value.(string)
		case "tag":
			f.Tag = toStringPtr(value)
		case "pm_notes":
			f.PMNotes = toStringPtr(value)
		}
	}
	copied := *f
	return &copied, nil
}

func (r *memFeedbackRepo) List(filter models.FeedbackFilter) ([]models.Feedback, int64, error) {
	var matched []models.Feedback
	for _, f := range r.items {
		if filter.Rating != nil && f.Rating != *filter.Rating {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
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

func (r *memFeedbackRepo) ListSince(since time.Time) ([]models.Feedback, error) {
	var matched []models.Feedback
	for _, f := range r.items {
		if !f.CreatedAt.Before(since) {
			matched = append(matched, *f)
		}
	}
	return matched, nil
}

type memEscalationRepo struct {
	items map[string]*models.Escalation
}

func (r *memEscalationRepo) Create(e *models.Escalation) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	r.items[e.ID] = e
	return nil
}

func (r *memEscalationRepo) GetByID(id string) (*models.Escalation, error) {
	e, ok := r.items[id]
	if !ok {
		return nil, errs.NewNotFound("escalation", id)
	}
	copied := *e
	return &copied, nil
}

func (r *memEscalationRepo) GetByIDWithFeedback(id string) (*models.Escalation, error) {
	return r.GetByID(id)
}

func (r *memEscalationRepo) UpdateFields(id string, fields map[string]interface{}) (*models.Escalation, error) {
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
			e.ResolutionNotes = toStringPtr(value)
		}
	}
	copied := *e
	return &copied, nil
}

func (r *memEscalationRepo) List(filter models.EscalationFilter) ([]models.Escalation, error) {
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

func (r *memEscalationRepo) ListSince(since time.Time) ([]models.Escalation, error) {
	var matched []models.Escalation
	for _, e := range r.items {
		if !e.CreatedAt.Before(since) {
			matched = append(matched, *e)
		}
	}
	return matched, nil
}

func toStringPtr(value interface{}) *string {
	if value == nil {
		return nil
	}
	if s, ok := value.(*string); ok {
		return s
	}
	str := value.(string)
	return &str
}

type testEnv struct {
	router      *gin.Engine
	feedback    *memFeedbackRepo
	escalations *memEscalationRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	feedbackRepo := &memFeedbackRepo{items: map[string]*models.Feedback{}}
	escalationRepo := &memEscalationRepo{items: map[string]*models.Escalation{}}
	repos := &repository.RepositoryManager{
		Feedback:   feedbackRepo,
		Escalation: escalationRepo,
	}

	logger := logrus.New()
	feedbackService := services.NewFeedbackService(repos, nil, logger)
	escalationService := services.NewEscalationService(repos, nil, logger)
	metricsService := services.NewMetricsService(repos, nil, logger, 30)

	feedbackHandler := NewFeedbackHandler(feedbackService, logger)
	escalationHandler := NewEscalationHandler(escalationService, logger)
	metricsHandler := NewMetricsHandler(metricsService, logger)

	router := gin.New()
	api := router.Group("/api")
	{
		api.GET("/feedback", feedbackHandler.HandleList)
		api.GET("/feedback/:id", feedbackHandler.HandleGet)
		api.PATCH("/feedback/:id", feedbackHandler.HandleUpdate)

		api.POST("/escalations", escalationHandler.HandleCreate)
		api.GET("/escalations", escalationHandler.HandleList)
		api.GET("/escalations/:id", escalationHandler.HandleGet)
		api.PATCH("/escalations/:id", escalationHandler.HandleUpdate)

		api.GET("/metrics", metricsHandler.HandleReport)
	}

	return &testEnv{router: router, feedback: feedbackRepo, escalations: escalationRepo}
}

func (env *testEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	env.router.ServeHTTP(recorder, req)

	var resp envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	return recorder, resp
}

func (env *testEnv) seedFeedback(t *testing.T, rating bool) *models.Feedback {
	t.Helper()
	feedback := &models.Feedback{
		Query:  "How do JavaScript closures work?",
		Answer: "They capture their lexical scope.",
		Rating: rating,
	}
	require.NoError(t, env.feedback.Create(feedback))
	return feedback
}
