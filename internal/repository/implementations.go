package repository

import (
	"errors"
	"time"

	"github.com/answerdesk/triage/backend/internal/errs"
	"github.com/answerdesk/triage/backend/internal/models"
	"gorm.io/gorm"
)

// Escalations surface the most urgent, longest-waiting items first.
const escalationOrder = `CASE priority
	WHEN 'critical' THEN 4
	WHEN 'high' THEN 3
	WHEN 'medium' THEN 2
	WHEN 'low' THEN 1
	ELSE 0
END DESC, created_at ASC`

// FeedbackRepositoryImpl implements FeedbackRepository
type FeedbackRepositoryImpl struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) models.FeedbackRepository {
	return &FeedbackRepositoryImpl{db: db}
}

func (r *FeedbackRepositoryImpl) Create(feedback *models.Feedback) error {
	if err := r.db.Create(feedback).Error; err != nil {
		return errs.NewPersistence("feedback create", err)
	}
	return nil
}

func (r *FeedbackRepositoryImpl) GetByID(id string) (*models.Feedback, error) {
	var feedback models.Feedback
	err := r.db.Where("id = ?", id).First(&feedback).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("feedback", id)
	}
	if err != nil {
		return nil, errs.NewPersistence("feedback get", err)
	}
	return &feedback, nil
}

func (r *FeedbackRepositoryImpl) UpdateFields(id string, fields map[string]interface{}) (*models.Feedback, error) {
	if _, err := r.GetByID(id); err != nil {
		return nil, err
	}

	if len(fields) > 0 {
		err := r.db.Model(&models.Feedback{}).
			Where("id = ?", id).
			Updates(fields).Error
		if err != nil {
			return nil, errs.NewPersistence("feedback update", err)
		}
	}

	return r.GetByID(id)
}

func (r *FeedbackRepositoryImpl) List(filter models.FeedbackFilter) ([]models.Feedback, int64, error) {
	query := r.db.Model(&models.Feedback{})

	if filter.Rating != nil {
		query = query.Where("rating = ?", *filter.Rating)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where("query ILIKE ? OR user_comment ILIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errs.NewPersistence("feedback count", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}

	var items []models.Feedback
	err := query.Order("created_at DESC").
		Offset((page - 1) * models.FeedbackPageSize).
		Limit(models.FeedbackPageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, errs.NewPersistence("feedback list", err)
	}

	return items, total, nil
}

func (r *FeedbackRepositoryImpl) ListSince(since time.Time) ([]models.Feedback, error) {
	var items []models.Feedback
	err := r.db.Where("created_at >= ?", since).Find(&items).Error
	if err != nil {
		return nil, errs.NewPersistence("feedback list since", err)
	}
	return items, nil
}

// EscalationRepositoryImpl implements EscalationRepository
type EscalationRepositoryImpl struct {
	db *gorm.DB
}

func NewEscalationRepository(db *gorm.DB) models.EscalationRepository {
	return &EscalationRepositoryImpl{db: db}
}

func (r *EscalationRepositoryImpl) Create(escalation *models.Escalation) error {
	if err := r.db.Create(escalation).Error; err != nil {
		return errs.NewPersistence("escalation create", err)
	}
	return nil
}

func (r *EscalationRepositoryImpl) GetByID(id string) (*models.Escalation, error) {
	var escalation models.Escalation
	err := r.db.Where("id = ?", id).First(&escalation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("escalation", id)
	}
	if err != nil {
		return nil, errs.NewPersistence("escalation get", err)
	}
	return &escalation, nil
}

func (r *EscalationRepositoryImpl) GetByIDWithFeedback(id string) (*models.Escalation, error) {
	var escalation models.Escalation
	err := r.db.Preload("Feedback").Where("id = ?", id).First(&escalation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("escalation", id)
	}
	if err != nil {
		return nil, errs.NewPersistence("escalation get", err)
	}
	return &escalation, nil
}

func (r *EscalationRepositoryImpl) UpdateFields(id string, fields map[string]interface{}) (*models.Escalation, error) {
	if _, err := r.GetByID(id); err != nil {
		return nil, err
	}

	if len(fields) > 0 {
		err := r.db.Model(&models.Escalation{}).
			Where("id = ?", id).
			Updates(fields).Error
		if err != nil {
			return nil, errs.NewPersistence("escalation update", err)
		}
	}

	return r.GetByID(id)
}

func (r *EscalationRepositoryImpl) List(filter models.EscalationFilter) ([]models.Escalation, error) {
	query := r.db.Model(&models.Escalation{}).Preload("Feedback")

	if filter.Team != "" {
		query = query.Where("team = ?", filter.Team)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var items []models.Escalation
	err := query.Order(escalationOrder).Find(&items).Error
	if err != nil {
		return nil, errs.NewPersistence("escalation list", err)
	}

	return items, nil
}

func (r *EscalationRepositoryImpl) ListSince(since time.Time) ([]models.Escalation, error) {
	var items []models.Escalation
	err := r.db.Where("created_at >= ?", since).Find(&items).Error
	if err != nil {
		return nil, errs.NewPersistence("escalation list since", err)
	}
	return items, nil
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	Feedback   models.FeedbackRepository
	Escalation models.EscalationRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		Feedback:   NewFeedbackRepository(db),
		Escalation: NewEscalationRepository(db),
	}
}
