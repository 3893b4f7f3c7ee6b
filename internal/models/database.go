package models

// GORM models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feedback status values
const (
	FeedbackStatusOpen      = "open"
	FeedbackStatusEscalated = "escalated"
	FeedbackStatusClosed    = "closed"
)

// Feedback tag values
const (
	TagHallucination           = "hallucination"
	TagOutdatedContent         = "outdated_content"
	TagWrongContext            = "wrong_context"
	TagPoorUX                  = "poor_ux"
	TagSourceMisinterpretation = "source_misinterpretation"
	TagCorrectAnswer           = "correct_answer"
)

// Escalation team values
const (
	TeamEngineering = "engineering"
	TeamEditorial   = "editorial"
)

// Escalation priority values
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// Escalation status values
const (
	EscalationStatusOpen   = "open"
	EscalationStatusClosed = "closed"
)

// Source is a single cited source on an AI-generated answer
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type,omitempty"`
}

// SourceList stores the ordered source citations as a jsonb column
type SourceList []Source

func (s SourceList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sources: %w", err)
	}
	return string(data), nil
}

func (s *SourceList) Scan(value interface{}) error {
	if value == nil {
		*s = SourceList{}
		return nil
	}

	switch v := value.(type) {
	case string:
		return json.Unmarshal([]byte(v), s)
	case []byte:
		return json.Unmarshal(v, s)
	default:
		return fmt.Errorf("cannot scan %T into SourceList", value)
	}
}

// Feedback represents one user rating event on an AI-generated answer.
// Content fields are immutable after ingestion; only the triage fields
// (status, tag, pm_notes) change afterwards.
type Feedback struct {
	ID          string     `json:"id" gorm:"type:uuid;primaryKey"`
	Query       string     `json:"query" gorm:"column:query;type:text;not null"`
	Answer      string     `json:"answer" gorm:"type:text;not null"`
	Sources     SourceList `json:"sources" gorm:"type:jsonb"`
	Rating      bool       `json:"rating"` // true = thumbs up, false = thumbs down
	UserComment *string    `json:"user_comment"`
	Status      string     `json:"status" gorm:"not null;default:'open';check:status IN ('open','escalated','closed')"`
	Tag         *string    `json:"tag"`
	PMNotes     *string    `json:"pm_notes" gorm:"column:pm_notes;size:255"`
	CreatedAt   time.Time  `json:"created_at"`

	// Associations
	Escalations []Escalation `json:"escalations,omitempty" gorm:"foreignKey:FeedbackID"`
}

// Escalation represents one issue routed to a team in response to
// problematic feedback. feedback_id is immutable after creation.
type Escalation struct {
	ID              string     `json:"id" gorm:"type:uuid;primaryKey"`
	FeedbackID      string     `json:"feedback_id" gorm:"type:uuid;not null"`
	Team            string     `json:"team" gorm:"not null;check:team IN ('engineering','editorial')"`
	Priority        string     `json:"priority" gorm:"not null;check:priority IN ('critical','high','medium','low')"`
	Summary         string     `json:"summary" gorm:"size:100;not null"`
	Details         *string    `json:"details" gorm:"size:500"`
	SuggestedAction *string    `json:"suggested_action" gorm:"size:200"`
	Status          string     `json:"status" gorm:"not null;default:'open';check:status IN ('open','closed')"`
	ResolutionNotes *string    `json:"resolution_notes"`
	CreatedAt       time.Time  `json:"created_at"`
	ResolvedAt      *time.Time `json:"resolved_at"`

	// Associations
	Feedback *Feedback `json:"feedback,omitempty" gorm:"foreignKey:FeedbackID"`
}

// TableName methods for custom table names
func (Feedback) TableName() string   { return "feedback" }
func (Escalation) TableName() string { return "escalations" }

// GORM hooks
func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

func (e *Escalation) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// ValidFeedbackStatus reports whether s is a recognized feedback status.
func ValidFeedbackStatus(s string) bool {
	switch s {
	case FeedbackStatusOpen, FeedbackStatusEscalated, FeedbackStatusClosed:
		return true
	}
	return false
}

// ValidTag reports whether t is a recognized feedback tag.
func ValidTag(t string) bool {
	switch t {
	case TagHallucination, TagOutdatedContent, TagWrongContext,
		TagPoorUX, TagSourceMisinterpretation, TagCorrectAnswer:
		return true
	}
	return false
}

// ValidTeam reports whether t is a recognized escalation team.
func ValidTeam(t string) bool {
	switch t {
	case TeamEngineering, TeamEditorial:
		return true
	}
	return false
}

// ValidPriority reports whether p is a recognized escalation priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ValidEscalationStatus reports whether s is a recognized escalation status.
func ValidEscalationStatus(s string) bool {
	switch s {
	case EscalationStatusOpen, EscalationStatusClosed:
		return true
	}
	return false
}

// PrioritySeverity maps a priority to its sort rank. Higher means more
// urgent. Unknown priorities rank below low.
func PrioritySeverity(p string) int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// TagLabel returns the display label for a feedback tag.
func TagLabel(t string) string {
	switch t {
	case TagHallucination:
		return "Hallucination"
	case TagOutdatedContent:
		return "Outdated Content"
	case TagWrongContext:
		return "Wrong Context"
	case TagPoorUX:
		return "Poor UX"
	case TagSourceMisinterpretation:
		return "Source Misinterpretation"
	case TagCorrectAnswer:
		return "Correct Answer"
	}
	return t
}

// TeamLabel returns the display label for an escalation team.
func TeamLabel(t string) string {
	switch t {
	case TeamEngineering:
		return "Engineering"
	case TeamEditorial:
		return "Editorial"
	}
	return t
}

// FeedbackPageSize is the fixed page size for feedback listings.
const FeedbackPageSize = 50

// FeedbackFilter narrows a feedback listing. Page is 1-indexed; the
// page size is fixed at FeedbackPageSize.
type FeedbackFilter struct {
	Rating *bool
	Status string
	Search string
	Page   int
}

// EscalationFilter narrows an escalation listing. Empty fields mean
// no filter.
type EscalationFilter struct {
	Team     string
	Priority string
	Status   string
}

// Database interfaces for repository pattern
type FeedbackRepository interface {
	Create(feedback *Feedback) error
	GetByID(id string) (*Feedback, error)
	UpdateFields(id string, fields map[string]interface{}) (*Feedback, error)
	List(filter FeedbackFilter) ([]Feedback, int64, error)
	ListSince(since time.Time) ([]Feedback, error)
}

type EscalationRepository interface {
	Create(escalation *Escalation) error
	GetByID(id string) (*Escalation, error)
	GetByIDWithFeedback(id string) (*Escalation, error)
	UpdateFields(id string, fields map[string]interface{}) (*Escalation, error)
	List(filter EscalationFilter) ([]Escalation, error)
	ListSince(since time.Time) ([]Escalation, error)
}
