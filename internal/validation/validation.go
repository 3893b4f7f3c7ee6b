// Pure input validation for the triage API. Every function either
// returns a normalized value or a *errs.ValidationError naming the
// offending field; nothing here touches storage.
package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/answerdesk/triage/backend/internal/errs"
	"github.com/answerdesk/triage/backend/internal/models"
)

const (
	maxSummaryLen         = 100
	maxDetailsLen         = 500
	maxSuggestedActionLen = 200
	maxPMNotesLen         = 255
)

// EscalationDraft is a validated, normalized escalation create input.
type EscalationDraft struct {
	FeedbackID      string
	Team            string
	Priority        string
	Summary         string
	Details         *string
	SuggestedAction *string
}

// EscalationUpdate is a validated escalation patch. SetX flags mark
// which fields the request carried.
type EscalationUpdate struct {
	SetStatus          bool
	Status             string
	SetResolutionNotes bool
	ResolutionNotes    *string
}

// FeedbackUpdate is a validated feedback patch. A present field with a
// nil pointer means "clear".
type FeedbackUpdate struct {
	SetTag     bool
	Tag        *string
	SetPMNotes bool
	PMNotes    *string
	SetStatus  bool
	Status     string
}

// optional trims s and normalizes empty to absent.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// EscalationCreate validates the body of POST /api/escalations.
func EscalationCreate(req models.EscalationCreateRequest) (*EscalationDraft, error) {
	if strings.TrimSpace(req.FeedbackID) == "" {
		return nil, errs.NewValidation("feedback_id", "is required")
	}

	if !models.ValidTeam(req.Team) {
		return nil, errs.NewValidation("team", "must be engineering or editorial")
	}

	if !models.ValidPriority(req.Priority) {
		return nil, errs.NewValidation("priority", "must be critical, high, medium or low")
	}

	summary := strings.TrimSpace(req.Summary)
	if summary == "" {
		return nil, errs.NewValidation("summary", "is required")
	}
	if utf8.RuneCountInString(summary) > maxSummaryLen {
		return nil, errs.NewValidation("summary", "must be 100 characters or less")
	}

	details := optional(req.Details)
	if details != nil && utf8.RuneCountInString(*details) > maxDetailsLen {
		return nil, errs.NewValidation("details", "must be 500 characters or less")
	}

	suggested := optional(req.SuggestedAction)
	if suggested != nil && utf8.RuneCountInString(*suggested) > maxSuggestedActionLen {
		return nil, errs.NewValidation("suggested_action", "must be 200 characters or less")
	}

	return &EscalationDraft{
		FeedbackID:      strings.TrimSpace(req.FeedbackID),
		Team:            req.Team,
		Priority:        req.Priority,
		Summary:         summary,
		Details:         details,
		SuggestedAction: suggested,
	}, nil
}

// EscalationPatch validates the body of PATCH /api/escalations/:id.
func EscalationPatch(req models.EscalationUpdateRequest) (*EscalationUpdate, error) {
	update := &EscalationUpdate{}

	if req.Status != nil {
		if !models.ValidEscalationStatus(*req.Status) {
			return nil, errs.NewValidation("status", "must be open or closed")
		}
		update.SetStatus = true
		update.Status = *req.Status
	}

	if req.ResolutionNotes != nil {
		update.SetResolutionNotes = true
		update.ResolutionNotes = optional(*req.ResolutionNotes)
	}

	return update, nil
}

// FeedbackPatch validates the body of PATCH /api/feedback/:id. An empty
// string for tag or pm_notes clears the field.
func FeedbackPatch(req models.FeedbackUpdateRequest) (*FeedbackUpdate, error) {
	update := &FeedbackUpdate{}

	if req.Tag != nil {
		tag := optional(*req.Tag)
		if tag != nil && !models.ValidTag(*tag) {
			return nil, errs.NewValidation("tag", "is not a recognized tag")
		}
		update.SetTag = true
		update.Tag = tag
	}

	if req.PMNotes != nil {
		notes := optional(*req.PMNotes)
		if notes != nil && utf8.RuneCountInString(*notes) > maxPMNotesLen {
			return nil, errs.NewValidation("pm_notes", "must be 255 characters or less")
		}
		update.SetPMNotes = true
		update.PMNotes = notes
	}

	if req.Status != nil {
		if !models.ValidFeedbackStatus(*req.Status) {
			return nil, errs.NewValidation("status", "must be open, escalated or closed")
		}
		update.SetStatus = true
		update.Status = *req.Status
	}

	return update, nil
}
