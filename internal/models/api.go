package models

// EscalationCreateRequest is the body of POST /api/escalations.
type EscalationCreateRequest struct {
	FeedbackID      string `json:"feedback_id"`
	Team            string `json:"team"`
	Priority        string `json:"priority"`
	Summary         string `json:"summary"`
	Details         string `json:"details"`
	SuggestedAction string `json:"suggested_action"`
}

// EscalationUpdateRequest is the body of PATCH /api/escalations/:id.
// Pointer fields distinguish "absent" from "set to empty".
type EscalationUpdateRequest struct {
	Status          *string `json:"status"`
	ResolutionNotes *string `json:"resolution_notes"`
}

// FeedbackUpdateRequest is the body of PATCH /api/feedback/:id.
type FeedbackUpdateRequest struct {
	Tag     *string `json:"tag"`
	PMNotes *string `json:"pm_notes"`
	Status  *string `json:"status"`
}

// FeedbackPage is one page of a feedback listing.
type FeedbackPage struct {
	Items      []Feedback `json:"items"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalCount int64      `json:"total_count"`
	TotalPages int        `json:"total_pages"`
}

// MetricsReport is the windowed quality metrics payload.
type MetricsReport struct {
	RangeDays             int            `json:"range_days"`
	TotalFeedback         int            `json:"total_feedback"`
	ThumbsDown            int            `json:"thumbs_down"`
	ThumbsDownRate        float64        `json:"thumbs_down_rate"`
	IssuesByTag           map[string]int `json:"issues_by_tag"`
	StatusCounts          map[string]int `json:"status_counts"`
	EscalationsByTeam     map[string]int `json:"escalations_by_team"`
	EscalationsByPriority map[string]int `json:"escalations_by_priority"`
	OpenEscalations       int            `json:"open_escalations"`
	ClosedEscalations     int            `json:"closed_escalations"`
	ResolvedCount         int            `json:"resolved_count"`
	AvgResolutionTimeDays float64        `json:"avg_resolution_time_days"`
}
