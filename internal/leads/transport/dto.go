package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateLeadRequest is an enquiry submitted from the public site.
// CustomFields carries the profile: leadType selects the variant.
type CreateLeadRequest struct {
	FirstName      string         `json:"firstName" validate:"required,min=1,max=100"`
	LastName       string         `json:"lastName" validate:"max=100"`
	Email          string         `json:"email" validate:"required,email,max=254"`
	Phone          string         `json:"phone" validate:"omitempty,max=32"`
	CourseInterest string         `json:"courseInterest" validate:"max=200"`
	Source         string         `json:"source" validate:"max=100"`
	Message        string         `json:"message" validate:"max=2000"`
	CustomFields   map[string]any `json:"customFields"`
	Tags           []string       `json:"tags" validate:"max=20,dive,min=1,max=50"`
}

// UpdateLeadRequest replaces the editable profile of a lead.
type UpdateLeadRequest struct {
	FirstName      string         `json:"firstName" validate:"required,min=1,max=100"`
	LastName       string         `json:"lastName" validate:"max=100"`
	Phone          string         `json:"phone" validate:"omitempty,max=32"`
	CourseInterest string         `json:"courseInterest" validate:"max=200"`
	CustomFields   map[string]any `json:"customFields"`
	Tags           []string       `json:"tags" validate:"max=20,dive,min=1,max=50"`
}

// UpdateStageRequest moves a lead by hand.
type UpdateStageRequest struct {
	Stage  string `json:"stage" validate:"required,oneof=new contacted qualified nurturing converted lost"`
	Reason string `json:"reason" validate:"max=500"`
}

// LogActivityRequest records an activity against a lead from the back office.
type LogActivityRequest struct {
	Type    string         `json:"type" validate:"required,max=50"`
	Payload map[string]any `json:"payload"`
}

// TrackActivityRequest records an anonymous site or email event by address.
type TrackActivityRequest struct {
	Email   string         `json:"email" validate:"required,email,max=254"`
	Type    string         `json:"type" validate:"required,oneof=page_visit booking_attempted chat_started chat_message content_viewed content_engaged email_opened email_clicked"`
	Payload map[string]any `json:"payload"`
}

// ListLeadsRequest filters the admin list.
type ListLeadsRequest struct {
	Stage    string `form:"stage" validate:"omitempty,oneof=new contacted qualified nurturing converted lost"`
	MinScore *int   `form:"minScore" validate:"omitempty,min=0,max=100"`
	MaxScore *int   `form:"maxScore" validate:"omitempty,min=0,max=100"`
	Search   string `form:"search" validate:"max=100"`
	Tag      string `form:"tag" validate:"max=50"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// ScoreResponse is a score and its sub-scores.
type ScoreResponse struct {
	Total      int `json:"total"`
	Behavioral int `json:"behavioral"`
	Engagement int `json:"engagement"`
	Profile    int `json:"profile"`
}

// LeadResponse is a lead as shown in the back office.
type LeadResponse struct {
	ID             uuid.UUID      `json:"id"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone,omitempty"`
	CourseInterest string         `json:"courseInterest,omitempty"`
	Source         string         `json:"source,omitempty"`
	LeadType       string         `json:"leadType"`
	Stage          string         `json:"stage"`
	Score          ScoreResponse  `json:"score"`
	Temperature    string         `json:"temperature"`
	CustomFields   map[string]any `json:"customFields"`
	Tags           []string       `json:"tags"`
	LastContactAt  *time.Time     `json:"lastContactAt,omitempty"`
	LastActivityAt *time.Time     `json:"lastActivityAt,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// EnquiryResponse is returned to the public site. Created is false when the
// address already belonged to a lead and the enquiry was logged against it.
type EnquiryResponse struct {
	ID      uuid.UUID `json:"id"`
	Created bool      `json:"created"`
}

// LeadListResponse is one page of leads.
type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

// ActivityResponse is one logged activity.
type ActivityResponse struct {
	ID          uuid.UUID      `json:"id"`
	Type        string         `json:"type"`
	Payload     map[string]any `json:"payload"`
	Automated   bool           `json:"automated"`
	ScoreImpact int            `json:"scoreImpact"`
	OccurredAt  time.Time      `json:"occurredAt"`
}

// ScoreHistoryResponse is one score change.
type ScoreHistoryResponse struct {
	ID            uuid.UUID     `json:"id"`
	PreviousScore int           `json:"previousScore"`
	NewScore      int           `json:"newScore"`
	Delta         int           `json:"delta"`
	Reason        string        `json:"reason"`
	Breakdown     ScoreResponse `json:"breakdown"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// LeadHistoryResponse combines the activity log and the score trail.
type LeadHistoryResponse struct {
	Activities []ActivityResponse     `json:"activities"`
	Scores     []ScoreHistoryResponse `json:"scores"`
}

// InsightsResponse summarises a lead for follow-up.
type InsightsResponse struct {
	LeadID      uuid.UUID     `json:"leadId"`
	Stage       string        `json:"stage"`
	Score       ScoreResponse `json:"score"`
	Temperature string        `json:"temperature"`
	NextAction  string        `json:"nextAction"`
}

// StageSweepResponse reports a manually triggered sweep.
type StageSweepResponse struct {
	Applied int `json:"applied"`
}
