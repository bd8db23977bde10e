package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
)

type ApplicationStatus string

const (
	StatusDraft         ApplicationStatus = "draft"
	StatusPendingReview ApplicationStatus = "pending_review"
	StatusApproved      ApplicationStatus = "approved"
	StatusSubmitted     ApplicationStatus = "submitted"
	StatusViewed        ApplicationStatus = "viewed"
	StatusInProgress    ApplicationStatus = "in_progress"
	StatusOffer         ApplicationStatus = "offer"
	StatusRejected      ApplicationStatus = "rejected"
	StatusWithdrawn     ApplicationStatus = "withdrawn"
)

// ApplicationStatuses lists every status in lifecycle order.
var ApplicationStatuses = []ApplicationStatus{
	StatusDraft,
	StatusPendingReview,
	StatusApproved,
	StatusSubmitted,
	StatusViewed,
	StatusInProgress,
	StatusOffer,
	StatusRejected,
	StatusWithdrawn,
}

func (s ApplicationStatus) Valid() bool {
	for _, known := range ApplicationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// StatusChange is one immutable entry in an application's history log.
type StatusChange struct {
	Status         ApplicationStatus `json:"status"`
	PreviousStatus ApplicationStatus `json:"previous_status"`
	Timestamp      time.Time         `json:"timestamp"`
	Notes          string            `json:"notes,omitempty"`
}

// StatusHistory is an append-only sequence of transitions, stored as JSONB.
type StatusHistory []StatusChange

func (h StatusHistory) Value() (driver.Value, error) {
	if h == nil {
		h = StatusHistory{}
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (h *StatusHistory) Scan(src any) error {
	if src == nil {
		*h = StatusHistory{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("status history: unsupported source type")
	}
	if len(data) == 0 {
		*h = StatusHistory{}
		return nil
	}
	return json.Unmarshal(data, h)
}

func (StatusHistory) GormDataType() string { return "jsonb" }

// ApplicationDraft is an AI-generated cover-letter proposal. It is mutated
// in place by regeneration until approved, then frozen.
type ApplicationDraft struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"index;not null" json:"user_id"`
	JobID  uint `gorm:"index;not null" json:"job_id"`

	CoverLetter string `gorm:"type:text" json:"cover_letter"`
	Tone        string `gorm:"size:50" json:"tone"`

	Answers datatypes.JSON `gorm:"type:jsonb" json:"answers"`

	ModelUsed string `gorm:"size:100" json:"model_used"`
	// Accumulated across every revision of this draft.
	PromptTokens     int `gorm:"default:0" json:"prompt_tokens"`
	CompletionTokens int `gorm:"default:0" json:"completion_tokens"`

	UserFeedback  string `gorm:"type:text" json:"user_feedback"`
	RevisionCount int    `gorm:"default:0" json:"revision_count"`

	IsApproved bool       `gorm:"default:false" json:"is_approved"`
	ApprovedAt *time.Time `json:"approved_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

func (ApplicationDraft) TableName() string { return "application_drafts" }

func (d *ApplicationDraft) Expired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && now.After(d.ExpiresAt)
}

// Application is the durable record of a job application, unique per
// (user, job). Re-applying requires withdrawing first.
type Application struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID  uint  `gorm:"uniqueIndex:uq_application_user_job" json:"user_id"`
	JobID   uint  `gorm:"uniqueIndex:uq_application_user_job" json:"job_id"`
	DraftID *uint `json:"draft_id"`

	CoverLetter   string         `gorm:"type:text" json:"cover_letter"`
	ResumeVersion string         `gorm:"size:255" json:"resume_version"`
	Answers       datatypes.JSON `gorm:"type:jsonb" json:"answers"`

	Status        ApplicationStatus `gorm:"size:20;default:'approved';index" json:"status"`
	StatusHistory StatusHistory     `gorm:"type:jsonb" json:"status_history"`

	SubmittedAt           *time.Time `json:"submitted_at"`
	SubmissionMethod      string     `gorm:"size:50" json:"submission_method"`
	ExternalApplicationID string     `gorm:"size:255" json:"external_application_id"`

	FollowUpDate *time.Time `json:"follow_up_date"`
	FollowUpSent bool       `gorm:"default:false" json:"follow_up_sent"`

	UserNotes       string `gorm:"type:text" json:"user_notes"`
	RejectionReason string `gorm:"type:text" json:"rejection_reason"`

	ResponseReceivedAt   *time.Time `json:"response_received_at"`
	InterviewScheduledAt *time.Time `json:"interview_scheduled_at"`
}

func (Application) TableName() string { return "applications" }
