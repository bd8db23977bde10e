package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// UserProfile is a job seeker, keyed to the chat platform account that
// drives the bot front end.
type UserProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ChatID   int64  `gorm:"uniqueIndex;not null" json:"chat_id"`
	Username string `gorm:"size:255" json:"username"`

	FirstName string `gorm:"size:255" json:"first_name"`
	LastName  string `gorm:"size:255" json:"last_name"`
	Email     string `gorm:"size:255;index" json:"email"`

	Headline          string `gorm:"size:500" json:"headline"`
	Summary           string `gorm:"type:text" json:"summary"`
	YearsOfExperience *int   `json:"years_of_experience"`
	CurrentTitle      string `gorm:"size:255" json:"current_title"`
	CurrentCompany    string `gorm:"size:255" json:"current_company"`

	Location          string `gorm:"size:255" json:"location"`
	WillingToRelocate bool   `gorm:"default:false" json:"willing_to_relocate"`
	RemotePreference  string `gorm:"size:50" json:"remote_preference"`

	// Daily AI-call accounting, reset lazily at increment time.
	AICallsToday   int        `gorm:"default:0" json:"ai_calls_today"`
	AICallsResetAt *time.Time `json:"ai_calls_reset_at"`
	LastActiveAt   *time.Time `json:"last_active_at"`

	Preferences *Preferences `gorm:"constraint:OnDelete:CASCADE" json:"preferences,omitempty"`
	Skills      []UserSkill  `gorm:"constraint:OnDelete:CASCADE" json:"skills,omitempty"`
}

func (UserProfile) TableName() string { return "user_profiles" }

func (u *UserProfile) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return "Unknown"
	}
	return name
}

func (u *UserProfile) SkillNames() []string {
	names := make([]string, 0, len(u.Skills))
	for _, s := range u.Skills {
		names = append(names, s.Name)
	}
	return names
}

// Preferences is created alongside the profile and lives exactly as long
// as it does.
type Preferences struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	DesiredTitles     pq.StringArray `gorm:"type:text[]" json:"desired_titles"`
	DesiredIndustries pq.StringArray `gorm:"type:text[]" json:"desired_industries"`
	ExcludedCompanies pq.StringArray `gorm:"type:text[]" json:"excluded_companies"`

	MinSalary      *int   `json:"min_salary"`
	MaxSalary      *int   `json:"max_salary"`
	SalaryCurrency string `gorm:"size:3;default:'USD'" json:"salary_currency"`

	PreferredLocations pq.StringArray `gorm:"type:text[]" json:"preferred_locations"`

	JobTypes         pq.StringArray `gorm:"type:text[]" json:"job_types"`
	ExperienceLevels pq.StringArray `gorm:"type:text[]" json:"experience_levels"`

	NotificationsEnabled  bool   `gorm:"default:true" json:"notifications_enabled"`
	NotificationFrequency string `gorm:"size:50;default:'daily'" json:"notification_frequency"`

	AIMatchingStrictness     string `gorm:"size:50;default:'balanced'" json:"ai_matching_strictness"`
	AutoGenerateCoverLetters bool   `gorm:"default:true" json:"auto_generate_cover_letters"`

	CustomFilters datatypes.JSON `gorm:"type:jsonb" json:"custom_filters"`
}

func (Preferences) TableName() string { return "user_preferences" }

type UserSkill struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"index;not null" json:"user_id"`

	Name            string `gorm:"size:255;not null" json:"name"`
	Proficiency     string `gorm:"size:50" json:"proficiency"` // beginner, intermediate, expert
	YearsExperience *int   `json:"years_experience"`
	IsPrimary       bool   `gorm:"default:false" json:"is_primary"`
}

func (UserSkill) TableName() string { return "user_skills" }
