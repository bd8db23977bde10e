package models

import "time"

// Resume holds the extracted plain text of an uploaded résumé. Document
// parsing happens upstream; this core only reads RawText.
type Resume struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"index;not null" json:"user_id"`

	FileName string `gorm:"size:255" json:"file_name"`
	RawText  string `gorm:"type:text" json:"-"`

	IsPrimary bool `gorm:"default:false" json:"is_primary"`
	IsActive  bool `gorm:"default:true" json:"is_active"`
}

func (Resume) TableName() string { return "resumes" }
