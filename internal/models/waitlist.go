package models

// ============================================================================
// WAITLIST
// ============================================================================

type WaitlistEntry struct {
	BaseModel
	Email  string `gorm:"uniqueIndex;not null" json:"email"`
	Source string `json:"source,omitempty"`
}

func (WaitlistEntry) TableName() string {
	return "waitlist_entries"
}
