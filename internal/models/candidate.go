package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type CandidateStatus string

const (
	StatusInProgress CandidateStatus = "in_progress"
	StatusScoring    CandidateStatus = "scoring"
	StatusCompleted  CandidateStatus = "completed"
	StatusFailed     CandidateStatus = "failed"
)

// StringList stores an ordered list of strings as a JSONB column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string list: %w", err)
	}
	return string(data), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported string list column type %T", value)
	}

	if len(data) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// Candidate is one interviewed person, keyed by phone number. The
// conversation is appended turn-by-turn while the call is live and becomes
// read-only once an end decision is reached; the result fields are written
// exactly once by the scoring pipeline.
type Candidate struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Phone          string          `gorm:"type:text;uniqueIndex" json:"phone"`
	CallSID        string          `gorm:"type:text" json:"call_sid"`
	Conversation   Conversation    `gorm:"type:jsonb;default:'[]'" json:"conversation"`
	QuestionsAsked int             `gorm:"default:0" json:"questions_asked"`
	Status         CandidateStatus `gorm:"not null;default:'in_progress'" json:"status"`
	EndReason      string          `gorm:"type:text" json:"end_reason"`

	FinalScore int        `gorm:"default:0" json:"final_score"`
	Decision   string     `gorm:"type:text" json:"decision"`
	RedFlags   StringList `gorm:"type:jsonb;default:'[]'" json:"red_flags"`
	HRSummary  string     `gorm:"type:text" json:"hr_summary"`

	ErrorMessage *string   `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Candidate) TableName() string {
	return "candidates"
}
