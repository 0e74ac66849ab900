package model

import (
	"time"

	"gorm.io/datatypes"
)

type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionGraded    SubmissionStatus = "graded"
	SubmissionLate      SubmissionStatus = "late"
)

// SubmissionAnswer 按题目下标作答
type SubmissionAnswer struct {
	Question int    `json:"question"`
	Answer   string `json:"answer"`
}

// swagger:model Submission
type Submission struct {
	BaseModel
	AssessmentID uint                                  `gorm:"index;not null" json:"assessment"`
	UserID       uint                                  `gorm:"index" json:"user"`
	SubmittedAt  *time.Time                            `json:"submitted_at"`
	Status       SubmissionStatus                      `gorm:"size:20;not null" json:"status"`
	Score        *float64                              `json:"score"` // 0-100
	Feedback     *string                               `gorm:"type:text" json:"feedback"`
	Answers      datatypes.JSONSlice[SubmissionAnswer] `json:"answers"`
	GradedAt     *time.Time                            `json:"graded_at,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

func (s *Submission) IsGraded() bool {
	return s.Status == SubmissionGraded
}
