package model

import (
	"time"

	"gorm.io/datatypes"
)

type AssessmentType string

const (
	AssessmentQuiz              AssessmentType = "quiz"
	AssessmentAssignment        AssessmentType = "assignment"
	AssessmentPeer              AssessmentType = "peer_assessment"
	AssessmentCertificationExam AssessmentType = "certification_exam"
)

var AssessmentTypes = []AssessmentType{
	AssessmentQuiz,
	AssessmentAssignment,
	AssessmentPeer,
	AssessmentCertificationExam,
}

func (t AssessmentType) Valid() bool {
	for _, v := range AssessmentTypes {
		if v == t {
			return true
		}
	}
	return false
}

func (t AssessmentType) IsQuiz() bool {
	return t == AssessmentQuiz
}

// AssessmentStatus 为自由字段，不做状态流转校验
type AssessmentStatus string

const (
	StatusDraft     AssessmentStatus = "draft"
	StatusPublished AssessmentStatus = "published"
	StatusActive    AssessmentStatus = "active"
	StatusInactive  AssessmentStatus = "inactive"
)

var AssessmentStatuses = []AssessmentStatus{StatusDraft, StatusPublished, StatusActive, StatusInactive}

func (s AssessmentStatus) Valid() bool {
	for _, v := range AssessmentStatuses {
		if v == s {
			return true
		}
	}
	return false
}

const (
	DefaultPassingScore = 70
	DefaultMaxAttempts  = 1
	DefaultTimeLimit    = 30
)

// swagger:model Assessment
type Assessment struct {
	BaseModel
	Title              string                          `gorm:"size:255;not null" json:"title"`
	Description        string                          `gorm:"type:text" json:"description"`
	AssessmentType     AssessmentType                  `gorm:"size:32;not null" json:"assessment_type"`
	Status             AssessmentStatus                `gorm:"size:20;not null;index" json:"status"`
	PassingScore       int                             `json:"passing_score"`
	MaxAttempts        int                             `json:"max_attempts"`
	TimeLimit          *int                            `json:"time_limit"` // Minutes
	ShuffleQuestions   bool                            `json:"shuffle_questions"`
	ShowCorrectAnswers bool                            `json:"show_correct_answers"`
	DueDate            *time.Time                      `json:"due_date"`
	CourseID           uint                            `gorm:"index" json:"course"`
	Questions          datatypes.JSONSlice[Question]   `json:"questions"`
	Rubric             datatypes.JSONSlice[RubricItem] `json:"rubric"`

	Submissions      []Submission `gorm:"foreignKey:AssessmentID" json:"submissions,omitempty"`
	SubmissionsCount int64        `gorm:"-" json:"submissions_count"`
	GradedCount      int64        `gorm:"-" json:"graded_count"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// ApplyDefaults fills missing optional fields. Missing values are never errors.
// PassingScore is left alone: 0 is a valid score, and callers seed 70 themselves.
func (a *Assessment) ApplyDefaults() {
	if a.AssessmentType == "" {
		a.AssessmentType = AssessmentQuiz
	}
	if a.Status == "" {
		a.Status = StatusDraft
	}
	if a.MaxAttempts < 1 {
		a.MaxAttempts = DefaultMaxAttempts
	}
	if a.Questions == nil {
		a.Questions = datatypes.JSONSlice[Question]{}
	}
	if a.Rubric == nil {
		a.Rubric = datatypes.JSONSlice[RubricItem]{}
	}
}

// Content is either QuizContent or GradedWorkContent, chosen by assessment type.
type Content interface {
	isContent()
}

type QuizContent struct {
	Questions []Question
}

type GradedWorkContent struct {
	Rubric []RubricItem
}

func (QuizContent) isContent()       {}
func (GradedWorkContent) isContent() {}

func ContentFor(t AssessmentType, questions []Question, rubric []RubricItem) Content {
	if t.IsQuiz() {
		return QuizContent{Questions: CloneQuestions(questions)}
	}
	return GradedWorkContent{Rubric: CloneRubric(rubric)}
}

func (a *Assessment) Content() Content {
	return ContentFor(a.AssessmentType, a.Questions, a.Rubric)
}

// SetContent stores c and clears the collection that does not apply to it.
func (a *Assessment) SetContent(c Content) {
	switch v := c.(type) {
	case QuizContent:
		a.Questions = datatypes.NewJSONSlice(CloneQuestions(v.Questions))
		a.Rubric = datatypes.JSONSlice[RubricItem]{}
	case GradedWorkContent:
		a.Questions = datatypes.JSONSlice[Question]{}
		a.Rubric = datatypes.NewJSONSlice(CloneRubric(v.Rubric))
	}
}

func (a *Assessment) FirstSubmission() (*Submission, bool) {
	if len(a.Submissions) == 0 {
		return nil, false
	}
	return &a.Submissions[0], true
}
