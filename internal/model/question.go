package model

import "strings"

type QuestionType string

const (
	QuestionMCQ         QuestionType = "mcq"
	QuestionTrueFalse   QuestionType = "true_false"
	QuestionShortAnswer QuestionType = "short_answer"
)

const MCQOptionCount = 4

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMCQ, QuestionTrueFalse, QuestionShortAnswer:
		return true
	}
	return false
}

// AutoGradable short_answer 为自由文本，不参与自动评分
func (t QuestionType) AutoGradable() bool {
	return t == QuestionMCQ || t == QuestionTrueFalse
}

// swagger:model Question
type Question struct {
	Type          QuestionType `json:"type"`
	Text          string       `json:"text"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correctAnswer"`
	Points        int          `json:"points"`
}

func NewQuestion() Question {
	return Question{
		Type:    QuestionMCQ,
		Options: make([]string, MCQOptionCount),
		Points:  1,
	}
}

func (q Question) Clone() Question {
	if q.Options != nil {
		q.Options = append([]string(nil), q.Options...)
	}
	return q
}

func (q Question) IsCorrect(answer string) bool {
	switch q.Type {
	case QuestionMCQ:
		return answer != "" && answer == q.CorrectAnswer
	case QuestionTrueFalse:
		return strings.EqualFold(strings.TrimSpace(answer), q.CorrectAnswer)
	}
	return false
}

// swagger:model RubricItem
type RubricItem struct {
	Criterion string `json:"criterion"`
	Weight    int    `json:"weight"`
}

func CloneQuestions(qs []Question) []Question {
	if qs == nil {
		return []Question{}
	}
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}

func CloneRubric(items []RubricItem) []RubricItem {
	if items == nil {
		return []RubricItem{}
	}
	out := make([]RubricItem, len(items))
	copy(out, items)
	return out
}
