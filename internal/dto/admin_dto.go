package dto

// Instructor-side authoring payloads. An exam is created whole: stages with
// their questions and options in one request.

type CreateOptionDTO struct {
	OptionLetter  string `json:"option_letter" binding:"required"`
	OptionText    string `json:"option_text" binding:"required"`
	IsCorrect     bool   `json:"is_correct"`
	Misconception string `json:"misconception"`
}

type CreateQuestionDTO struct {
	QuestionText   string            `json:"question_text" binding:"required"`
	QuestionType   string            `json:"question_type" binding:"required,oneof=multiple-choice true-false short-answer"`
	CorrectAnswer  string            `json:"correct_answer"`
	CorrectAnswers []string          `json:"correct_answers"` // legacy multi-answer key; mutually exclusive with correct_answer
	Explanation    string            `json:"explanation"`
	Points         int               `json:"points" binding:"required,gt=0"`
	Options        []CreateOptionDTO `json:"options" binding:"omitempty,dive"`
}

type CreateStageDTO struct {
	Name         string              `json:"name" binding:"required"`
	Description  string              `json:"description"`
	StageOrder   int                 `json:"stage_order" binding:"required,min=1"`
	PassingScore int                 `json:"passing_score" binding:"min=0,max=100"`
	TimeLimit    int                 `json:"time_limit" binding:"required,gt=0"`
	Questions    []CreateQuestionDTO `json:"questions" binding:"omitempty,dive"`
}

type CreateExamDTO struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	IsPublished bool             `json:"is_published"`
	Stages      []CreateStageDTO `json:"stages" binding:"required,min=1,dive"`
}

// UpdateExamDTO updates exam metadata and the published flag only; stage and
// question edits on a published exam have no defined reconciliation rule.
type UpdateExamDTO struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsPublished *bool  `json:"is_published"`
}
