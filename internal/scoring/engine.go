// Package scoring is the single source of truth for stage scoring. It is a
// pure computation over question definitions and submitted answers; nothing
// here touches storage, and client-supplied correctness flags never reach it.
package scoring

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/medassess/stagewise/internal/model"
)

// Key is the answer key for one question, resolved at authoring time: either
// a single text value or an exact-match set (the legacy multi-answer shape).
type Key struct {
	single string
	multi  []string
}

// ParseKey decodes a correct_answer column. JSON string and JSON array are
// the authored shapes; anything else is treated as a plain-text single value
// so legacy rows keep scoring.
func ParseKey(raw []byte) Key {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return Key{}
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return Key{single: single}
	}

	var multi []string
	if err := json.Unmarshal(raw, &multi); err == nil {
		return Key{multi: multi}
	}

	return Key{single: trimmed}
}

func (k Key) IsMulti() bool { return k.multi != nil }

func (k Key) IsZero() bool { return k.single == "" && k.multi == nil }

// Values returns the key's accepted answer set, single values included.
func (k Key) Values() []string {
	if k.IsMulti() {
		return k.multi
	}
	if k.single == "" {
		return nil
	}
	return []string{k.single}
}

// Selection is what a student submitted for one question.
type Selection struct {
	values []string
}

func NewSelection(values ...string) Selection {
	clean := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			clean = append(clean, v)
		}
	}
	return Selection{values: clean}
}

// ParseSelection decodes the persisted selected_answer text: a JSON array for
// multi-answer submissions, plain text otherwise.
func ParseSelection(text string) Selection {
	if strings.HasPrefix(strings.TrimSpace(text), "[") {
		var values []string
		if err := json.Unmarshal([]byte(text), &values); err == nil {
			return NewSelection(values...)
		}
	}
	return NewSelection(text)
}

func (s Selection) IsEmpty() bool { return len(s.values) == 0 }

// Encode renders the selection in its persisted text form.
func (s Selection) Encode() string {
	if len(s.values) == 1 {
		return s.values[0]
	}
	if len(s.values) == 0 {
		return ""
	}
	raw, _ := json.Marshal(s.values)
	return string(raw)
}

// Correct reports whether a selection satisfies a key. Single keys require
// exactly one submitted value matching the key text; multi keys require set
// equality (same length, every correct value present).
func Correct(key Key, sel Selection) bool {
	if key.IsZero() || sel.IsEmpty() {
		return false
	}
	if !key.IsMulti() {
		return len(sel.values) == 1 && sel.values[0] == key.single
	}
	if len(sel.values) != len(key.multi) {
		return false
	}
	submitted := make(map[string]struct{}, len(sel.values))
	for _, v := range sel.values {
		submitted[v] = struct{}{}
	}
	for _, want := range key.multi {
		if _, ok := submitted[want]; !ok {
			return false
		}
	}
	return true
}

// Question is the slice of a question definition scoring needs.
type Question struct {
	ID     uuid.UUID
	Key    Key
	Points int
}

func FromModel(q model.Question) Question {
	return Question{
		ID:     q.QuestionID,
		Key:    ParseKey(q.CorrectAnswer),
		Points: q.Points,
	}
}

func FromModels(qs []model.Question) []Question {
	out := make([]Question, 0, len(qs))
	for _, q := range qs {
		out = append(out, FromModel(q))
	}
	return out
}

type Result struct {
	CorrectCount   int  `json:"correct_count"`
	TotalQuestions int  `json:"total_questions"`
	EarnedPoints   int  `json:"earned_points"`
	TotalPoints    int  `json:"total_points"`
	Percentage     int  `json:"percentage"`
	Passed         bool `json:"passed"`
}

// Score grades a full stage attempt. Questions missing from submitted are
// incorrect, never an error; submitted entries for unknown question ids are
// ignored. Percentage is rounded to the nearest integer and 0 for an empty or
// zero-point stage.
func Score(questions []Question, submitted map[uuid.UUID]Selection, passingScore int) Result {
	res := Result{TotalQuestions: len(questions)}

	for _, q := range questions {
		res.TotalPoints += q.Points
		sel, ok := submitted[q.ID]
		if !ok {
			continue
		}
		if Correct(q.Key, sel) {
			res.CorrectCount++
			res.EarnedPoints += q.Points
		}
	}

	if res.TotalPoints > 0 {
		res.Percentage = int(math.Round(float64(res.EarnedPoints) / float64(res.TotalPoints) * 100))
	}
	res.Passed = res.Percentage >= passingScore
	return res
}
