package service

import (
	"github.com/google/uuid"

	"github.com/medassess/stagewise/internal/model"
	"github.com/medassess/stagewise/internal/scoring"
)

// stageOutcome is the derived state of one stage for one student. Nothing is
// read from a progress table: each completed session's stored answers are
// re-scored against the stage's answer key, so the scoring engine stays the
// only authority on pass/fail.
type stageOutcome struct {
	completed bool
	passed    bool
	bestScore int
}

// stageOutcomes maps stage order to outcome. stages must carry their
// questions; sessions must be completed sessions carrying their answers.
func stageOutcomes(stages []model.Stage, sessions []model.ExamSession) map[int]stageOutcome {
	byOrder := make(map[int][]model.ExamSession, len(sessions))
	for _, s := range sessions {
		byOrder[s.CurrentStage] = append(byOrder[s.CurrentStage], s)
	}

	outcomes := make(map[int]stageOutcome, len(stages))
	for _, stage := range stages {
		questions := scoring.FromModels(stage.Questions)
		var out stageOutcome
		for _, session := range byOrder[stage.StageOrder] {
			submitted := make(map[uuid.UUID]scoring.Selection, len(session.Answers))
			for _, a := range session.Answers {
				submitted[a.QuestionID] = scoring.ParseSelection(a.SelectedAnswer)
			}
			result := scoring.Score(questions, submitted, stage.PassingScore)

			out.completed = true
			if result.Passed {
				out.passed = true
			}
			if result.Percentage > out.bestScore {
				out.bestScore = result.Percentage
			}
		}
		outcomes[stage.StageOrder] = out
	}
	return outcomes
}

// stageByOrder returns the stage with the given order, or nil. Orders are
// unique per exam but may have gaps in legacy data.
func stageByOrder(stages []model.Stage, order int) *model.Stage {
	for i := range stages {
		if stages[i].StageOrder == order {
			return &stages[i]
		}
	}
	return nil
}
