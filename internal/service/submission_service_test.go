package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medassess/stagewise/internal/dto"
	"github.com/medassess/stagewise/internal/model"
)

func newSubmissionFixture(stages []model.Stage, sessions *fakeSessionRepo, answers *fakeAnswerRepo) SubmissionService {
	stageRepo := &fakeStageRepo{stages: stages}
	accessSvc := NewAccessService(stageRepo, sessions)
	return NewSubmissionService(stageRepo, sessions, answers, accessSvc, &fakeTransactor{})
}

func TestBeginOrResumeCreatesSession(t *testing.T) {
	examID := uuid.New()
	studentID := uuid.New()
	stage := buildStage(examID, 1, 70, 2, 5)
	sessions := &fakeSessionRepo{}
	svc := newSubmissionFixture([]model.Stage{stage}, sessions, &fakeAnswerRepo{})

	resp, err := svc.BeginOrResume(dto.BeginStageDTO{StudentID: studentID, ExamID: examID, StageID: stage.StageID})
	if err != nil {
		t.Fatalf("BeginOrResume: %v", err)
	}
	if resp.Resumed {
		t.Error("first attempt must not report resumed")
	}
	if resp.SessionID == uuid.Nil {
		t.Error("a new session must be created")
	}
	if resp.CountdownSeconds != stage.TimeLimit*60 {
		t.Errorf("CountdownSeconds = %d, want %d", resp.CountdownSeconds, stage.TimeLimit*60)
	}
	if len(sessions.created) != 1 {
		t.Fatalf("created %d sessions, want 1", len(sessions.created))
	}
	if got := sessions.created[0].Status; got != model.SessionInProgress {
		t.Errorf("session status = %q, want %q", got, model.SessionInProgress)
	}
}

func TestBeginOrResumeReusesActiveSession(t *testing.T) {
	examID := uuid.New()
	studentID := uuid.New()
	stage := buildStage(examID, 1, 70, 2, 5)
	existing := model.ExamSession{
		SessionID:    uuid.New(),
		StudentID:    studentID,
		ExamID:       examID,
		CurrentStage: 1,
		Status:       model.SessionInProgress,
		StartTime:    time.Now().Add(-10 * time.Minute),
	}
	sessions := &fakeSessionRepo{sessions: []model.ExamSession{existing}}
	svc := newSubmissionFixture([]model.Stage{stage}, sessions, &fakeAnswerRepo{})

	resp, err := svc.BeginOrResume(dto.BeginStageDTO{StudentID: studentID, ExamID: examID, StageID: stage.StageID})
	if err != nil {
		t.Fatalf("BeginOrResume: %v", err)
	}
	if !resp.Resumed {
		t.Error("an active session must be resumed, not replaced")
	}
	if resp.SessionID != existing.SessionID {
		t.Errorf("SessionID = %s, want %s", resp.SessionID, existing.SessionID)
	}
	// The countdown restarts from the full limit; elapsed time is not tracked.
	if resp.CountdownSeconds != stage.TimeLimit*60 {
		t.Errorf("CountdownSeconds = %d, want %d", resp.CountdownSeconds, stage.TimeLimit*60)
	}
	if len(sessions.created) != 0 {
		t.Errorf("created %d sessions, want 0", len(sessions.created))
	}
}

func TestBeginOrResumeLockedStage(t *testing.T) {
	examID := uuid.New()
	stage1 := buildStage(examID, 1, 70, 2, 5)
	stage2 := buildStage(examID, 2, 70, 2, 5)
	svc := newSubmissionFixture([]model.Stage{stage1, stage2}, &fakeSessionRepo{}, &fakeAnswerRepo{})

	_, err := svc.BeginOrResume(dto.BeginStageDTO{StudentID: uuid.New(), ExamID: examID, StageID: stage2.StageID})
	if !errors.Is(err, ErrStageLocked) {
		t.Errorf("err = %v, want ErrStageLocked", err)
	}
}

func TestBeginOrResumeExamMismatch(t *testing.T) {
	stage := buildStage(uuid.New(), 1, 70, 2, 5)
	svc := newSubmissionFixture([]model.Stage{stage}, &fakeSessionRepo{}, &fakeAnswerRepo{})

	_, err := svc.BeginOrResume(dto.BeginStageDTO{StudentID: uuid.New(), ExamID: uuid.New(), StageID: stage.StageID})
	if !errors.Is(err, ErrStageExamMismatch) {
		t.Errorf("err = %v, want ErrStageExamMismatch", err)
	}
}

func TestBeginOrResumeCreateRace(t *testing.T) {
	examID := uuid.New()
	studentID := uuid.New()
	stage := buildStage(examID, 1, 70, 2, 5)
	winner := model.ExamSession{
		SessionID:    uuid.New(),
		StudentID:    studentID,
		ExamID:       examID,
		CurrentStage: 1,
		Status:       model.SessionInProgress,
		StartTime:    time.Now(),
	}
	sessions := &fakeSessionRepo{}
	// The concurrent request wins between our lookup and our insert, so the
	// unique index rejects the create.
	sessions.onCreate = func(*model.ExamSession) error {
		sessions.sessions = append(sessions.sessions, winner)
		return gorm.ErrDuplicatedKey
	}
	svc := newSubmissionFixture([]model.Stage{stage}, sessions, &fakeAnswerRepo{})

	resp, err := svc.BeginOrResume(dto.BeginStageDTO{StudentID: studentID, ExamID: examID, StageID: stage.StageID})
	if err != nil {
		t.Fatalf("BeginOrResume: %v", err)
	}
	if !resp.Resumed {
		t.Error("losing the create race must resume, not fail")
	}
	if resp.SessionID != winner.SessionID {
		t.Errorf("SessionID = %s, want the winner's %s", resp.SessionID, winner.SessionID)
	}
}

func TestSubmitStage(t *testing.T) {
	examID := uuid.New()
	studentID := uuid.New()
	stage := buildStage(examID, 1, 50, 2, 5)
	sessions := &fakeSessionRepo{}
	answers := &fakeAnswerRepo{}
	svc := newSubmissionFixture([]model.Stage{stage}, sessions, answers)

	result, err := svc.SubmitStage(dto.SubmitStageDTO{
		StudentID: studentID,
		ExamID:    examID,
		StageID:   stage.StageID,
		Answers: []dto.AnswerSubmissionDTO{
			{QuestionID: stage.Questions[0].QuestionID, SelectedAnswer: "A"},
			{QuestionID: stage.Questions[1].QuestionID, SelectedAnswer: "B"},
		},
	})
	if err != nil {
		t.Fatalf("SubmitStage: %v", err)
	}
	if result.Percentage != 50 || !result.Passed || result.CorrectCount != 1 {
		t.Errorf("result = %+v, want 50%% passed with 1 correct", result)
	}

	if len(sessions.sessions) != 1 {
		t.Fatalf("have %d sessions, want 1", len(sessions.sessions))
	}
	session := sessions.sessions[0]
	if session.Status != model.SessionCompleted || session.EndTime == nil {
		t.Errorf("session = %+v, want completed with end time", session)
	}

	count, _ := answers.CountBySession(result.SessionID)
	if count != 2 {
		t.Errorf("persisted %d answers, want 2", count)
	}
}

func TestSubmitStageIgnoresForgedCorrectness(t *testing.T) {
	examID := uuid.New()
	studentID := uuid.New()
	stage := buildStage(examID, 1, 70, 2, 5)
	answers := &fakeAnswerRepo{}
	svc := newSubmissionFixture([]model.Stage{stage}, &fakeSessionRepo{}, answers)

	forged := true
	result, err := svc.SubmitStage(dto.SubmitStageDTO{
		StudentID: studentID,
		ExamID:    examID,
		StageID:   stage.StageID,
		Answers: []dto.AnswerSubmissionDTO{
			{QuestionID: stage.Questions[0].QuestionID, SelectedAnswer: "B", IsCorrect: &forged},
			{QuestionID: stage.Questions[1].QuestionID, SelectedAnswer: "B", IsCorrect: &forged},
		},
	})
	if err != nil {
		t.Fatalf("SubmitStage: %v", err)
	}
	if result.Percentage != 0 || result.Passed || result.CorrectCount != 0 {
		t.Errorf("result = %+v, want 0%% failed despite forged flags", result)
	}

	rows, _ := answers.FindBySession(result.SessionID)
	for _, row := range rows {
		if row.IsCorrect {
			t.Errorf("answer %s persisted as correct; the client flag must not be trusted", row.QuestionID)
		}
	}
}

func TestSubmitStageResubmissionUpserts(t *testing.T) {
	examID := uuid.New()
	studentID := uuid.New()
	stage := buildStage(examID, 1, 50, 2, 5)

	// A prior partial attempt: the session is still in_progress and already
	// holds rows for both questions.
	open := model.ExamSession{
		SessionID:    uuid.New(),
		StudentID:    studentID,
		ExamID:       examID,
		CurrentStage: 1,
		Status:       model.SessionInProgress,
		StartTime:    time.Now(),
	}
	answers := &fakeAnswerRepo{answers: []model.StudentAnswer{
		{AnswerID: uuid.New(), SessionID: open.SessionID, QuestionID: stage.Questions[0].QuestionID, SelectedAnswer: "B", IsCorrect: false},
		{AnswerID: uuid.New(), SessionID: open.SessionID, QuestionID: stage.Questions[1].QuestionID, SelectedAnswer: "B", IsCorrect: false},
	}}
	sessions := &fakeSessionRepo{sessions: []model.ExamSession{open}}
	svc := newSubmissionFixture([]model.Stage{stage}, sessions, answers)

	result, err := svc.SubmitStage(dto.SubmitStageDTO{
		StudentID: studentID,
		ExamID:    examID,
		StageID:   stage.StageID,
		Answers: []dto.AnswerSubmissionDTO{
			{QuestionID: stage.Questions[0].QuestionID, SelectedAnswer: "A"},
			{QuestionID: stage.Questions[1].QuestionID, SelectedAnswer: "A"},
		},
	})
	if err != nil {
		t.Fatalf("SubmitStage: %v", err)
	}
	if result.SessionID != open.SessionID {
		t.Errorf("SessionID = %s, want the open session %s", result.SessionID, open.SessionID)
	}
	if result.Percentage != 100 || !result.Passed {
		t.Errorf("result = %+v, want 100%% passed", result)
	}

	// Row count stays at one per question; the old rows were overwritten.
	count, _ := answers.CountBySession(open.SessionID)
	if count != 2 {
		t.Errorf("CountBySession = %d, want 2", count)
	}
	rows, _ := answers.FindBySession(open.SessionID)
	for _, row := range rows {
		if row.SelectedAnswer != "A" || !row.IsCorrect {
			t.Errorf("row %s = %+v, want overwritten with the correct answer", row.QuestionID, row)
		}
	}
}

func TestReview(t *testing.T) {
	examID := uuid.New()
	studentID := uuid.New()
	stage := buildStage(examID, 1, 70, 2, 5)
	stage.Questions[0].Options = []model.QuestionOption{
		{OptionID: uuid.New(), QuestionID: stage.Questions[0].QuestionID, OptionLetter: "A", OptionText: "right", IsCorrect: true},
		{OptionID: uuid.New(), QuestionID: stage.Questions[0].QuestionID, OptionLetter: "B", OptionText: "wrong", Misconception: "common mixup"},
	}

	session := completedSession(studentID, stage, 1)
	older := completedSession(studentID, stage, 2)
	older.StartTime = session.StartTime.Add(-time.Hour)

	sessions := &fakeSessionRepo{sessions: []model.ExamSession{older, session}}
	answers := &fakeAnswerRepo{}
	for _, s := range []model.ExamSession{older, session} {
		answers.answers = append(answers.answers, s.Answers...)
	}
	svc := newSubmissionFixture([]model.Stage{stage}, sessions, answers)

	review, err := svc.Review(studentID, examID, stage.StageID)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	// Latest completed session wins, even though the older one scored higher.
	if review.Session.SessionID != session.SessionID {
		t.Errorf("Session.SessionID = %s, want latest %s", review.Session.SessionID, session.SessionID)
	}
	if len(review.Answers) != 2 {
		t.Fatalf("len(Answers) = %d, want 2", len(review.Answers))
	}

	first := review.Answers[0]
	if !first.IsCorrect || first.SelectedAnswer != "A" {
		t.Errorf("first answer = %+v, want correct A", first)
	}
	if len(first.CorrectAnswer) != 1 || first.CorrectAnswer[0] != "A" {
		t.Errorf("CorrectAnswer = %v, want [A]", first.CorrectAnswer)
	}
	if len(first.Options) != 2 {
		t.Fatalf("len(Options) = %d, want 2", len(first.Options))
	}
	if first.Options[1].Misconception != "common mixup" {
		t.Errorf("Misconception = %q, want %q", first.Options[1].Misconception, "common mixup")
	}

	second := review.Answers[1]
	if second.IsCorrect || second.SelectedAnswer != "B" {
		t.Errorf("second answer = %+v, want incorrect B", second)
	}
}

func TestReviewNoCompletedSession(t *testing.T) {
	examID := uuid.New()
	stage := buildStage(examID, 1, 70, 1, 5)
	svc := newSubmissionFixture([]model.Stage{stage}, &fakeSessionRepo{}, &fakeAnswerRepo{})

	_, err := svc.Review(uuid.New(), examID, stage.StageID)
	if err == nil {
		t.Fatal("Review must fail when no completed session exists")
	}
}
