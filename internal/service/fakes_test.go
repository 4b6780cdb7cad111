package service

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medassess/stagewise/internal/model"
	"github.com/medassess/stagewise/internal/repository"
)

// In-memory repository fakes. Only the methods a test exercises need data;
// everything reads from plain slices so tests stay deterministic.

type fakeStageRepo struct {
	stages []model.Stage
	err    error
}

func (f *fakeStageRepo) FindByID(id uuid.UUID) (*model.Stage, error) {
	return f.findBy(func(s model.Stage) bool { return s.StageID == id })
}

func (f *fakeStageRepo) FindByIDWithQuestions(id uuid.UUID) (*model.Stage, error) {
	return f.FindByID(id)
}

func (f *fakeStageRepo) FindByExamIDWithQuestions(examID uuid.UUID) ([]model.Stage, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Stage
	for _, s := range f.stages {
		if s.ExamID == examID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStageRepo) findBy(match func(model.Stage) bool) (*model.Stage, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.stages {
		if match(f.stages[i]) {
			return &f.stages[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeSessionRepo struct {
	sessions []model.ExamSession
	created  []*model.ExamSession
	onCreate func(*model.ExamSession) error // optional create interceptor
}

func (f *fakeSessionRepo) Create(_ *gorm.DB, session *model.ExamSession) error {
	if f.onCreate != nil {
		if err := f.onCreate(session); err != nil {
			return err
		}
	}
	if session.SessionID == uuid.Nil {
		session.SessionID = uuid.New()
	}
	f.sessions = append(f.sessions, *session)
	f.created = append(f.created, session)
	return nil
}

func (f *fakeSessionRepo) FindActive(_ *gorm.DB, studentID, examID uuid.UUID, stageOrder int) (*model.ExamSession, error) {
	for i := range f.sessions {
		s := &f.sessions[i]
		if s.StudentID == studentID && s.ExamID == examID && s.CurrentStage == stageOrder && s.Status == model.SessionInProgress {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSessionRepo) MarkCompleted(_ *gorm.DB, sessionID uuid.UUID, endedAt time.Time) error {
	for i := range f.sessions {
		if f.sessions[i].SessionID == sessionID {
			f.sessions[i].Status = model.SessionCompleted
			f.sessions[i].EndTime = &endedAt
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeSessionRepo) FindByStudentAndExam(studentID, examID uuid.UUID) ([]model.ExamSession, error) {
	var out []model.ExamSession
	for _, s := range f.sessions {
		if s.StudentID == studentID && s.ExamID == examID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) FindCompletedWithAnswers(studentID, examID uuid.UUID) ([]model.ExamSession, error) {
	var out []model.ExamSession
	for _, s := range f.sessions {
		if s.StudentID == studentID && s.ExamID == examID && s.Status == model.SessionCompleted {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) FindLatestCompleted(studentID, examID uuid.UUID) (*model.ExamSession, error) {
	var latest *model.ExamSession
	for i := range f.sessions {
		s := &f.sessions[i]
		if s.StudentID != studentID || s.ExamID != examID || s.Status != model.SessionCompleted {
			continue
		}
		if latest == nil || s.StartTime.After(latest.StartTime) {
			latest = s
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

type fakeAnswerRepo struct {
	answers []model.StudentAnswer
}

func (f *fakeAnswerRepo) FindBySession(sessionID uuid.UUID) ([]model.StudentAnswer, error) {
	var out []model.StudentAnswer
	for _, a := range f.answers {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAnswerRepo) CountBySession(sessionID uuid.UUID) (int64, error) {
	rows, _ := f.FindBySession(sessionID)
	return int64(len(rows)), nil
}

func (f *fakeAnswerRepo) UpsertAll(_ *gorm.DB, answers []model.StudentAnswer) error {
	for _, in := range answers {
		replaced := false
		for i := range f.answers {
			if f.answers[i].SessionID == in.SessionID && f.answers[i].QuestionID == in.QuestionID {
				f.answers[i] = in
				replaced = true
				break
			}
		}
		if !replaced {
			f.answers = append(f.answers, in)
		}
	}
	return nil
}

// fakeTransactor runs the body directly; the nil handle makes the repository
// fakes fall through to their in-memory state.
type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) Transaction(fn func(tx *gorm.DB) error) error {
	f.calls++
	return fn(nil)
}

type fakeUserRepo struct {
	users []model.User
}

func (f *fakeUserRepo) Create(user *model.User) error {
	if user.UserID == uuid.Nil {
		user.UserID = uuid.New()
	}
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserRepo) FindByEmail(email, role string) (*model.User, error) {
	for i := range f.users {
		if f.users[i].Email == email && f.users[i].Role == role {
			return &f.users[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(id uuid.UUID) (*model.User, error) {
	for i := range f.users {
		if f.users[i].UserID == id {
			return &f.users[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeExamRepo struct {
	exams []model.Exam
}

func (f *fakeExamRepo) Create(exam *model.Exam) error {
	if exam.ExamID == uuid.Nil {
		exam.ExamID = uuid.New()
	}
	f.exams = append(f.exams, *exam)
	return nil
}

func (f *fakeExamRepo) Update(exam *model.Exam) error {
	for i := range f.exams {
		if f.exams[i].ExamID == exam.ExamID {
			f.exams[i] = *exam
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeExamRepo) FindByID(id uuid.UUID) (*model.Exam, error) {
	for i := range f.exams {
		if f.exams[i].ExamID == id {
			exam := f.exams[i]
			return &exam, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeExamRepo) FindByIDWithStages(id uuid.UUID) (*model.Exam, error) {
	return f.FindByID(id)
}

func (f *fakeExamRepo) FindPublished() ([]repository.ExamListing, error) {
	var out []repository.ExamListing
	for _, e := range f.exams {
		if e.IsPublished {
			out = append(out, repository.ExamListing{Exam: e})
		}
	}
	return out, nil
}

// Test data builders.

func buildStage(examID uuid.UUID, order, passingScore int, questionCount, points int) model.Stage {
	stage := model.Stage{
		StageID:      uuid.New(),
		ExamID:       examID,
		StageOrder:   order,
		Name:         "Stage",
		PassingScore: passingScore,
		TimeLimit:    30,
	}
	for i := 0; i < questionCount; i++ {
		stage.Questions = append(stage.Questions, model.Question{
			QuestionID:    uuid.New(),
			StageID:       stage.StageID,
			QuestionText:  "q",
			QuestionType:  model.QuestionTypeMultipleChoice,
			CorrectAnswer: []byte(`"A"`),
			Points:        points,
		})
	}
	return stage
}

// completedSession records one finished attempt; correct of the stage's
// questions get the right answer, the rest get a wrong one.
func completedSession(studentID uuid.UUID, stage model.Stage, correct int) model.ExamSession {
	now := time.Now()
	session := model.ExamSession{
		SessionID:    uuid.New(),
		StudentID:    studentID,
		ExamID:       stage.ExamID,
		CurrentStage: stage.StageOrder,
		Status:       model.SessionCompleted,
		StartTime:    now,
		EndTime:      &now,
	}
	for i, q := range stage.Questions {
		selected := "A"
		if i >= correct {
			selected = "B"
		}
		session.Answers = append(session.Answers, model.StudentAnswer{
			AnswerID:       uuid.New(),
			SessionID:      session.SessionID,
			QuestionID:     q.QuestionID,
			SelectedAnswer: selected,
			IsCorrect:      i < correct,
			AnsweredAt:     now,
		})
	}
	return session
}
