package service

import (
	"context"
	"lang_exam_backend/internal/model"
	"lang_exam_backend/internal/repository"
	"lang_exam_backend/internal/util"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnswerSubmission 一次作答提交
type AnswerSubmission struct {
	QuestionID    string              `json:"questionId" binding:"required"`
	SubQuestionID string              `json:"subQuestionId"`
	Payload       model.AnswerPayload `json:"payload"`
}

// AttemptResultRow 成绩单中的单题行
type AttemptResultRow struct {
	Question *model.StandardQuestion `json:"question"`
	Answers  []model.UserAnswer      `json:"answers"`
	Score    float64                 `json:"score"`
	MaxScore float64                 `json:"maxScore"`
	Status   string                  `json:"status"`
}

// AttemptResult 成绩单
type AttemptResult struct {
	Attempt *model.ExamAttempt `json:"attempt"`
	Rows    []AttemptResultRow `json:"rows"`
}

type AttemptService struct {
	AttemptRepo *repository.AttemptRepository
	ExamRepo    *repository.ExamRepository
	Scoring     *ScoringService
	Numbering   *NumberingService
}

func NewAttemptService(attemptRepo *repository.AttemptRepository, examRepo *repository.ExamRepository,
	scoring *ScoringService, numbering *NumberingService) *AttemptService {
	return &AttemptService{
		AttemptRepo: attemptRepo,
		ExamRepo:    examRepo,
		Scoring:     scoring,
		Numbering:   numbering,
	}
}

// StartAttempt 开始答题。同一考生同一试卷存在进行中的记录时直接复用。
func (s *AttemptService) StartAttempt(userID uint, examID string) (*model.ExamAttempt, error) {
	exam, err := s.ExamRepo.FindExamByID(examID)
	if err != nil {
		return nil, util.ErrExamNotFound
	}
	if !exam.IsPublished {
		return nil, util.ErrExamNotPublished
	}

	if existing, err := s.AttemptRepo.FindInProgress(userID, examID); err == nil {
		return existing, nil
	}

	attempt := &model.ExamAttempt{
		ExamID:    examID,
		UserID:    userID,
		Status:    model.AttemptInProgress,
		StartedAt: time.Now(),
	}
	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// SaveAnswer 保存作答。重复提交同一计分单元时覆盖旧载荷，
// 已提交的答题记录拒绝继续作答。
func (s *AttemptService) SaveAnswer(userID uint, attemptID string, sub AnswerSubmission) (*model.UserAnswer, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, util.ErrAttemptNotFound
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	if attempt.Status != model.AttemptInProgress {
		return nil, util.ErrAttemptSubmitted
	}

	question, err := s.ExamRepo.FindQuestionByID(sub.QuestionID)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}
	if sub.SubQuestionID != "" && question.FindSubQuestion(sub.SubQuestionID) == nil {
		return nil, util.ErrQuestionNotFound
	}

	answer := &model.UserAnswer{
		AttemptID:     attemptID,
		QuestionID:    sub.QuestionID,
		SubQuestionID: sub.SubQuestionID,
		Payload:       datatypes.NewJSONType(sub.Payload),
	}
	if err := s.AttemptRepo.UpsertAnswer(answer); err != nil {
		return nil, err
	}
	return answer, nil
}

// SubmitAttempt 交卷并触发整卷判分
func (s *AttemptService) SubmitAttempt(ctx context.Context, userID uint, attemptID string) (*AttemptScore, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, util.ErrAttemptNotFound
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	if attempt.Status != model.AttemptInProgress {
		return nil, util.ErrAttemptSubmitted
	}

	now := time.Now()
	attempt.Status = model.AttemptSubmitted
	attempt.SubmittedAt = &now
	if err := s.AttemptRepo.Update(attempt); err != nil {
		return nil, err
	}

	return s.Scoring.ScoreAttempt(ctx, attemptID, false)
}

// RescoreAttempt 教师端重评：强制重算所有机器评分（人工改分保留）
func (s *AttemptService) RescoreAttempt(ctx context.Context, attemptID string) (*AttemptScore, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, util.ErrAttemptNotFound
	}
	if attempt.Status == model.AttemptInProgress {
		return nil, util.ErrAttemptNotSubmitted
	}
	return s.Scoring.ScoreAttempt(ctx, attemptID, true)
}

// GetResult 成绩单：逐题的标准化题目、作答记录与完成状态
func (s *AttemptService) GetResult(userID uint, attemptID string, isTeacher bool) (*AttemptResult, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, util.ErrAttemptNotFound
	}
	if attempt.UserID != userID && !isTeacher {
		return nil, util.ErrPermissionDenied
	}
	if attempt.Status == model.AttemptInProgress {
		return nil, util.ErrAttemptNotSubmitted
	}

	questions, err := s.ExamRepo.ListQuestionsByExam(attempt.ExamID)
	if err != nil {
		return nil, err
	}
	numbered, err := s.Numbering.AssignNumbers(questions)
	if err != nil {
		return nil, err
	}

	answers, err := s.AttemptRepo.ListAnswers(attemptID)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[string][]model.UserAnswer)
	for _, a := range answers {
		byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
	}

	result := &AttemptResult{Attempt: attempt}
	for _, n := range numbered {
		rows := byQuestion[n.Question.ID]
		row := AttemptResultRow{
			Question: n.Standard,
			Answers:  rows,
			MaxScore: n.Question.Points,
			Status:   util.DetermineQuestionStatus(n.Question, rows),
		}
		for _, a := range rows {
			row.Score += a.Score
		}
		row.Score = util.ClampScore(row.Score, row.MaxScore)
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

// ManualScore 人工改分，写作等待人工复核的记录由此落分
func (s *AttemptService) ManualScore(attemptID, answerID string, score float64, feedback string) (*model.UserAnswer, error) {
	answer, err := s.AttemptRepo.FindAnswerByID(answerID)
	if err == gorm.ErrRecordNotFound || (err == nil && answer.AttemptID != attemptID) {
		return nil, util.ErrAnswerNotFound
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	answer.Score = util.ClampScore(score, answer.MaxScore)
	if answer.MaxScore == 0 {
		answer.Score = score
	}
	answer.IsCorrect = answer.MaxScore > 0 && answer.Score >= answer.MaxScore
	answer.Feedback = feedback
	answer.ManualScored = true
	answer.ScoredAt = &now
	if err := s.AttemptRepo.UpdateAnswer(answer); err != nil {
		return nil, err
	}

	// 人工改分后按缓存口径重汇总
	if _, err := s.Scoring.ScoreAttempt(context.Background(), attemptID, false); err != nil {
		return nil, err
	}
	return answer, nil
}

func (s *AttemptService) ListAttempts(userID uint, page, limit int) ([]model.ExamAttempt, int64, error) {
	return s.AttemptRepo.ListByUser(userID, page, limit)
}
